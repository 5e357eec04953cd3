package payment

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OmiseProcessor creates a source and charges it right away with the secret
// key. The charge settles when the customer completes the source (scans the
// QR or follows the authorize link); Omise then reports charge.complete.
type OmiseProcessor struct {
	client     *omise.Client
	sourceType string
}

func NewOmise(pub, sec, sourceType string) (*OmiseProcessor, error) {
	c, err := omise.NewClient(pub, sec)
	if err != nil {
		return nil, err
	}
	c.SetDebug(false)
	if sourceType == "" {
		sourceType = "promptpay"
	}
	return &OmiseProcessor{client: c, sourceType: sourceType}, nil
}

func (o *OmiseProcessor) Name() string { return "omise" }

// CreateIntent returns the charge id as Intent.ID. ClientSecret carries what
// the client needs to finish paying: the QR image for scannable sources,
// otherwise the authorize URI.
func (o *OmiseProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	src := &omise.Source{}
	err := o.call(ctx, func() error {
		return o.client.Do(src, &operations.CreateSource{
			Type:     o.sourceType,
			Amount:   req.Amount,
			Currency: req.Currency,
		})
	})
	if err != nil {
		return nil, err
	}

	meta := make(map[string]interface{}, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}
	ch := &omise.Charge{}
	err = o.call(ctx, func() error {
		return o.client.Do(ch, &operations.CreateCharge{
			Amount:      req.Amount,
			Currency:    req.Currency,
			Source:      src.ID,
			Description: req.Description,
			Metadata:    meta,
		})
	})
	if err != nil {
		return nil, err
	}
	if ch.Status == omise.ChargeFailed {
		reason := "charge failed"
		if ch.FailureMessage != nil {
			reason = *ch.FailureMessage
		}
		return nil, fmt.Errorf("%w: omise: %s", ErrProcessor, reason)
	}

	return &Intent{ID: ch.ID, ClientSecret: completionURI(ch, src), Amount: ch.Amount, Currency: ch.Currency}, nil
}

func completionURI(ch *omise.Charge, src *omise.Source) string {
	for _, s := range []*omise.Source{ch.Source, src} {
		if s != nil && s.ScannableCode != nil && s.ScannableCode.Image != nil && s.ScannableCode.Image.DownloadURI != "" {
			return s.ScannableCode.Image.DownloadURI
		}
	}
	if ch.AuthorizeURI != "" {
		return ch.AuthorizeURI
	}
	return ch.ID
}

// call runs one blocking SDK request and gives up when ctx is done. The SDK
// client is shared, so the context cannot be set on it per request.
func (o *OmiseProcessor) call(ctx context.Context, do func() error) error {
	done := make(chan error, 1)
	go func() { done <- do() }()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrProcessor, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: omise: %w", ErrProcessor, err)
		}
		return nil
	}
}
