package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

var tracer = otel.Tracer("plantnet/marketplace/service")

var now = func() time.Time { return time.Now().UTC() }

// EventSink receives events after the change they describe is stored.
type EventSink interface {
	Dispatch(ctx context.Context, key string, data any)
}

type nopSink struct{}

func (nopSink) Dispatch(context.Context, string, any) {}

func sinkOrNop(s EventSink) EventSink {
	if s == nil {
		return nopSink{}
	}
	return s
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, s)
	}
	return id, nil
}

// normalizeEmail accepts a bare address only; display-name forms such as
// "Bob <bob@example.com>" are refused since the result is used as a key.
func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", fmt.Errorf("%w: email %q", domain.ErrInvalid, s)
	}
	return addr.Address, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalid, fmt.Sprintf(format, args...))
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrForbidden, msg)
}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
}

func person(u *domain.User) domain.Person {
	return domain.Person{Email: u.Email, Name: u.Name, Image: u.Image}
}
