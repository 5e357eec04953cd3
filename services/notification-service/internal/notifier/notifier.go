package notifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers one message to one recipient.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// ConsoleNotifier logs messages; used when SMTP is not configured.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(_ context.Context, m Message) error {
	log.Printf("[notify] to=%s %s :: %s", m.To, m.Subject, m.Body)
	return nil
}

type SMTPNotifier struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

func NewSMTP(host string, port int, user, pass, from string, timeout time.Duration) *SMTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPNotifier{dialer: gomail.NewDialer(host, port, user, pass), from: from, timeout: timeout}
}

// Notify gives up after the configured timeout; the SMTP exchange itself may
// still finish in the background.
func (s *SMTPNotifier) Notify(ctx context.Context, m Message) error {
	if m.To == "" {
		return fmt.Errorf("message %q has no recipient", m.Subject)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", m.To, ctx.Err())
	}
}
