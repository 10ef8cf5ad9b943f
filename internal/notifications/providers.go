// internal/notifications/providers.go

package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is a rendered outbound message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// EmailProvider defines the email provider interface
type EmailProvider interface {
	SendEmail(ctx context.Context, email *Email) error
}

// SendGridProvider implements EmailProvider using SendGrid
type SendGridProvider struct {
	apiKey string
	from   string
}

func NewSendGridProvider(apiKey, from string) EmailProvider {
	return &SendGridProvider{apiKey: apiKey, from: from}
}

func (p *SendGridProvider) SendEmail(ctx context.Context, email *Email) error {
	from := mail.NewEmail("Kinfolk", p.from)
	to := mail.NewEmail("", email.To)

	message := mail.NewSingleEmail(from, email.Subject, to, email.Body, "")
	client := sendgrid.NewSendClient(p.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}
	return nil
}

// MockProvider logs emails instead of sending them. Used in development
// and tests.
type MockProvider struct {
	mu   sync.Mutex
	Sent []*Email
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) SendEmail(ctx context.Context, email *Email) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Sent = append(p.Sent, email)
	log.Printf("mock email to %s: %s", email.To, email.Subject)
	return nil
}

// SentTo returns the emails delivered to an address.
func (p *MockProvider) SentTo(address string) []*Email {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []*Email
	for _, email := range p.Sent {
		if email.To == address {
			out = append(out, email)
		}
	}
	return out
}
