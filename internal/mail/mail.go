package mail

import "context"

// Message is a provider-agnostic outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Backend defines the provider-agnostic send operation used by the app.
type Backend interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Mailer wraps a backend with a stable API.
type Mailer struct {
	backend Backend
}

// New constructs a Mailer for the provided backend.
func New(backend Backend) *Mailer {
	return &Mailer{backend: backend}
}

// Send delivers a message and returns the provider's message id.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	return m.backend.Send(ctx, msg)
}
