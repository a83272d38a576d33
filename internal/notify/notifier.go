package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which landlord lifecycle email is being sent.
type Kind string

const (
	KindApproval   Kind = "approval"
	KindRejection  Kind = "rejection"
	KindInactive   Kind = "inactive"
	KindActivation Kind = "activation"
)

// Recipient is the landlord an email is addressed to.
type Recipient struct {
	LandlordID string
	Email      string
	Name       string
}

// Outcome reports whether a notification was handed off. Notifications are
// advisory: callers log a failed outcome and carry on.
type Outcome struct {
	Kind   Kind
	Sent   bool
	Reason string
}

// Sent returns a successful outcome.
func Sent(kind Kind) Outcome {
	return Outcome{Kind: kind, Sent: true}
}

// Failed returns a failed outcome carrying the cause.
func Failed(kind Kind, err error) Outcome {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return Outcome{Kind: kind, Reason: reason}
}

func (o Outcome) String() string {
	if o.Sent {
		return fmt.Sprintf("%s: sent", o.Kind)
	}
	return fmt.Sprintf("%s: failed (%s)", o.Kind, o.Reason)
}

// Notifier sends the landlord lifecycle emails.
type Notifier interface {
	SendApproval(ctx context.Context, to Recipient, password string) Outcome
	SendRejection(ctx context.Context, to Recipient, reason string) Outcome
	SendInactive(ctx context.Context, to Recipient, reason string) Outcome
	SendActivation(ctx context.Context, to Recipient) Outcome
}

// Message is a rendered email ready for a transport.
type Message struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	LandlordID string    `json:"landlord_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Transport moves a rendered message toward the recipient.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// TemplateNotifier renders the lifecycle templates and hands them to a Transport.
type TemplateNotifier struct {
	transport    Transport
	from         string
	dashboardURL string
	now          func() time.Time
}

// NewTemplateNotifier builds a Notifier on top of transport.
func NewTemplateNotifier(transport Transport, from, dashboardURL string) *TemplateNotifier {
	return &TemplateNotifier{
		transport:    transport,
		from:         from,
		dashboardURL: dashboardURL,
		now:          time.Now,
	}
}

func (n *TemplateNotifier) SendApproval(ctx context.Context, to Recipient, password string) Outcome {
	return n.send(ctx, KindApproval, to, TemplateData{Password: password})
}

func (n *TemplateNotifier) SendRejection(ctx context.Context, to Recipient, reason string) Outcome {
	return n.send(ctx, KindRejection, to, TemplateData{Reason: reason})
}

func (n *TemplateNotifier) SendInactive(ctx context.Context, to Recipient, reason string) Outcome {
	return n.send(ctx, KindInactive, to, TemplateData{Reason: reason})
}

func (n *TemplateNotifier) SendActivation(ctx context.Context, to Recipient) Outcome {
	return n.send(ctx, KindActivation, to, TemplateData{})
}

func (n *TemplateNotifier) send(ctx context.Context, kind Kind, to Recipient, data TemplateData) Outcome {
	if to.Email == "" {
		return Failed(kind, fmt.Errorf("recipient email missing"))
	}
	data.Name = to.Name
	data.Email = to.Email
	data.DashboardURL = n.dashboardURL

	subject, body, err := Render(kind, data)
	if err != nil {
		return Failed(kind, err)
	}

	msg := Message{
		ID:         uuid.NewString(),
		Kind:       kind,
		LandlordID: to.LandlordID,
		From:       n.from,
		To:         to.Email,
		Subject:    subject,
		Body:       body,
		CreatedAt:  n.now().UTC(),
	}
	if err := n.transport.Send(ctx, msg); err != nil {
		return Failed(kind, err)
	}
	return Sent(kind)
}
