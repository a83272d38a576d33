package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memoryTransport struct {
	sent []Message
	err  error
}

func (m *memoryTransport) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestRender_AllKinds(t *testing.T) {
	data := TemplateData{
		Name:         "Dana",
		Email:        "dana@example.com",
		Password:     "Temp#1",
		Reason:       "expired license",
		DashboardURL: "https://dash.example.com",
	}

	subject, body, err := Render(KindApproval, data)
	require.NoError(t, err)
	assert.Contains(t, subject, "approved")
	assert.Contains(t, body, "Hello Dana")
	assert.Contains(t, body, "Password: Temp#1")
	assert.Contains(t, body, "https://dash.example.com")

	_, body, err = Render(KindRejection, data)
	require.NoError(t, err)
	assert.Contains(t, body, "Reason: expired license")

	_, body, err = Render(KindInactive, data)
	require.NoError(t, err)
	assert.Contains(t, body, "deactivated")
	assert.Contains(t, body, "Reason: expired license")

	_, body, err = Render(KindActivation, data)
	require.NoError(t, err)
	assert.Contains(t, body, "active again")

	_, _, err = Render(Kind("welcome"), data)
	assert.Error(t, err)
}

func TestRender_OptionalSections(t *testing.T) {
	_, body, err := Render(KindApproval, TemplateData{Email: "x@example.com"})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello there")
	assert.NotContains(t, body, "Password:")

	_, body, err = Render(KindRejection, TemplateData{Name: "Dana"})
	require.NoError(t, err)
	assert.NotContains(t, body, "Reason:")
}

func TestTemplateNotifier_Outcomes(t *testing.T) {
	transport := &memoryTransport{}
	n := NewTemplateNotifier(transport, "noreply@example.com", "https://dash.example.com")
	n.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	to := Recipient{LandlordID: "l-1", Email: "dana@example.com", Name: "Dana"}
	ctx := context.Background()

	outcome := n.SendApproval(ctx, to, "Temp#1")
	assert.True(t, outcome.Sent)
	assert.Equal(t, KindApproval, outcome.Kind)
	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, "dana@example.com", msg.To)
	assert.Equal(t, "l-1", msg.LandlordID)
	assert.NotEmpty(t, msg.ID)
	assert.Contains(t, msg.Body, "Temp#1")

	outcome = n.SendInactive(ctx, Recipient{LandlordID: "l-2"}, "late")
	assert.False(t, outcome.Sent)
	assert.Contains(t, outcome.Reason, "recipient email missing")

	transport.err = errors.New("broker down")
	outcome = n.SendActivation(ctx, to)
	assert.False(t, outcome.Sent)
	assert.Equal(t, "broker down", outcome.Reason)
	assert.Equal(t, "activation: failed (broker down)", outcome.String())
	assert.Equal(t, "rejection: sent", Sent(KindRejection).String())
}

func TestFormatRFC822(t *testing.T) {
	raw := string(FormatRFC822(Message{
		ID:        "m-1",
		From:      "noreply@example.com",
		To:        "dana@example.com",
		Subject:   "Hello",
		Body:      "line one\nline two",
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}))

	assert.True(t, strings.HasPrefix(raw, "From: noreply@example.com\r\n"))
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "Message-ID: <m-1@estate-service>\r\n")
	assert.Contains(t, raw, "\r\n\r\nline one\r\nline two")
}

func TestSMTPTransport_Send(t *testing.T) {
	tr := NewSMTPTransport("mail.example.com:587", "mail.example.com", "", "")
	var gotAddr string
	var gotTo []string
	tr.send = func(addr string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		gotAddr, gotTo = addr, to
		return nil
	}

	require.NoError(t, tr.Send(context.Background(), Message{From: "a@example.com", To: "b@example.com"}))
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, []string{"b@example.com"}, gotTo)

	tr.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 busy") }
	err := tr.Send(context.Background(), Message{To: "b@example.com"})
	assert.ErrorContains(t, err, "421 busy")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Send(ctx, Message{To: "b@example.com"}), context.Canceled)
}

func TestLogTransport_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tr := NewLogTransport(zap.New(core))

	require.NoError(t, tr.Send(context.Background(), Message{ID: "m-1", Kind: KindRejection, To: "dana@example.com"}))
	entries := logs.FilterMessage("landlord email (log transport)").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "dana@example.com", entries[0].ContextMap()["to"])
}
