package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
	closes    int
}

func (s *fakeSession) Publish(_ context.Context, _, key string, msg amqp.Publishing) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	s.published = append(s.published, msg)
	return nil
}

func (s *fakeSession) Closed() bool { return s.closed }

func (s *fakeSession) Close() error {
	s.closes++
	s.closed = true
	return nil
}

type fakeDialer struct {
	sessions []*fakeSession
	err      error
	dials    int
}

func (d *fakeDialer) dial(AMQPConfig) (amqpSession, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeSession{}
	d.sessions = append(d.sessions, s)
	return s, nil
}

func testMessage() Message {
	return Message{
		ID:         "m-1",
		Kind:       KindApproval,
		LandlordID: "l-1",
		To:         "owner@example.com",
		Subject:    "Approved",
		Body:       "hello",
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestAMQPTransport_SendPublishesJSON(t *testing.T) {
	d := &fakeDialer{}
	transport, err := newAMQPTransport(AMQPConfig{Exchange: "estate", Queue: "mail"}, d.dial)
	require.NoError(t, err)

	require.NoError(t, transport.Send(context.Background(), testMessage()))

	s := d.sessions[0]
	require.Len(t, s.published, 1)
	assert.Equal(t, []string{"landlord.approval"}, s.keys)
	assert.Equal(t, amqp.Persistent, s.published[0].DeliveryMode)
	assert.Equal(t, "m-1", s.published[0].MessageId)

	var decoded Message
	require.NoError(t, json.Unmarshal(s.published[0].Body, &decoded))
	assert.Equal(t, testMessage(), decoded)
}

func TestAMQPTransport_UnroutableIsAnError(t *testing.T) {
	d := &fakeDialer{}
	transport, err := newAMQPTransport(AMQPConfig{Exchange: "estate"}, d.dial)
	require.NoError(t, err)
	d.sessions[0].err = fmt.Errorf("%w: 312 NO_ROUTE", ErrUnroutable)

	err = transport.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, ErrUnroutable)
	assert.Equal(t, 1, d.dials)
}

func TestAMQPTransport_RedialsClosedSession(t *testing.T) {
	d := &fakeDialer{}
	transport, err := newAMQPTransport(AMQPConfig{Exchange: "estate"}, d.dial)
	require.NoError(t, err)
	d.sessions[0].closed = true

	require.NoError(t, transport.Send(context.Background(), testMessage()))
	assert.Equal(t, 2, d.dials)
	assert.Equal(t, 1, d.sessions[0].closes)
	assert.Len(t, d.sessions[1].published, 1)
}

func TestAMQPTransport_RetriesOnceWhenChannelDiesDuringPublish(t *testing.T) {
	d := &fakeDialer{}
	transport, err := newAMQPTransport(AMQPConfig{Exchange: "estate"}, d.dial)
	require.NoError(t, err)
	first := d.sessions[0]
	first.err = amqp.ErrClosed
	transport.session = &dyingSession{fakeSession: first}

	require.NoError(t, transport.Send(context.Background(), testMessage()))
	assert.Equal(t, 2, d.dials)
	assert.Len(t, d.sessions[1].published, 1)
}

func TestAMQPTransport_BrokerDownThenBack(t *testing.T) {
	d := &fakeDialer{}
	transport, err := newAMQPTransport(AMQPConfig{Exchange: "estate"}, d.dial)
	require.NoError(t, err)
	d.sessions[0].closed = true
	d.err = errors.New("connection refused")

	err = transport.Send(context.Background(), testMessage())
	assert.ErrorContains(t, err, "reconnect")

	d.err = nil
	require.NoError(t, transport.Send(context.Background(), testMessage()))
	assert.Equal(t, 3, d.dials)
}

func TestNewAMQPTransport_DialFailure(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	_, err := newAMQPTransport(AMQPConfig{}, d.dial)
	assert.Error(t, err)
}

// dyingSession reports closed once a publish has failed.
type dyingSession struct {
	*fakeSession
	failed bool
}

func (s *dyingSession) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	if err := s.fakeSession.Publish(ctx, exchange, key, msg); err != nil {
		s.failed = true
		return err
	}
	return nil
}

func (s *dyingSession) Closed() bool { return s.failed || s.fakeSession.closed }
