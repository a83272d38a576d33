package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKeyPrefix prefixes the kind in every published routing key.
const RoutingKeyPrefix = "landlord."

var (
	// ErrUnroutable is returned when the broker had no queue for the message.
	ErrUnroutable = errors.New("amqp transport: message unroutable")
	// ErrNotConfirmed is returned when the broker nacked the publish.
	ErrNotConfirmed = errors.New("amqp transport: publish not confirmed")
)

// AMQPConfig names the broker and the topology mail jobs are routed through.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// DeclareMailTopology declares the topic exchange and the durable mail queue
// bound to every landlord routing key. Publisher and worker both call it so a
// message is never published before its queue exists.
func DeclareMailTopology(ch *amqp.Channel, exchange, queue string) (amqp.Queue, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, RoutingKeyPrefix+"*", exchange, false, nil); err != nil {
		return amqp.Queue{}, fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	return q, nil
}

// amqpSession is one live connection and confirm-mode channel.
type amqpSession interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
	Closed() bool
	Close() error
}

type dialFunc func(cfg AMQPConfig) (amqpSession, error)

// AMQPTransport publishes messages to a topic exchange for the mail worker.
// A nil error from Send means the broker routed the message to the mail queue
// and confirmed it.
type AMQPTransport struct {
	mu      sync.Mutex
	cfg     AMQPConfig
	dial    dialFunc
	session amqpSession
}

// NewAMQPTransport dials the broker and declares the mail topology.
func NewAMQPTransport(cfg AMQPConfig) (*AMQPTransport, error) {
	return newAMQPTransport(cfg, dialSession)
}

func newAMQPTransport(cfg AMQPConfig, dial dialFunc) (*AMQPTransport, error) {
	session, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &AMQPTransport{cfg: cfg, dial: dial, session: session}, nil
}

// Send publishes msg as persistent JSON, redialing first when the previous
// connection or channel was closed.
func (t *AMQPTransport) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	session, err := t.live()
	if err != nil {
		return err
	}
	err = session.Publish(ctx, t.cfg.Exchange, RoutingKeyPrefix+string(msg.Kind), publishing)
	if err != nil && session.Closed() {
		// The channel died under us; one fresh session gets one more try.
		t.drop()
		if session, err = t.live(); err != nil {
			return err
		}
		err = session.Publish(ctx, t.cfg.Exchange, RoutingKeyPrefix+string(msg.Kind), publishing)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Kind, err)
	}
	return nil
}

func (t *AMQPTransport) live() (amqpSession, error) {
	if t.session != nil && !t.session.Closed() {
		return t.session, nil
	}
	t.drop()
	session, err := t.dial(t.cfg)
	if err != nil {
		return nil, fmt.Errorf("amqp transport: reconnect: %w", err)
	}
	t.session = session
	return session, nil
}

func (t *AMQPTransport) drop() {
	if t.session != nil {
		_ = t.session.Close()
		t.session = nil
	}
}

func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	err := t.session.Close()
	t.session = nil
	return err
}

type channelSession struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	returns   chan amqp.Return
	connClose chan *amqp.Error
	chClose   chan *amqp.Error

	mu     sync.Mutex
	closed bool
}

func dialSession(cfg AMQPConfig) (amqpSession, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(err error) (amqpSession, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if _, err := DeclareMailTopology(ch, cfg.Exchange, cfg.Queue); err != nil {
		return fail(err)
	}
	if err := ch.Confirm(false); err != nil {
		return fail(fmt.Errorf("enable confirms: %w", err))
	}

	s := &channelSession{
		conn:      conn,
		ch:        ch,
		returns:   ch.NotifyReturn(make(chan amqp.Return, 8)),
		connClose: conn.NotifyClose(make(chan *amqp.Error, 1)),
		chClose:   ch.NotifyClose(make(chan *amqp.Error, 1)),
	}
	return s, nil
}

// Publish sends a mandatory message and waits for the broker's confirm. The
// broker delivers basic.return before the ack, so a return seen after the ack
// belongs to this publish.
func (s *channelSession) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	s.drainReturns()
	confirm, err := s.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, true, false, msg)
	if err != nil {
		return err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm: %w", err)
	}
	if !acked {
		return ErrNotConfirmed
	}
	if ret, ok := s.drainReturns(); ok {
		return fmt.Errorf("%w: %d %s", ErrUnroutable, ret.ReplyCode, ret.ReplyText)
	}
	return nil
}

func (s *channelSession) drainReturns() (amqp.Return, bool) {
	var (
		last amqp.Return
		got  bool
	)
	for {
		select {
		case ret, ok := <-s.returns:
			if !ok {
				return last, got
			}
			last, got = ret, true
		default:
			return last, got
		}
	}
}

func (s *channelSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case <-s.connClose:
		s.closed = true
	case <-s.chClose:
		s.closed = true
	default:
	}
	return s.closed
}

func (s *channelSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	_ = s.ch.Close()
	if s.conn.IsClosed() {
		return nil
	}
	return s.conn.Close()
}
