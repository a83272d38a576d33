package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/notify"
)

// Disposition is what the worker does with a delivery after handling it.
type Disposition int

const (
	Ack Disposition = iota
	// Reject drops the delivery; it can never succeed.
	Reject
	// Requeue returns the delivery to the queue for another attempt.
	Requeue
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Reject:
		return "reject"
	case Requeue:
		return "requeue"
	}
	return "unknown"
}

// MailWorkerConfig describes the queue the worker consumes.
type MailWorkerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
}

// MailWorker consumes queued landlord emails and hands them to a delivery
// transport.
type MailWorker struct {
	cfg      MailWorkerConfig
	delivery notify.Transport
	logger   *zap.Logger
}

// NewMailWorker builds a worker delivering through transport.
func NewMailWorker(cfg MailWorkerConfig, transport notify.Transport, logger *zap.Logger) *MailWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 10
	}
	return &MailWorker{cfg: cfg, delivery: transport, logger: logger.Named("mail_worker")}
}

// Handle decodes one message body and delivers it.
func (w *MailWorker) Handle(ctx context.Context, body []byte) Disposition {
	var msg notify.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		w.logger.Error("undecodable mail message dropped", zap.Error(err))
		return Reject
	}
	if msg.To == "" {
		w.logger.Error("mail message without recipient dropped", zap.String("message_id", msg.ID))
		return Reject
	}

	if err := w.delivery.Send(ctx, msg); err != nil {
		if notify.IsPermanent(err) {
			w.logger.Error("mail rejected by relay, dropping",
				zap.String("message_id", msg.ID),
				zap.String("kind", string(msg.Kind)),
				zap.Error(err))
			return Reject
		}
		w.logger.Warn("mail delivery failed, requeueing",
			zap.String("message_id", msg.ID),
			zap.String("kind", string(msg.Kind)),
			zap.Error(err))
		return Requeue
	}
	w.logger.Info("mail delivered",
		zap.String("message_id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.String("landlord_id", msg.LandlordID))
	return Ack
}

// Run declares the queue bound to every landlord routing key and consumes it
// until ctx is cancelled or the channel closes.
func (w *MailWorker) Run(ctx context.Context) error {
	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(w.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	queue, err := notify.DeclareMailTopology(ch, w.cfg.Exchange, w.cfg.Queue)
	if err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue.Name, err)
	}
	w.logger.Info("mail worker consuming", zap.String("queue", queue.Name), zap.String("exchange", w.cfg.Exchange))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("mail worker: delivery channel closed")
			}
			w.settle(d, w.Handle(ctx, d.Body))
		}
	}
}

func (w *MailWorker) settle(d amqp.Delivery, disposition Disposition) {
	var err error
	switch disposition {
	case Ack:
		err = d.Ack(false)
	case Reject:
		err = d.Nack(false, false)
	case Requeue:
		err = d.Nack(false, true)
	}
	if err != nil {
		w.logger.Error("failed to settle delivery",
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Stringer("disposition", disposition),
			zap.Error(err))
	}
}
