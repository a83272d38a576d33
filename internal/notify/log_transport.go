package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes messages to the log instead of delivering them.
type LogTransport struct {
	logger *zap.Logger
}

func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info("landlord email (log transport)",
		zap.String("message_id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.String("landlord_id", msg.LandlordID),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	t.logger.Debug("landlord email body", zap.String("message_id", msg.ID), zap.String("body", msg.Body))
	return nil
}
