package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log. Used when no SMTP server is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (n *LogNotifier) Send(_ context.Context, msg Notification) error {
	n.log.Info("Notification",
		zap.String("recipient", msg.Recipient),
		zap.String("kind", string(msg.Kind)),
		zap.Any("payload", msg.Payload),
	)
	return nil
}

// LogBus writes domain events to the log. Used when no broker is configured.
type LogBus struct {
	log *zap.Logger
}

func NewLogBus(log *zap.Logger) *LogBus {
	return &LogBus{log: log.With(zap.String("bus", "log"))}
}

func (b *LogBus) Publish(_ context.Context, e DomainEvent) error {
	b.log.Info("Domain event",
		zap.String("kind", string(e.Kind)),
		zap.Time("occurred_at", e.OccurredAt),
		zap.Any("payload", e.Payload),
	)
	return nil
}
