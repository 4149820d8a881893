package eventbus

import (
	"context"

	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/event"
)

// LogConsumer logs all domain events.
type LogConsumer struct {
	logger *zap.Logger
}

func NewLogConsumer(logger *zap.Logger) *LogConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogConsumer{logger: logger.Named("events")}
}

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.logger.Info(evt.Summary,
		zap.String("event_type", evt.EventType),
		zap.String("event_id", evt.ID),
		zap.Int64("board_id", evt.BoardID),
		zap.Time("occurred_at", evt.OccurredAt),
	)
	return nil
}
