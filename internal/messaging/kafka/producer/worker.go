package producer

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
)

const batchSize = 50

func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := processPendingEvents(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// processPendingEvents publishes one claimed batch in a single write and
// marks each event by the per-message outcome.
func processPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) error {
	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	logger.Debug("publishing outbox batch", zap.Int("count", len(events)))

	msgs := make([]kafkago.Message, len(events))
	for i, event := range events {
		msgs[i] = toMessage(event)
	}
	writeErr := writer.WriteMessages(ctx, msgs...)

	var perMessage kafkago.WriteErrors
	hasPerMessage := errors.As(writeErr, &perMessage) && len(perMessage) == len(events)

	sent := 0
	for i, event := range events {
		err := writeErr
		if hasPerMessage {
			err = perMessage[i]
		}

		if err != nil {
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("attempt", event.RetryCount+1),
				zap.Error(err),
			)
			if event.RetryCount+1 >= kafka.MaxOutboxAttempts {
				logger.Warn("outbox event gave up", zap.String("outbox_id", event.ID))
			}
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}
		sent++
	}

	logger.Info("outbox batch done", zap.Int("sent", sent), zap.Int("failed", len(events)-sent))
	return nil
}
