package consumer

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Notifier interface {
	Notify(ctx context.Context, in notification.NotifyInput) error
}

// SettingsProvider resolves the store timezone used in notification text.
type SettingsProvider interface {
	Settings(ctx context.Context, storeID string) (store.StoreSettings, error)
}

// errSkip marks a message that can never succeed; it is committed and dropped.
var errSkip = errors.New("skip message")

var (
	// retryBackoff is the wait before each retry of a transient failure; the
	// last entry repeats until the handler succeeds or ctx is cancelled.
	retryBackoff    = []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}
	fetchErrorDelay = 2 * time.Second
)

type handleFunc func(ctx context.Context, msg kafkago.Message) error

// run fetches messages until ctx is cancelled. Handled and undeliverable
// messages are committed. A reader keeps its fetch position in memory, so an
// uncommitted message is not fetched again until the group rebalances; a
// transient failure is therefore retried in place and blocks the partition.
// Stopping mid-retry leaves the offset uncommitted for the next member.
func run(ctx context.Context, reader MessageReader, log *zap.Logger, handle handleFunc) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			if !sleep(ctx, fetchErrorDelay) {
				log.Info("consumer stopped")
				return
			}
			continue
		}

		err = handleWithRetry(ctx, log, msg, handle)
		switch {
		case err == nil:
		case errors.Is(err, errSkip) || isPermanent(err):
			log.Warn("dropping message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		default:
			log.Info("consumer stopped with message pending",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
			)
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
		}
	}
}

// handleWithRetry returns nil, a skip or permanent error, or the last
// transient error once ctx is done.
func handleWithRetry(ctx context.Context, log *zap.Logger, msg kafkago.Message, handle handleFunc) error {
	for attempt := 0; ; attempt++ {
		err := handle(ctx, msg)
		if err == nil || errors.Is(err, errSkip) || isPermanent(err) {
			return err
		}
		delay := retryBackoff[min(attempt, len(retryBackoff)-1)]
		log.Error("handle message failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt+1),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		if !sleep(ctx, delay) {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// isPermanent reports client-side errors that a retry would repeat.
func isPermanent(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus < 500
}

func localTime(ctx context.Context, settings SettingsProvider, storeID string, t time.Time) time.Time {
	if settings == nil {
		return t.UTC()
	}
	s, err := settings.Settings(ctx, storeID)
	if err != nil {
		return t.UTC()
	}
	return t.In(s.Location())
}

func formatWindow(start, end time.Time) string {
	if start.Format("2006-01-02") == end.Format("2006-01-02") {
		return start.Format("2006-01-02 15:04") + "-" + end.Format("15:04")
	}
	return start.Format("2006-01-02 15:04") + " - " + end.Format("2006-01-02 15:04")
}
