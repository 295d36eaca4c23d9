package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/events"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
)

// ConsumeShiftLifecycle notifies the assigned staff member of every shift
// confirmation, update and cancellation.
func ConsumeShiftLifecycle(
	ctx context.Context,
	reader MessageReader,
	notifier Notifier,
	settings SettingsProvider,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.shift_lifecycle")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.ShiftLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode shift lifecycle event: %v", errSkip, err)
		}

		in, ok := lifecycleNotification(event)
		if !ok {
			return fmt.Errorf("%w: unknown event type %q", errSkip, event.EventType)
		}
		window := formatWindow(
			localTime(ctx, settings, event.StoreID, event.StartTime),
			localTime(ctx, settings, event.StoreID, event.EndTime),
		)
		in.Message = fmt.Sprintf(in.Message, window)

		if err := notifier.Notify(ctx, in); err != nil {
			return err
		}
		log.Info("shift notification sent",
			zap.String("event_type", event.EventType),
			zap.String("shift_id", event.ShiftID),
			zap.String("user_id", event.UserID),
		)
		return nil
	})
}

func lifecycleNotification(event events.ShiftLifecycleEvent) (notification.NotifyInput, bool) {
	in := notification.NotifyInput{StoreID: event.StoreID, UserID: event.UserID}
	switch event.EventType {
	case events.ShiftConfirmed:
		in.Type = notification.TypeShiftConfirmed
		in.Title = "Shift confirmed"
		in.Message = "Your shift %s has been confirmed."
	case events.ShiftUpdated:
		in.Type = notification.TypeShiftUpdated
		in.Title = "Shift updated"
		in.Message = "Your shift has been changed to %s."
	case events.ShiftCancelled:
		in.Type = notification.TypeShiftCancelled
		in.Title = "Shift cancelled"
		in.Message = "Your shift %s has been cancelled."
	default:
		return in, false
	}
	return in, true
}
