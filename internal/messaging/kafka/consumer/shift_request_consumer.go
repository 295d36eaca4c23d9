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

// ConsumeShiftRequestReviewed tells the requester whether their shift request
// was approved or rejected.
func ConsumeShiftRequestReviewed(
	ctx context.Context,
	reader MessageReader,
	notifier Notifier,
	settings SettingsProvider,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.shift_request_reviewed")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.ShiftRequestReviewedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode shift request event: %v", errSkip, err)
		}

		window := formatWindow(
			localTime(ctx, settings, event.StoreID, event.StartTime),
			localTime(ctx, settings, event.StoreID, event.EndTime),
		)
		in := notification.NotifyInput{StoreID: event.StoreID, UserID: event.UserID}
		switch event.EventType {
		case events.RequestApproved:
			in.Type = notification.TypeRequestApproved
			in.Title = "Shift request approved"
			in.Message = fmt.Sprintf("Your request for %s was approved and added to the schedule.", window)
		case events.RequestRejected:
			in.Type = notification.TypeRequestRejected
			in.Title = "Shift request rejected"
			in.Message = fmt.Sprintf("Your request for %s was rejected.", window)
			if event.Reason != "" {
				in.Message += " Reason: " + event.Reason
			}
		default:
			return fmt.Errorf("%w: unknown event type %q", errSkip, event.EventType)
		}

		if err := notifier.Notify(ctx, in); err != nil {
			return err
		}
		log.Info("shift request notification sent",
			zap.String("event_type", event.EventType),
			zap.String("request_id", event.RequestID),
			zap.String("user_id", event.UserID),
		)
		return nil
	})
}
