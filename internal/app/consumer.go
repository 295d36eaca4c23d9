package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/events"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka/consumer"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/config"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/connection"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/counter"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/mailer"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

const consumerGroup = "shifteditor-notifications"

// RunConsumer turns shift events into notifications until SIGINT or SIGTERM.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// redis is optional here; without it notifications are stored but not pushed live
	var rdb *redis.Client
	if client, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 3); err != nil {
		logger.Warn("redis unavailable, live push disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	staffRepo := staff.NewRepository(gormDB)
	storeService := store.NewService(sqlDB, store.NewRepository(gormDB), staffRepo, counter.NewRepository(gormDB), nil, logger)

	channels := notification.Channels{
		Mailer:    mailer.New(cfg.SMTP, logger),
		Directory: staffDirectory{repo: staffRepo},
	}
	if rdb != nil {
		channels.Publisher = notification.NewRedisPublisher(rdb)
	}
	notificationService := notification.NewService(notification.NewRepository(gormDB), channels, logger)

	lifecycleReader := newReader(cfg.KafkaBroker, events.ShiftLifecycleTopic)
	defer lifecycleReader.Close()
	reviewedReader := newReader(cfg.KafkaBroker, events.ShiftRequestReviewedTopic)
	defer reviewedReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeShiftLifecycle(ctx, lifecycleReader, notificationService, storeService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeShiftRequestReviewed(ctx, reviewedReader, notificationService, storeService, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}

func newReader(broker, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        consumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
