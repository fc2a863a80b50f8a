package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitpact/internal/config"
	"habitpact/internal/events"
	"habitpact/internal/mqhandler"
	"habitpact/internal/repository"
	"habitpact/pkg/db"
	"habitpact/pkg/logger"
	"habitpact/pkg/mq"
	"habitpact/pkg/otel"
	pkgredis "habitpact/pkg/redis"
	"habitpact/pkg/util"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	shutdownOtel, err := otel.Init(otel.Config{
		ServiceName:    "habitpact-worker",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownOtel()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	rdb := pkgredis.NewClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "habit_missed_notifications", events.HabitMissedKey, log)
	if err != nil {
		log.Fatal("Failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	// DLQ topology for poison messages.
	dlqConn, err := mq.NewConnection(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect for DLQ declaration", zap.Error(err))
	}
	dlqCh, err := dlqConn.Channel()
	if err != nil {
		log.Fatal("Failed to open DLQ channel", zap.Error(err))
	}
	if err := mq.DeclareDLQExchange(dlqCh); err != nil {
		log.Fatal("Failed to declare DLQ exchange", zap.Error(err))
	}
	if _, err := mq.DeclareDLQQueue(dlqCh, events.HabitMissedKey); err != nil {
		log.Fatal("Failed to declare DLQ queue", zap.Error(err))
	}
	dlqCh.Close()
	dlqConn.Close()

	notificationRepo := repository.NewNotificationRepository(pool)
	deduper := util.NewDeduperWithLogger(rdb, 24*time.Hour, log)
	retries := util.NewRetryCounter(rdb, time.Hour)
	webhook := mqhandler.NewWebhookSender(cfg.Worker.WebhookURL, log)

	handler := mqhandler.NewHabitMissedHandler(notificationRepo, deduper, retries, publisher, webhook, log)
	consumer.SetHandler(handler.Handle)

	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Consumer stopped", zap.Error(err))
		}
	}()

	log.Info("Worker started",
		zap.String("queue", "habit_missed_notifications"),
		zap.String("routing_key", events.HabitMissedKey),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Worker shutting down")
}
