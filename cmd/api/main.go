package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitpact/internal/api"
	"habitpact/internal/config"
	"habitpact/internal/dateutil"
	"habitpact/internal/repository"
	"habitpact/internal/service"
	"habitpact/pkg/db"
	"habitpact/pkg/logger"
	"habitpact/pkg/mq"
	"habitpact/pkg/otel"
	"habitpact/pkg/outbox"
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
		ServiceName:    "habitpact-api",
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

	// Stores.
	outboxRepo := outbox.NewRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	txRepo := repository.NewTransactionRepository(pool)
	habitRepo := repository.NewHabitRepository(pool, txRepo, outboxRepo)
	requestRepo := repository.NewPartnerRequestRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	// The backfill gate holds for a day; the CAS in the habit store is
	// the actual correctness guard.
	backfillLocks := util.NewDeduperWithLogger(rdb, 30*time.Second, log)

	// Services.
	habitSvc := service.NewHabitService(habitRepo, userRepo, backfillLocks, dateutil.RealClock{}, log, cfg.Ledger.PenaltyAmount)
	ledgerSvc := service.NewLedgerService(txRepo, log)
	partnerSvc := service.NewPartnerService(userRepo, requestRepo, log)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, log)
	replaySvc := outbox.NewReplayService(outboxRepo, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Staged events flow to MQ through the polling dispatcher.
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(ctx)

	router := api.NewRouter(api.Handlers{
		Auth:        api.NewAuthHandler(authSvc),
		Habit:       api.NewHabitHandler(habitSvc),
		Transaction: api.NewTransactionHandler(ledgerSvc),
		Partner:     api.NewPartnerHandler(partnerSvc),
		User:        api.NewUserHandler(authSvc, notificationRepo),
		Admin:       api.NewAdminHandler(replaySvc, outboxRepo),
	}, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("API server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
