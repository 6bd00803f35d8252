package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DMUsenkov/sports-platform-notifier/internal/config"
	pg "github.com/DMUsenkov/sports-platform-notifier/internal/infra/db/postgres"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/logging"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/metrics"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/platform"
	red "github.com/DMUsenkov/sports-platform-notifier/internal/infra/redis"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/sched"
	tele "github.com/DMUsenkov/sports-platform-notifier/internal/infra/telegram"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/web"
	"github.com/DMUsenkov/sports-platform-notifier/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	// An unreachable outbox at startup is fatal: refuse to run.
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis (command throttle; optional) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	}

	// ---- Platform API ----
	platformAPI, err := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("platform client")
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, tm, logging.Component(logger, "UserUC"))
	invUC := usecase.NewInvitationUseCase(platformAPI, logging.Component(logger, "InvitationUC"))
	reminderUC := usecase.NewReminderUseCase(platformAPI, userRepo, notifRepo, logging.Component(logger, "ReminderUC"))
	retentionUC := usecase.NewRetentionUseCase(notifRepo, cfg.Dispatch.RetentionDays, logging.Component(logger, "RetentionUC"))
	statsUC := usecase.NewStatsUseCase(notifRepo, userRepo, logging.Component(logger, "StatsUC"))

	// ---- Telegram ----
	bot, err := tele.NewBot(&cfg.Bot, userUC, invUC, platformAPI, limiter, logging.Component(logger, "Bot"))
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	channel := tele.NewChannel(bot.API(), logging.Component(logger, "Channel"))
	dispatchUC := usecase.NewDispatchUseCase(notifRepo, channel, cfg.Dispatch.BatchSize, logging.Component(logger, "DispatchUC"))

	go func() {
		if err := bot.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Background workers ----
	dispatchWorker := sched.NewDispatchWorker(cfg.Dispatch.PollInterval, dispatchUC, logger)
	go func() { _ = dispatchWorker.Run(ctx) }()

	reminderWorker := sched.NewDailyWorker("ReminderWorker", cfg.Dispatch.ReminderHour, time.Minute, reminderUC.CreateMatchReminders, logger)
	go func() { _ = reminderWorker.Run(ctx) }()

	purgeWorker := sched.NewDailyWorker("RetentionWorker", cfg.Dispatch.PurgeHour, time.Minute, retentionUC.PurgeOldSent, logger)
	go func() { _ = purgeWorker.Run(ctx) }()

	// ---- Ops HTTP server ----
	opsSrv := web.NewServer(statsUC, cfg.Ops.APIKey, logging.Component(logger, "Ops"))
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Ops.Port), Handler: opsSrv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
