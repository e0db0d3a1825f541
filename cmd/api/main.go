package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shutterdesk/internal/api"
	"shutterdesk/internal/cache"
	"shutterdesk/internal/config"
	"shutterdesk/internal/database"
	"shutterdesk/internal/domain"
	"shutterdesk/internal/events"
	"shutterdesk/internal/logging"
	"shutterdesk/internal/metrics"
	"shutterdesk/internal/notify"
	"shutterdesk/internal/postgres"
	"shutterdesk/internal/service"
	"shutterdesk/internal/sheets"
	"shutterdesk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	repo, err := openStore(cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("init store")
		return err
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	bus := events.NewEventBus()
	metrics.Subscribe(bus)

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	summaryCache := buildSummaryCache(cfg, redisClient, &logger)

	mirror := initMirror(ctx, cfg, &logger)

	// Типизированный nil в интерфейсе обошел бы проверки в сервисах,
	// поэтому воркер подключается только вместе с зеркалом.
	var syncWorker domain.SyncWorker
	if mirror != nil {
		mirrorWorker := worker.NewMirrorWorker(repo, mirror, redisClient, retryPolicy(cfg.Worker), &logger)
		go mirrorWorker.Start(ctx)
		syncWorker = mirrorWorker
	}

	initNotifier(cfg, bus, &logger)

	if cfg.Store.Driver == config.DriverSQLite && cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Store.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	svc := api.Services{
		Clients:   service.NewClientService(repo, summaryCache, &logger),
		Packages:  service.NewPackageService(repo, &logger),
		Projects:  service.NewProjectService(repo, bus, syncWorker, summaryCache, 0, &logger),
		Payments:  service.NewPaymentService(repo, bus, syncWorker, summaryCache, &logger),
		Team:      service.NewTeamService(repo, &logger),
		Dashboard: service.NewDashboardService(repo, summaryCache, &logger),
	}

	server := api.NewServer(cfg.Server, cfg.RateLimit, svc, repo, summaryCache, &logger)

	return runServer(ctx, server, cfg.Server.ShutdownTimeoutDuration(), &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// store is the storage handle main owns: the repository plus its Close.
type store interface {
	domain.Repository
	io.Closer
}

func openStore(cfg *config.Config, logger *zerolog.Logger) (store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return postgres.NewStore(cfg.Store.Postgres.DSN(), logger)
	default:
		return database.NewDB(cfg.Store.Path, logger)
	}
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := cache.NewRedisClient(cfg.Redis)
	if err := cache.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func buildSummaryCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SummaryCache {
	ttl := cfg.Cache.TTLDuration()
	memory := cache.NewMemorySummaryCache(ttl)
	if redisClient == nil {
		return memory
	}
	primary := cache.NewRedisSummaryCache(redisClient, ttl)
	return cache.NewFailoverSummaryCache(primary, memory, logger)
}

func initMirror(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *sheets.Mirror {
	if !cfg.Sheets.Enabled {
		return nil
	}

	mirror, err := sheets.NewMirror(cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("sheets mirror init failed, continuing without mirror")
		return nil
	}

	headerCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mirror.TestConnection(headerCtx); err != nil {
		logger.Warn().Err(err).Msg("sheets connection test failed, continuing without mirror")
		return nil
	}
	if err := mirror.EnsureHeaders(headerCtx); err != nil {
		logger.Warn().Err(err).Msg("sheets header write failed")
	}

	logger.Info().Str("spreadsheet", cfg.Sheets.SpreadsheetID).Msg("sheets mirror connected")
	return mirror
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	bot.Debug = cfg.Telegram.Debug

	notify.NewTelegramNotifier(bot, cfg.Telegram.ChatID, logger).SubscribeAll(bus)
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
}

func retryPolicy(cfg config.WorkerConfig) worker.RetryPolicy {
	return worker.RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  cfg.InitialDelayDuration(),
		MaxDelay:      cfg.MaxDelayDuration(),
		BackoffFactor: cfg.BackoffFactor,
	}
}

func runServer(ctx context.Context, server *api.Server, shutdownTimeout time.Duration, logger *zerolog.Logger) error {
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
