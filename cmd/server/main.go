package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/infra"
	"github.com/scorekeep/server/internal/repository"
	"github.com/scorekeep/server/internal/server"
	"github.com/scorekeep/server/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	// Repositories
	playerRepo := repository.NewPlayerRepository()
	matchRepo := repository.NewMatchRepository()
	banRepo := repository.NewBanRepository()
	auditRepo := repository.NewAuditRepository()
	seasonRepo := repository.NewSeasonRepository()
	premiumRepo := repository.NewPremiumRepository()
	chatRepo := repository.NewChatRepository()
	tournamentRepo := repository.NewTournamentRepository()
	statsRepo := repository.NewStatsRepository()

	// Services
	audit := service.NewAuditLog(auditRepo, producer, cfg.AuditTopic, logger)
	accountSvc := service.NewAccountService(pool, playerRepo, banRepo)
	premiumSvc := service.NewPremiumService(pool, playerRepo, premiumRepo, seasonRepo, audit)
	statsSvc := service.NewStatsService(pool, playerRepo, matchRepo, statsRepo, premiumSvc, domain.NewRandomRangeStrategy())
	moderationSvc := service.NewModerationService(pool, playerRepo, matchRepo, banRepo, statsRepo, audit)
	chatSvc := service.NewChatService(pool, playerRepo, chatRepo)
	tournamentSvc := service.NewTournamentService(pool, playerRepo, tournamentRepo, audit)

	if cfg.CreateDefaultAdmin {
		if err := accountSvc.EnsureDefaultAdmin(ctx, logger); err != nil {
			return fmt.Errorf("ensure default admin: %w", err)
		}
	}

	// Protocol surface
	actors := func(ctx context.Context, nickname string) (*domain.Player, error) {
		return playerRepo.FindByNickname(ctx, pool, nickname)
	}
	router := server.NewRouter(actors, logger)
	handlers := server.NewHandlers(accountSvc, statsSvc, moderationSvc, premiumSvc, chatSvc, tournamentSvc)
	handlers.Register(router)

	// Health endpoint for orchestration probes.
	health := chi.NewRouter()
	health.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := infra.HealthCheck(r.Context(), pool); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	healthSrv := &http.Server{Addr: cfg.HealthAddr, Handler: health}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = healthSrv.Shutdown(shutdownCtx)
	}()

	srv := server.New(cfg.ListenAddr, router, logger)
	return srv.Run(ctx)
}
