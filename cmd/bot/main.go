package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/common/clock"
	"github.com/KirkDiggler/crowdplay/internal/common/uuid"
	"github.com/KirkDiggler/crowdplay/internal/config"
	"github.com/KirkDiggler/crowdplay/internal/dice"
	"github.com/KirkDiggler/crowdplay/internal/handlers/discord"
	"github.com/KirkDiggler/crowdplay/internal/logger"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	leaderboardRepo "github.com/KirkDiggler/crowdplay/internal/repositories/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/adventure"
	"github.com/KirkDiggler/crowdplay/internal/services/arena"
	"github.com/KirkDiggler/crowdplay/internal/services/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/numberbattle"
	"github.com/KirkDiggler/crowdplay/internal/services/pet"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("bot exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}

	log.Info("bot has been shut down")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameMetrics := metrics.New()
	metricsServer := startMetricsServer(cfg.MetricsAddr, gameMetrics, log)

	// Initialize dice roller
	diceRoller := dice.New(&dice.Config{Seed: cfg.RandomSeed})

	repo, closeRepo, err := newLeaderboardRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	battleBoard, err := leaderboard.New(&leaderboard.Config{Board: numberbattle.Mode, Repository: repo})
	if err != nil {
		return fmt.Errorf("failed to create number battle leaderboard: %w", err)
	}
	arenaBoard, err := leaderboard.New(&leaderboard.Config{Board: arena.Mode, Repository: repo})
	if err != nil {
		return fmt.Errorf("failed to create arena leaderboard: %w", err)
	}

	// Boards live for the lifetime of the process only
	for _, board := range []*leaderboard.Service{battleBoard, arenaBoard} {
		if err := board.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset leaderboard %s: %w", board.Board(), err)
		}
	}

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{
		DiceRoller: diceRoller,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	loop := scheduler.NewLoop(&scheduler.LoopConfig{Logger: log})

	bot, err := discord.New(&discord.Config{
		Token:         cfg.DiscordToken,
		ChannelID:     cfg.DiscordChannelID,
		Prefix:        cfg.CommandPrefix,
		ApplicationID: cfg.DiscordAppID,
		GuildID:       cfg.DiscordGuildID,
		Loop:          loop,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	systemClock := clock.New()
	generator := uuid.New()
	names := roster.New()

	adventureSvc, err := adventure.New(&adventure.Config{
		Scheduler:     loop,
		Clock:         systemClock,
		UUIDGenerator: generator,
		Sink:          bot,
		Roster:        names,
		Logger:        log,
		Metrics:       gameMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create adventure mode: %w", err)
	}

	battleSvc, err := numberbattle.New(&numberbattle.Config{
		Scheduler:     loop,
		Clock:         systemClock,
		UUIDGenerator: generator,
		Sink:          bot,
		DiceRoller:    diceRoller,
		Leaderboard:   battleBoard,
		Messaging:     messagingSvc,
		Roster:        names,
		Logger:        log,
		Metrics:       gameMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create number battle mode: %w", err)
	}

	petSvc, err := pet.New(&pet.Config{
		Scheduler:  loop,
		Clock:      systemClock,
		DiceRoller: diceRoller,
		Sink:       bot,
		Roster:     names,
		Logger:     log,
		Metrics:    gameMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create pet mode: %w", err)
	}

	arenaSvc, err := arena.New(&arena.Config{
		Scheduler:     loop,
		Clock:         systemClock,
		UUIDGenerator: generator,
		Sink:          bot,
		DiceRoller:    diceRoller,
		Leaderboard:   arenaBoard,
		Messaging:     messagingSvc,
		Roster:        names,
		Logger:        log,
		Metrics:       gameMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create arena mode: %w", err)
	}

	routerSvc, err := router.New(&router.Config{
		Modes:     []router.Mode{adventureSvc, battleSvc, petSvc, arenaSvc},
		Messaging: messagingSvc,
		Roster:    names,
		Logger:    log,
		Metrics:   gameMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()
	defer func() {
		stopLoop()
		<-loopDone
	}()

	if err := bot.Start(routerSvc); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	log.Info("bot is now running, press CTRL-C to exit")
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := loop.Do(shutdownCtx, petSvc.Stop); err != nil {
		log.Warn("failed to stop pet decay", zap.Error(err))
	}

	if err := bot.Stop(); err != nil {
		log.Warn("error stopping bot", zap.Error(err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("error stopping metrics server", zap.Error(err))
		}
	}

	return nil
}

// newLeaderboardRepository builds the configured store and a func that
// releases it
func newLeaderboardRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (leaderboardRepo.Repository, func(), error) {
	if cfg.LeaderboardStore != config.StoreRedis {
		return leaderboardRepo.NewMemory(), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	repo, err := leaderboardRepo.NewRedis(&leaderboardRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to create leaderboard repository: %w", err)
	}

	log.Info("using redis leaderboard", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))

	return repo, func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("error closing redis client", zap.Error(err))
		}
	}, nil
}

func startMetricsServer(addr string, m *metrics.Metrics, log *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	return server
}
