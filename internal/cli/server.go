package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quizpin-service/internal/app"
	"quizpin-service/internal/config"
	"quizpin-service/internal/infra/memory"
	pgstore "quizpin-service/internal/infra/postgres"
	redisstore "quizpin-service/internal/infra/redis"
	"quizpin-service/internal/pin"
	"quizpin-service/internal/questionbank"
	transport "quizpin-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	questionsDir := cfg.Quiz.QuestionsDir
	if questionsDir == "" {
		questionsDir = "questions"
	}
	defaultLanguage := cfg.Quiz.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = "de"
	}

	var loader questionbank.Loader = questionbank.NewFileLoader(questionsDir)
	if pool != nil {
		loader = pgstore.NewCatalogLoader(pool)
	}
	catalogTTL := config.Duration(cfg.Quiz.CatalogTTL, 10*time.Minute)
	bank := questionbank.NewBank(loader, catalogTTL)

	gameTTL := config.Duration(cfg.Quiz.GameTTL, 24*time.Hour)
	var store app.GameStore
	if redisClient != nil {
		store = redisstore.NewGameStore(redisClient, gameTTL)
	} else {
		store = memory.NewGameStore()
	}

	hub := transport.NewHub()
	allocator := pin.NewAllocator(store)
	engine := app.NewGameEngine(store, allocator, hub, cfg.Quiz.MaxPlayers)

	var stats transport.StatsStore
	if pool != nil {
		stats = pgstore.NewStatsRepository(pool)
	}

	wsHandler := transport.NewWSHandler(engine, hub)
	hostHandler := transport.NewHostHandler(engine, bank, hub, cfg.Quiz.MaxQuestions, defaultLanguage)
	soloHandler := transport.NewSoloHandler(bank, stats, defaultLanguage)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	hostHandler.Register(mux)
	soloHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	sweepInterval := config.Duration(cfg.Quiz.SweepInterval, time.Hour)
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runExpirySweep(sweepCtx, engine, gameTTL, sweepInterval)

	go func() {
		logrus.WithField("port", finalPort).Info("starting quiz game server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logrus.Info("shutting down server...")
	case <-ctx.Done():
		logrus.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runExpirySweep periodically deletes games older than the TTL.
func runExpirySweep(ctx context.Context, engine *app.GameEngine, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := engine.CleanupExpired(ctx, ttl); err != nil {
				logrus.WithError(err).Warn("expiry sweep failed")
			}
		}
	}
}
