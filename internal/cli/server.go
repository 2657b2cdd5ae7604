package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emotion-quiz-service/internal/app"
	"emotion-quiz-service/internal/config"
	"emotion-quiz-service/internal/infra/memory"
	pgloader "emotion-quiz-service/internal/infra/postgres"
	rediscache "emotion-quiz-service/internal/infra/redis"
	"emotion-quiz-service/internal/infra/sqlite"
	transport "emotion-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var loader memory.CatalogLoader = memory.NewBuiltinLoader()
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewCatalogLoader(pool)
		log.Printf("catalogs from postgres")
	case cfg.SQLite.Path != "":
		store, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		loader = store
		log.Printf("catalogs from sqlite %s", cfg.SQLite.Path)
	default:
		log.Printf("catalogs from built-ins")
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogRepo app.CatalogRepository
	if redisClient != nil {
		catalogRepo = rediscache.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	// Fail fast on a misconfigured default catalog rather than on the first connection.
	if cfg.Catalog.ID != "" {
		cat, err := catalogRepo.GetCatalog(ctx, cfg.Catalog.ID)
		if err != nil {
			return err
		}
		if err := cat.Validate(); err != nil {
			return err
		}
	}

	service := app.NewQuizService(store, catalogRepo, app.Options{
		DefaultCatalog:  cfg.Catalog.ID,
		DefaultExposure: config.TTLDuration(cfg.Quiz.Exposure, 0),
		MinExposure:     config.TTLDuration(cfg.Quiz.MinExposure, 0),
		MaxExposure:     config.TTLDuration(cfg.Quiz.MaxExposure, 0),
		AssetBaseURL:    cfg.Catalog.AssetBaseURL,
		Seed:            cfg.Quiz.Seed,
		LogTrials:       cfg.Quiz.LogTrials,
	})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/catalogs/", transport.NewCatalogHandler(service))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting emotion quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
