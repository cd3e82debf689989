package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplement-quiz-service/internal/config"
	"supplement-quiz-service/internal/domain"
	"supplement-quiz-service/internal/infra/memory"
	pginfra "supplement-quiz-service/internal/infra/postgres"
	redisinfra "supplement-quiz-service/internal/infra/redis"
	"supplement-quiz-service/internal/logger"
	"supplement-quiz-service/internal/quiz"
	"supplement-quiz-service/internal/recs"
	"supplement-quiz-service/internal/review"
	transport "supplement-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz advisor server",
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

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalogs())
	if pool != nil {
		loader = pginfra.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs quiz.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var sessions quiz.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var reviewRepo review.Repository = memory.NewReviewStore()
	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
		defer bunDB.Close()
		reviewRepo = pginfra.NewReviewRepository(bunDB)
	}

	quizService := quiz.NewService(sessions, catalogs)
	reviewService := review.NewService(reviewRepo)

	recsTimeout := config.TTLDuration(cfg.Recommender.Timeout, 10*time.Second)
	recsClient := recs.NewClient(cfg.Recommender.BaseURL, recsTimeout, nil, log)

	reportTimeout := config.TTLDuration(cfg.Report.Timeout, 30*time.Second)
	reportInterval := config.TTLDuration(cfg.Report.PollInterval, time.Second)
	reportClient := recs.NewReportClient(cfg.Report.BaseURL, reportTimeout, cfg.Report.PollAttempts, reportInterval, log)

	wsHandler := transport.NewWSHandler(quizService, reviewService, recsClient, log)
	reviewHandler := transport.NewReviewHandler(reviewService, log)
	reportHandler := transport.NewReportHandler(reportClient, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	reviewHandler.Register(mux)
	reportHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz advisor", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalogs provides a minimal built-in catalog; swap the loader with the
// Postgres-backed one by configuring postgres.url.
func sampleCatalogs() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		"default": {
			ID: "default",
			Supplements: []domain.Supplement{
				{
					ID:    "vitamin-d",
					Name:  "Vitamin D",
					Group: "vitamins",
					Screening: []domain.Question{
						{
							Prompt: "How much time do you spend outdoors in daylight?",
							Options: []domain.Option{
								{Label: "More than an hour a day", Score: 0},
								{Label: "A few hours a week", Score: 1},
								{Label: "Almost none", Score: 2},
							},
						},
						{
							Prompt: "Do you often feel low on energy in winter?",
							Options: []domain.Option{
								{Label: "Rarely", Score: 0},
								{Label: "Sometimes", Score: 1},
								{Label: "Most days", Score: 2},
							},
						},
					},
					Detail: []domain.Question{
						{
							Subtitle: "A few more questions about vitamin D",
							Prompt:   "Do you use sunscreen whenever you are outside?",
							Options: []domain.Option{
								{Label: "No", Score: 0},
								{Label: "Usually", Score: 1},
								{Label: "Always", Score: 2},
							},
						},
					},
					Threshold: 2,
				},
				{
					ID:    "magnesium",
					Name:  "Magnesium",
					Group: "minerals",
					Screening: []domain.Question{
						{
							Prompt: "Do you experience muscle cramps?",
							Options: []domain.Option{
								{Label: "Never", Score: 0},
								{Label: "Occasionally", Score: 1},
								{Label: "Frequently", Score: 2},
							},
						},
					},
				},
			},
		},
	}
}
