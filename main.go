package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"finance-tracker-backend/internal/config"
	"finance-tracker-backend/internal/store"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	// Check for migrate command
	migrateCmd := flag.Bool("migrate", false, "Run database migration and seed categories")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo expenses, income and shares for the default owner (idempotent)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	if *migrateCmd {
		if err := setupDatabase(cfg); err != nil {
			logger.Fatal().Err(err).Msg("Migration failed")
		}
		logger.Info().Msg("Migration completed successfully")
		os.Exit(0)
	}
	if *seedDemoCmd {
		if err := seedDemo(cfg); err != nil {
			logger.Fatal().Err(err).Msg("Seeding demo data failed")
		}
		logger.Info().Str("owner", cfg.Server.DefaultOwner).Msg("Demo data seeded")
		os.Exit(0)
	}

	// Initialize database
	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := ensureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create schema")
	}
	if _, err := seedDefaultCategories(ctx, db); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed categories")
	}
	cancel()

	// Initialize Redis
	redisClient, err := initRedis(cfg.Cache.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Redis, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	local, err := store.NewLocalStore(cfg.Store.LocalDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare local store")
	}
	remote := store.NewPostgresStore(db)
	m := newMetrics(prometheus.DefaultRegisterer)
	records := &store.FallbackStore{Remote: remote, Local: local, OnFallback: m.storeFallback}

	scheduler, err := startSnapshotScheduler(cfg.Store.SnapshotSchedule, remote, records)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid SNAPSHOT_SCHEDULE")
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	s := &server{
		records: records,
		catalog: remote,
		cache: &cache{
			client:       redisClient,
			recordTTL:    cfg.Cache.RecordTTL,
			analyticsTTL: cfg.Cache.AnalyticsTTL,
		},
		metrics:  m,
		currency: cfg.Report.Currency,
		now:      time.Now,
	}
	r := newRouter(s, cfg.Server.DefaultOwner, prometheus.DefaultGatherer)

	logger.Info().Str("port", cfg.Server.Port).Msg("Server starting")
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func newRouter(s *server, defaultOwner string, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.metrics.instrument())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", ownerHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", dataSourceHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api", ownerScope(defaultOwner))
	api.GET("/categories", s.getCategories)

	api.GET("/expenses", s.getExpenses)
	api.POST("/expenses", s.addExpense)
	api.DELETE("/expenses/:id", s.deleteExpense)

	api.GET("/income", s.getIncomes)
	api.POST("/income", s.addIncome)
	api.DELETE("/income/:id", s.deleteIncome)

	api.GET("/shares", s.getShares)
	api.POST("/shares", s.addShare)
	api.DELETE("/shares/:id", s.deleteShare)

	api.PUT("/quotes/:symbol", s.setQuote)

	api.GET("/analytics/summary", s.getSummary)
	api.GET("/analytics/macd", s.getMACD)
	api.GET("/analytics/portfolio", s.getPortfolio)
	api.GET("/analytics/price-history", s.getPriceHistory)

	api.GET("/reports/:kind", s.getReport)

	return r
}
