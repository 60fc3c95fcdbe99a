package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"finance-tracker-backend/internal/config"
)

// openDB connects to PostgreSQL, waiting for it to come up
func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	pgxConfig, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	for i := 0; i < cfg.MaxRetries; i++ {
		db := stdlib.OpenDB(*pgxConfig)
		err := db.Ping()
		if err == nil {
			logger.Info().Int("attempt", i+1).Msg("Database connection established")
			return db, nil
		}
		db.Close()
		if i == cfg.MaxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, err)
		}

		// Log the actual error on the first few attempts and every 10th after
		var event *zerolog.Event
		if i%10 == 0 || i < 5 {
			event = logger.Warn().Err(err)
		} else {
			event = logger.Info()
		}
		event.Int("attempt", i+1).Int("max_attempts", cfg.MaxRetries).Dur("retry_in", cfg.RetryDelay).
			Msg("Database not ready, retrying")
		time.Sleep(cfg.RetryDelay)
	}
	return nil, fmt.Errorf("failed to connect to database: no attempts made")
}
