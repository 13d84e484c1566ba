package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"movexa_cms/internal/migrations"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN returns DATABASE_URL when set, otherwise a keyword DSN built from the parts
func (c DBConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", fmt.Errorf("database environment variables not set (DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name), nil
}

// RetryPolicy controls ConnectDB
type RetryPolicy struct {
	Attempts int
	Interval time.Duration
}

var DefaultRetry = RetryPolicy{Attempts: 5, Interval: 5 * time.Second}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg DBConfig, retry RetryPolicy, log logrus.FieldLogger) (*pgxpool.Pool, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	var pool *pgxpool.Pool
	for i := 0; i < retry.Attempts; i++ {
		pool, err = pgxpool.New(ctx, dsn)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				log.Info("Successfully connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		log.WithError(err).Warnf("Failed to connect to database (attempt %d/%d), retrying in %v", i+1, retry.Attempts, retry.Interval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Interval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", retry.Attempts, err)
}

// Migrate applies the embedded schema migrations through the pool
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) { _ = db.Close() }(db)
	return migrations.Run(ctx, db)
}
