package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/project-sy789/coffeeorder-sub000/internal/config"
	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
)

const (
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// memoryDSN keeps one private in-memory database per connection, so the pool is pinned to a single connection.
const memoryDSN = "file::memory:?_foreign_keys=on"

// Open connects to the database named by cfg.DatabaseURL.
func Open(ctx context.Context, cfg *config.Config, lg *logger.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: newGormLogger(lg, cfg.Database.SlowThreshold), NowFunc: nowUTC}

	switch {
	case cfg.IsMemory():
		return openMemory(gormCfg)
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		sqlDB, err := connectPostgres(ctx, cfg.DatabaseURL, cfg.Database.ConnectRetries, lg)
		if err != nil {
			return nil, err
		}
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
		}
		return gdb, nil
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite://"):
		path := strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		gdb, err := gorm.Open(sqlite.Open(path+sep+"_foreign_keys=on"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
		}
		return gdb, nil
	}
	return nil, fmt.Errorf("unsupported database URL: %s", cfg.DatabaseURL)
}

// OpenMemory opens an empty in-memory database with gorm logging silenced.
func OpenMemory() (*gorm.DB, error) {
	return openMemory(&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent), NowFunc: nowUTC})
}

// Timestamps are stored in UTC so range queries compare the same way on SQLite and PostgreSQL.
func nowUTC() time.Time { return time.Now().UTC() }

func openMemory(gormCfg *gorm.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(memoryDSN), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return gdb, nil
}

// connectPostgres opens a pgx-backed *sql.DB and pings it until it answers or retries run out.
func connectPostgres(ctx context.Context, dsn string, retries int, lg *logger.Logger) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if retries <= 0 {
		retries = 1
	}

	for i := 1; i <= retries; i++ {
		db := stdlib.OpenDB(*connCfg)

		pctx, cancel := context.WithTimeout(ctx, pingTTL)
		err = db.PingContext(pctx)
		cancel()
		if err == nil {
			lg.Info("db_connected", map[string]any{"host": connCfg.Host, "port": connCfg.Port, "database": connCfg.Database})
			return db, nil
		}
		_ = db.Close()
		lg.Warn("db_connect_retry", map[string]any{"attempt": i, "of": retries, "error": err.Error()})

		if i == retries {
			break
		}
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", retries, err)
}

// Close releases the underlying pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection, used by the health endpoint.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type gormWriter struct{ lg *logger.Logger }

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.lg.Warn("gorm", map[string]any{"detail": fmt.Sprintf(format, args...)})
}

func newGormLogger(lg *logger.Logger, slow time.Duration) gormlogger.Interface {
	return gormlogger.New(gormWriter{lg: lg.With("gorm")}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
