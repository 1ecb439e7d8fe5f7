package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/eliza-news/backend/internal/config"
	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

// Service is the PostgreSQL connection behind the repository.
type Service interface {
	// Health pings the database and reports pool statistics. The "status"
	// key is "up" or "down".
	Health(ctx context.Context) map[string]string
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db   *gorm.DB
	name string
	log  *logrus.Entry
}

// New connects to PostgreSQL through the pgx driver, migrates the schema and
// configures the connection pool.
func New(cfg config.Database, log *logrus.Entry) (Service, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s, err := open(sqlDB, cfg.Name, log, false)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Info("✅ Database connected successfully")

	if err := s.db.AutoMigrate(&models.Post{}, &models.Comment{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("✅ Database migrations completed")

	return s, nil
}

// FromConn wraps an already opened connection without migrating.
func FromConn(sqlDB *sql.DB, name string, log *logrus.Entry) (Service, error) {
	return open(sqlDB, name, log, true)
}

func open(sqlDB *sql.DB, name string, log *logrus.Entry, skipPing bool) (*service, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               gormLogger,
		DisableAutomaticPing: skipPing,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return &service{db: db, name: name, log: log}, nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

const healthTimeout = 5 * time.Second

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	stats := map[string]string{"database": s.name}

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.log.WithError(err).Error("database health check failed")
		return stats
	}

	pool := sqlDB.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(pool.OpenConnections)
	stats["in_use"] = strconv.Itoa(pool.InUse)
	stats["idle"] = strconv.Itoa(pool.Idle)
	stats["wait_count"] = strconv.FormatInt(pool.WaitCount, 10)

	switch {
	case pool.MaxOpenConnections > 0 && pool.InUse >= pool.MaxOpenConnections:
		stats["message"] = "connection pool exhausted"
	case pool.WaitCount > 1000:
		stats["message"] = "high connection wait count"
	default:
		stats["message"] = "healthy"
	}
	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.WithField("database", s.name).Info("disconnected from database")
	return sqlDB.Close()
}
