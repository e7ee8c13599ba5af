package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrMasterNotFound   = errors.New("master not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// Store — слой доступа к Postgres. Пул конструируется явно и передаётся
// внутрь: никаких ленивых синглтонов на уровне пакета.
type Store struct {
	db     *sqlx.DB
	logger *zerolog.Logger
}

// Connect открывает пул соединений с ограничениями из конфига.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(connectCtx, "postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

func NewStore(db *sqlx.DB, logger *zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Setup идемпотентно накатывает схему (шесть доменных таблиц плюс очередь
// синхронизации) и возвращает время кругового обхода до базы.
func (s *Store) Setup(ctx context.Context) (time.Duration, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db.DB, "migrations"); err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("ping after setup: %w", err)
	}
	return time.Since(start), nil
}

// Ping проверяет соединение и возвращает задержку.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
