package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/text-analyzer/internal/config"
	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
	mysqlp "github.com/bryanwahyu/text-analyzer/internal/infra/db/mysql"
	"github.com/bryanwahyu/text-analyzer/internal/infra/db/postgres"
	"github.com/bryanwahyu/text-analyzer/internal/infra/db/sqlite"
	minioStore "github.com/bryanwahyu/text-analyzer/internal/infra/storage"
)

// Handle is an open connection to the document store.
type Handle struct {
	domain.Repository
	ping  func(ctx context.Context) error
	close func() error
}

// NewHandle wraps a repository; ping and close may be nil.
func NewHandle(repo domain.Repository, ping func(context.Context) error, close func() error) *Handle {
	return &Handle{Repository: repo, ping: ping, close: close}
}

func (h *Handle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

type schemaRepository interface {
	domain.Repository
	EnsureSchema(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver. cfg must already be valid.
func Open(ctx context.Context, cfg config.Persistence) (*Handle, error) {
	switch cfg.DriverName() {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		return openSQL(ctx, db, mysqlp.NewAnalysisRepository(db, cfg.Collection))
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		return openSQL(ctx, db, postgres.NewAnalysisRepository(db, cfg.Collection))
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return openSQL(ctx, db, sqlite.NewAnalysisRepository(db, cfg.Collection))
	case config.DriverMinio:
		store, err := minioStore.New(ctx, cfg.Endpoint, cfg.Database, cfg.User, cfg.Key, cfg.Collection, cfg.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		return NewHandle(store, store.Ping, nil), nil
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Driver)
	}
}

func openSQL(ctx context.Context, db *sql.DB, repo schemaRepository) (*Handle, error) {
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewHandle(repo, db.PingContext, db.Close), nil
}
