package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// To abstract db methods from pgxpool api
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db      DBTX
	timeout time.Duration
}

func NewPostgresStore(pool DBTX) *PostgresStore {
	return &PostgresStore{
		db:      pool,
		timeout: 3 * time.Second,
	}
}

// SetTimeout bounds each catalog query; non-positive values are ignored
func (s *PostgresStore) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

type AssetStore interface {
	CreateAsset(ctx context.Context, asset *Asset) error
	GetAssetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	ListAssets(ctx context.Context, limit, offset int) ([]*Asset, error)
	ListAssetsByName(ctx context.Context, name string, limit, offset int) ([]*Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) error
}

func CreatePostgresPool(parentCtx context.Context, dburl string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(parentCtx, time.Second*3)
	defer cancel()

	pool, err := pgxpool.New(ctx, dburl)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func (s *PostgresStore) withTimeout(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parentCtx, s.timeout)
}
