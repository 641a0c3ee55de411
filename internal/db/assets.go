package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAssetNotFound = errors.New("asset not found")

// EnsureSchema creates the catalog table and index
func (s *PostgresStore) EnsureSchema(parentCtx context.Context) error {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping checks that the database answers
func (s *PostgresStore) Ping(parentCtx context.Context) error {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("failed to ping catalog: %w", err)
	}
	return nil
}

// CreateAsset records a published asset
func (s *PostgresStore) CreateAsset(parentCtx context.Context, asset *Asset) error {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	query := `
		INSERT INTO ambient_assets (
			id, name, object_path, file_size, sample_rate, num_samples,
			duration_seconds, filter_kind, cutoff_hz, normalize_target, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, query,
		asset.ID,
		asset.Name,
		asset.ObjectPath,
		asset.FileSize,
		asset.SampleRate,
		asset.NumSamples,
		asset.DurationSecs,
		asset.FilterKind,
		asset.CutoffHz,
		asset.NormalizeTarget,
		asset.CreatedAt,
	)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("operation cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

const selectAsset = `
	SELECT
		id, name, object_path, file_size, sample_rate, num_samples,
		duration_seconds, filter_kind, cutoff_hz, normalize_target, created_at
	FROM ambient_assets
`

func scanAsset(row pgx.Row) (*Asset, error) {
	a := &Asset{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.ObjectPath,
		&a.FileSize,
		&a.SampleRate,
		&a.NumSamples,
		&a.DurationSecs,
		&a.FilterKind,
		&a.CutoffHz,
		&a.NormalizeTarget,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAssetByID retrieves an asset by ID
func (s *PostgresStore) GetAssetByID(parentCtx context.Context, id uuid.UUID) (*Asset, error) {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	asset, err := scanAsset(s.db.QueryRow(ctx, selectAsset+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// ListAssets returns the newest assets first
func (s *PostgresStore) ListAssets(parentCtx context.Context, limit, offset int) ([]*Asset, error) {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	rows, err := s.db.Query(ctx, selectAsset+" ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return collectAssets(rows)
}

// ListAssetsByName returns the published versions of one preset, newest first
func (s *PostgresStore) ListAssetsByName(parentCtx context.Context, name string, limit, offset int) ([]*Asset, error) {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	rows, err := s.db.Query(ctx, selectAsset+" WHERE name = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", name, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return collectAssets(rows)
}

func collectAssets(rows pgx.Rows) ([]*Asset, error) {
	defer rows.Close()

	assets := []*Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// DeleteAsset removes an asset record
func (s *PostgresStore) DeleteAsset(parentCtx context.Context, id uuid.UUID) error {
	ctx, cancel := s.withTimeout(parentCtx)
	defer cancel()

	tag, err := s.db.Exec(ctx, "DELETE FROM ambient_assets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}

	return nil
}
