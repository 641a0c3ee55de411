package publish

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rx3lixir/ambient/internal/db"
	"github.com/rx3lixir/ambient/internal/generator"
)

const audioFormat = "wav"

// ObjectStore keeps encoded assets
type ObjectStore interface {
	UploadAsset(ctx context.Context, name string, assetID uuid.UUID, data []byte, audioFormat string) (string, error)
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	DeleteAsset(ctx context.Context, objectName string) error
}

// Recorder writes catalog entries
type Recorder interface {
	CreateAsset(ctx context.Context, asset *db.Asset) error
}

// Result is a published asset and a download link for it
type Result struct {
	Asset *db.Asset `json:"asset"`
	URL   string    `json:"url,omitempty"`
}

// Publisher uploads rendered assets and records them in the catalog.
// The catalog is optional; a nil Recorder skips recording.
type Publisher struct {
	store     ObjectStore
	catalog   Recorder
	urlExpiry time.Duration
	logger    *log.Logger
}

func New(store ObjectStore, catalog Recorder, urlExpiry time.Duration, logger *log.Logger) *Publisher {
	return &Publisher{
		store:     store,
		catalog:   catalog,
		urlExpiry: urlExpiry,
		logger:    logger,
	}
}

// Publish uploads encoded WAV data rendered from preset
func (p *Publisher) Publish(ctx context.Context, assetID uuid.UUID, preset generator.Preset, data []byte, numSamples int) (*Result, error) {
	if assetID == uuid.Nil {
		assetID = uuid.New()
	}

	objectPath, err := p.store.UploadAsset(ctx, preset.Name, assetID, data, audioFormat)
	if err != nil {
		return nil, err
	}

	asset := &db.Asset{
		ID:              assetID,
		Name:            preset.Name,
		ObjectPath:      objectPath,
		FileSize:        int64(len(data)),
		SampleRate:      preset.SampleRate,
		NumSamples:      numSamples,
		DurationSecs:    float64(numSamples) / float64(preset.SampleRate),
		FilterKind:      string(preset.Filter),
		CutoffHz:        preset.CutoffHz,
		NormalizeTarget: preset.NormalizeTarget,
		CreatedAt:       time.Now().UTC(),
	}

	if p.catalog != nil {
		if err := p.catalog.CreateAsset(ctx, asset); err != nil {
			if delErr := p.store.DeleteAsset(ctx, objectPath); delErr != nil {
				p.logger.Warn("Failed to remove unrecorded object", "object", objectPath, "error", delErr)
			}
			return nil, err
		}
	}

	url := p.PresignedURL(ctx, objectPath)

	p.logger.Info(
		"Asset published",
		"asset", preset.Name,
		"id", assetID,
		"object", objectPath,
		"bytes", len(data),
	)

	return &Result{Asset: asset, URL: url}, nil
}

// PublishFile uploads an asset the generator already wrote to disk
func (p *Publisher) PublishFile(ctx context.Context, a generator.Asset) (*Result, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.Path, err)
	}

	return p.Publish(ctx, a.ID, a.Preset, data, a.NumSamples)
}

// PresignedURL returns a download link for objectPath, or "" when signing fails
func (p *Publisher) PresignedURL(ctx context.Context, objectPath string) string {
	url, err := p.store.GetPresignedURL(ctx, objectPath, p.urlExpiry)
	if err != nil {
		p.logger.Warn("Failed to presign asset URL", "object", objectPath, "error", err)
		return ""
	}
	return url
}

// Unpublish removes the stored object of a catalog asset
func (p *Publisher) Unpublish(ctx context.Context, asset *db.Asset) error {
	if err := p.store.DeleteAsset(ctx, asset.ObjectPath); err != nil {
		return err
	}

	p.logger.Info("Asset unpublished", "asset", asset.Name, "id", asset.ID, "object", asset.ObjectPath)
	return nil
}
