package db

import (
	"time"

	"github.com/google/uuid"
)

type Asset struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	ObjectPath      string    `json:"object_path"`
	FileSize        int64     `json:"file_size"`
	SampleRate      int       `json:"sample_rate"`
	NumSamples      int       `json:"num_samples"`
	DurationSecs    float64   `json:"duration_seconds"`
	FilterKind      string    `json:"filter_kind"`
	CutoffHz        float64   `json:"cutoff_hz"`
	NormalizeTarget float64   `json:"normalize_target"`
	CreatedAt       time.Time `json:"created_at"`
}

// Schema creates the catalog table if it is missing.
const Schema = `
CREATE TABLE IF NOT EXISTS ambient_assets (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	object_path      TEXT NOT NULL,
	file_size        BIGINT NOT NULL,
	sample_rate      INTEGER NOT NULL,
	num_samples      INTEGER NOT NULL,
	duration_seconds DOUBLE PRECISION NOT NULL,
	filter_kind      TEXT NOT NULL,
	cutoff_hz        DOUBLE PRECISION NOT NULL,
	normalize_target DOUBLE PRECISION NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ambient_assets_name_idx ON ambient_assets (name, created_at DESC);
`
