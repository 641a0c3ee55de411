package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "ambient:render:"

// RenderKey is the cache key for a preset rendered at a given seed.
// Unseeded renders share one slot per preset so repeated previews are stable.
func RenderKey(preset string, seed uint64) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, preset, seed)
}

// Manager stores rendered WAV bytes in valkey
type Manager struct {
	client valkey.Client
	ttl    time.Duration
}

// NewManager creates a new cache manager and checks the connection
func NewManager(addr, password string, ttl time.Duration) (*Manager, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pingCmd := client.B().Ping().Build()
	if err := client.Do(ctx, pingCmd).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	// EX needs at least one second
	if ttl < time.Second {
		ttl = time.Hour
	}

	return &Manager{client: client, ttl: ttl}, nil
}

// Get returns the cached bytes for key. A miss is not an error.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	getCmd := m.client.B().Get().Key(key).Build()

	result := m.client.Do(ctx, getCmd)

	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached render: %w", err)
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse cached render: %w", err)
	}

	return data, true, nil
}

// Set stores data under key with the manager's TTL
func (m *Manager) Set(ctx context.Context, key string, data []byte) error {
	setCmd := m.client.B().Set().
		Key(key).
		Value(valkey.BinaryString(data)).
		ExSeconds(int64(m.ttl / time.Second)).
		Build()

	if err := m.client.Do(ctx, setCmd).Error(); err != nil {
		return fmt.Errorf("failed to cache render: %w", err)
	}

	return nil
}

// Invalidate drops every cached render of a preset
func (m *Manager) Invalidate(ctx context.Context, preset string) error {
	pattern := keyPrefix + preset + ":*"

	var cursor uint64
	for {
		scanCmd := m.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()

		entry, err := m.client.Do(ctx, scanCmd).AsScanEntry()
		if err != nil {
			return fmt.Errorf("failed to scan cached renders: %w", err)
		}

		if len(entry.Elements) > 0 {
			delCmd := m.client.B().Del().Key(entry.Elements...).Build()
			if err := m.client.Do(ctx, delCmd).Error(); err != nil {
				return fmt.Errorf("failed to delete cached renders: %w", err)
			}
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks the connection
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Do(ctx, m.client.B().Ping().Build()).Error()
}

// Close closes the client connection
func (m *Manager) Close() {
	m.client.Close()
}
