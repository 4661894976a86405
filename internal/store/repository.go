package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prodscan/internal/catalog"
)

// Key prefixes. Per-artist keys are the prefix followed by the artist id.
const (
	ReleasesPrefix    = "releases_"
	FailedQueuePrefix = "failedQueue_"
	LastUpdatedPrefix = "lastUpdated_"
	SettingsKey       = "userSettings"
)

// Settings is the globally persisted target-artist selection.
type Settings struct {
	ArtistID   string `json:"artistId"`
	ArtistName string `json:"artistName"`
	Token      string `json:"token,omitempty"`
}

// Repository reads and writes typed scan state over a KV.
type Repository struct {
	kv KV
}

// NewRepository wraps kv.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// KV returns the underlying store.
func (r *Repository) KV() KV {
	return r.kv
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	if r == nil || r.kv == nil {
		return nil
	}
	return r.kv.Close()
}

// Collection loads the artist's processed items; absent means empty.
func (r *Repository) Collection(ctx context.Context, artistID string) ([]catalog.Item, error) {
	var items []catalog.Item
	if _, err := r.getJSON(ctx, artistKey(ReleasesPrefix, artistID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveCollection replaces the artist's processed items.
func (r *Repository) SaveCollection(ctx context.Context, artistID string, items []catalog.Item) error {
	if items == nil {
		items = []catalog.Item{}
	}
	return r.setJSON(ctx, artistKey(ReleasesPrefix, artistID), items)
}

// FailedQueue loads the artist's failure queue; absent means empty.
func (r *Repository) FailedQueue(ctx context.Context, artistID string) ([]catalog.FailedItem, error) {
	var queue []catalog.FailedItem
	if _, err := r.getJSON(ctx, artistKey(FailedQueuePrefix, artistID), &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// SaveFailedQueue replaces the artist's failure queue. An empty queue removes
// the key.
func (r *Repository) SaveFailedQueue(ctx context.Context, artistID string, queue []catalog.FailedItem) error {
	key := artistKey(FailedQueuePrefix, artistID)
	if len(queue) == 0 {
		return r.kv.Remove(ctx, key)
	}
	return r.setJSON(ctx, key, queue)
}

// LastUpdated returns the last successful sync time, if any.
func (r *Repository) LastUpdated(ctx context.Context, artistID string) (time.Time, bool, error) {
	var stamp time.Time
	found, err := r.getJSON(ctx, artistKey(LastUpdatedPrefix, artistID), &stamp)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return stamp, true, nil
}

// SetLastUpdated stamps the artist's last sync time.
func (r *Repository) SetLastUpdated(ctx context.Context, artistID string, at time.Time) error {
	return r.setJSON(ctx, artistKey(LastUpdatedPrefix, artistID), at.UTC())
}

// Settings loads the saved target artist; ok is false when none was saved.
func (r *Repository) Settings(ctx context.Context) (Settings, bool, error) {
	var settings Settings
	found, err := r.getJSON(ctx, SettingsKey, &settings)
	if err != nil {
		return Settings{}, false, err
	}
	return settings, found, nil
}

// SaveSettings persists the target artist.
func (r *Repository) SaveSettings(ctx context.Context, settings Settings) error {
	if strings.TrimSpace(settings.ArtistID) == "" {
		return errors.New("settings: artist id is required")
	}
	return r.setJSON(ctx, SettingsKey, settings)
}

// ClearArtist removes the artist's collection, failure queue and timestamp.
// Settings are left alone.
func (r *Repository) ClearArtist(ctx context.Context, artistID string) error {
	for _, prefix := range []string{ReleasesPrefix, FailedQueuePrefix, LastUpdatedPrefix} {
		if err := r.kv.Remove(ctx, artistKey(prefix, artistID)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (r *Repository) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return r.kv.Set(ctx, key, raw)
}

func artistKey(prefix, artistID string) string {
	return prefix + strings.TrimSpace(artistID)
}
