package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/venue-events/internal/event"
)

const (
	// DefaultFeed is the feed name used when none is given.
	DefaultFeed = "all"

	DefaultDataDir     = "~/.local/share/venue-events"
	DefaultRedisPrefix = "venue-events:"
)

var (
	ErrNotFound    = errors.New("event not found")
	ErrInvalidFeed = errors.New("invalid feed name")
)

// Store loads and saves the snapshot of a feed. Loading a feed that was never saved returns
// an empty snapshot, not an error.
type Store interface {
	Load(ctx context.Context, feed string) (*event.Snapshot, error)
	Save(ctx context.Context, feed string, snapshot *event.Snapshot) error
}

// Lookup returns the event with the given fingerprint from the feed's snapshot.
func Lookup(ctx context.Context, store Store, feed, fingerprint string) (*event.Event, error) {
	snapshot, err := store.Load(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if evt, exists := snapshot.Events[fingerprint]; exists {
		return evt, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, fingerprint)
}

// feedName maps "" to DefaultFeed and rejects names that cannot be used in a file name.
func feedName(feed string) (string, error) {
	feed = strings.ToLower(strings.TrimSpace(feed))
	if feed == "" {
		return DefaultFeed, nil
	}
	if strings.ContainsAny(feed, `/\:`) || strings.Contains(feed, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFeed, feed)
	}
	return feed, nil
}

func encodeSnapshot(snapshot *event.Snapshot) ([]byte, error) {
	if snapshot.UpdatedAt == "" {
		snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*event.Snapshot, error) {
	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*event.Event)
	}
	if snapshot.TitleIndex == nil {
		snapshot.TitleIndex = make(map[string]string, len(snapshot.Events))
		for fp, evt := range snapshot.Events {
			if evt != nil {
				snapshot.TitleIndex[evt.TitleKey()] = fp
			}
		}
	}

	return &snapshot, nil
}
