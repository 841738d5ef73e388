package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// FileStore keeps snapshots as JSON files
type FileStore struct {
	dataDir string
}

// NewFileStore creates the data directory if needed. A leading "~/" is expanded to the
// home directory.
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}

	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{
		dataDir: dataDir,
	}, nil
}

// Dir returns the expanded data directory.
func (s *FileStore) Dir() string {
	return s.dataDir
}

func (s *FileStore) snapshotPath(feed string) (string, error) {
	name, err := feedName(feed)
	if err != nil {
		return "", err
	}
	if name == DefaultFeed {
		return filepath.Join(s.dataDir, "snapshot.json"), nil
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", name)), nil
}

// Load reads the feed's snapshot from disk
func (s *FileStore) Load(_ context.Context, feed string) (*event.Snapshot, error) {
	path, err := s.snapshotPath(feed)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	return decodeSnapshot(data)
}

// Save writes the feed's snapshot to disk. The file is replaced atomically so a crash
// mid-write leaves the previous snapshot in place.
func (s *FileStore) Save(_ context.Context, feed string, snapshot *event.Snapshot) error {
	path, err := s.snapshotPath(feed)
	if err != nil {
		return err
	}

	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}
