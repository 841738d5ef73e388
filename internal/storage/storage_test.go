package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pfrederiksen/venue-events/internal/event"
)

func testEvents(t *testing.T) []*event.Event {
	t.Helper()
	d, ok := event.NewDate(2025, time.December, 20)
	if !ok {
		t.Fatal("invalid date")
	}
	return []*event.Event{
		{ID: "a", Title: "Blues Night", Date: &d, Venue: event.Venue{Name: "The Rex"}, Source: "the-rex"},
		{ID: "b", Title: "Weekly Open Mic", Venue: event.Venue{Name: "Lee's Palace"}, Source: "lees"},
	}
}

func newMiniredisStore(t *testing.T) Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) // nolint:errcheck
	return NewRedisStoreWithClient(client, "test:")
}

func newTempFileStore(t *testing.T) Store {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

var stores = []struct {
	name string
	open func(t *testing.T) Store
}{
	{"file", newTempFileStore},
	{"redis", newMiniredisStore},
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)

	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)

			events := testEvents(t)
			snap := event.CreateSnapshot(events, nil, now)
			if err := store.Save(ctx, "toronto", snap); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			loaded, err := store.Load(ctx, "toronto")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(loaded.Events) != 2 {
				t.Fatalf("expected 2 events, got %d", len(loaded.Events))
			}

			blues := loaded.Events[events[0].Fingerprint()]
			if blues == nil {
				t.Fatal("event not stored under its fingerprint")
			}
			if blues.Date == nil || blues.Date.String() != "2025-12-20" {
				t.Errorf("Date = %v after round trip", blues.Date)
			}
			if !blues.FirstSeen.Equal(now) {
				t.Errorf("FirstSeen = %v, want %v", blues.FirstSeen, now)
			}
			if loaded.TitleIndex[events[1].TitleKey()] != events[1].Fingerprint() {
				t.Error("title index not restored")
			}
			if loaded.UpdatedAt != now.Format(time.RFC3339) {
				t.Errorf("UpdatedAt = %q", loaded.UpdatedAt)
			}
		})
	}
}

func TestStore_MissingFeedIsEmpty(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			snap, err := st.open(t).Load(context.Background(), "never-saved")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if snap == nil || len(snap.Events) != 0 || snap.TitleIndex == nil {
				t.Errorf("expected empty snapshot, got %+v", snap)
			}
		})
	}
}

func TestStore_FeedsAreSeparate(t *testing.T) {
	ctx := context.Background()

	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			snap := event.CreateSnapshot(testEvents(t), nil, time.Now())

			if err := store.Save(ctx, "", snap); err != nil {
				t.Fatalf("Save() error: %v", err)
			}

			other, err := store.Load(ctx, "montreal")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(other.Events) != 0 {
				t.Errorf("feed montreal sees %d events of the default feed", len(other.Events))
			}

			all, err := store.Load(ctx, DefaultFeed)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(all.Events) != 2 {
				t.Errorf("empty feed name should map to %q", DefaultFeed)
			}
		})
	}
}

func TestStore_InvalidFeed(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			for _, feed := range []string{"../etc", "a/b", `a\b`} {
				if _, err := store.Load(context.Background(), feed); !errors.Is(err, ErrInvalidFeed) {
					t.Errorf("Load(%q) error = %v, want ErrInvalidFeed", feed, err)
				}
				if err := store.Save(context.Background(), feed, event.NewSnapshot()); !errors.Is(err, ErrInvalidFeed) {
					t.Errorf("Save(%q) error = %v, want ErrInvalidFeed", feed, err)
				}
			}
		})
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	store := newTempFileStore(t)
	events := testEvents(t)

	if err := store.Save(ctx, "", event.CreateSnapshot(events, nil, time.Now())); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	tests := []struct {
		name        string
		fingerprint string
		wantTitle   string
		wantErr     error
	}{
		{"known event", events[0].Fingerprint(), "Blues Night", nil},
		{"unknown event", "does-not-exist", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(ctx, store, "", tt.fingerprint)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Lookup() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup() error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "nested", "data"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Save(ctx, "", event.NewSnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "Toronto", event.NewSnapshot()); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"snapshot.json", "snapshot_toronto.json"} {
		if _, err := os.Stat(filepath.Join(store.Dir(), name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "snapshot.json.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestFileStore_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileStore("~/venue-data")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if store.Dir() != filepath.Join(home, "venue-data") {
		t.Errorf("Dir() = %q, want expansion under %q", store.Dir(), home)
	}
}

func TestFileStore_CorruptSnapshot(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.Dir(), "snapshot.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background(), ""); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}

func TestRedisStore_Key(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedisStore(context.Background(), mr.Addr(), "")
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close() // nolint:errcheck

	if err := store.Save(context.Background(), "toronto", event.NewSnapshot()); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(DefaultRedisPrefix + "snapshot:toronto") {
		t.Errorf("expected key %ssnapshot:toronto, have %v", DefaultRedisPrefix, mr.Keys())
	}
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisStore(ctx, addr, ""); err == nil {
		t.Error("expected error for unreachable redis")
	}
}
