// Package storage persists event snapshots between runs.
//
// A snapshot records the events one feed emitted last time, so the next run can tell new
// events from known ones. Two stores are provided: FileStore keeps one JSON file per feed
// under a data directory (snapshot.json for the default feed, snapshot_<feed>.json
// otherwise; the default location is ~/.local/share/venue-events/), and RedisStore keeps
// one JSON value per feed under <prefix>snapshot:<feed>.
package storage
