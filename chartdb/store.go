// Package chartdb keeps an SQLite index of parsed charts and of the files
// that failed to parse.
package chartdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS charts (
	path           TEXT PRIMARY KEY,
	beatmap_id     INTEGER NOT NULL,
	beatmapset_id  INTEGER NOT NULL,
	title          TEXT NOT NULL,
	artist         TEXT NOT NULL,
	creator        TEXT NOT NULL,
	version        TEXT NOT NULL,
	columns        INTEGER NOT NULL,
	notes          INTEGER NOT NULL,
	holds          INTEGER NOT NULL,
	timing_points  INTEGER NOT NULL,
	min_bpm        REAL NOT NULL,
	max_bpm        REAL NOT NULL,
	length_ms      INTEGER NOT NULL,
	indexed_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS charts_set ON charts(beatmapset_id);
CREATE TABLE IF NOT EXISTS failures (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	category  TEXT NOT NULL,
	ref       TEXT NOT NULL,
	reason    TEXT NOT NULL,
	at        INTEGER NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the index at path. ":memory:" works for
// throwaway stores.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer; sqlite serialises anyway and :memory: is per-connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

type Chart struct {
	Path         string
	BeatmapID    int
	BeatmapSetID int
	Title        string
	Artist       string
	Creator      string
	Version      string

	Columns      int
	Notes        int
	Holds        int
	TimingPoints int
	MinBPM       float64
	MaxBPM       float64
	Length       time.Duration

	IndexedAt time.Time
}

func (s *Store) UpsertChart(ctx context.Context, c Chart) error {
	if c.IndexedAt.IsZero() {
		c.IndexedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO charts (path, beatmap_id, beatmapset_id, title, artist, creator, version,
	columns, notes, holds, timing_points, min_bpm, max_bpm, length_ms, indexed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	beatmap_id = excluded.beatmap_id,
	beatmapset_id = excluded.beatmapset_id,
	title = excluded.title,
	artist = excluded.artist,
	creator = excluded.creator,
	version = excluded.version,
	columns = excluded.columns,
	notes = excluded.notes,
	holds = excluded.holds,
	timing_points = excluded.timing_points,
	min_bpm = excluded.min_bpm,
	max_bpm = excluded.max_bpm,
	length_ms = excluded.length_ms,
	indexed_at = excluded.indexed_at`,
		c.Path, c.BeatmapID, c.BeatmapSetID, c.Title, c.Artist, c.Creator, c.Version,
		c.Columns, c.Notes, c.Holds, c.TimingPoints, c.MinBPM, c.MaxBPM,
		c.Length.Milliseconds(), c.IndexedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert chart %s: %w", c.Path, err)
	}
	return nil
}

// Charts lists indexed charts ordered by set and version. columns > 0 keeps
// only charts with that many columns.
func (s *Store) Charts(ctx context.Context, columns int) ([]Chart, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT path, beatmap_id, beatmapset_id, title, artist, creator, version,
	columns, notes, holds, timing_points, min_bpm, max_bpm, length_ms, indexed_at
FROM charts
WHERE ? <= 0 OR columns = ?
ORDER BY beatmapset_id, version, path`, columns, columns)
	if err != nil {
		return nil, fmt.Errorf("query charts: %w", err)
	}
	defer rows.Close()

	var out []Chart
	for rows.Next() {
		var c Chart
		var lengthMs, indexedAt int64
		if err := rows.Scan(
			&c.Path, &c.BeatmapID, &c.BeatmapSetID, &c.Title, &c.Artist, &c.Creator, &c.Version,
			&c.Columns, &c.Notes, &c.Holds, &c.TimingPoints, &c.MinBPM, &c.MaxBPM, &lengthMs, &indexedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		c.Length = time.Duration(lengthMs) * time.Millisecond
		c.IndexedAt = time.UnixMilli(indexedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

type Failure struct {
	Category string
	Ref      string
	Reason   string
	At       time.Time
}

func (s *Store) RecordFailure(ctx context.Context, f Failure) error {
	if f.At.IsZero() {
		f.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failures (category, ref, reason, at) VALUES (?, ?, ?, ?)`,
		f.Category, f.Ref, f.Reason, f.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record failure %s/%s: %w", f.Category, f.Ref, err)
	}
	return nil
}

// Failures lists recorded failures, oldest first.
func (s *Store) Failures(ctx context.Context) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, ref, reason, at FROM failures ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		var at int64
		if err := rows.Scan(&f.Category, &f.Ref, &f.Reason, &at); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.At = time.UnixMilli(at)
		out = append(out, f)
	}
	return out, rows.Err()
}
