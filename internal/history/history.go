// package history records which tracks the companion has seen playing.
// One row per observed track change; the stats surfaces read it back.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Valiice/SpotifyHonorific/internal/services"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

const schema = `
CREATE TABLE IF NOT EXISTS plays (
	id TEXT PRIMARY KEY,
	track_id TEXT NOT NULL,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	played_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plays_played_at ON plays(played_at);
`

// Play is one recorded track change.
type Play struct {
	TrackID  string
	Title    string
	Artist   string
	PlayedAt time.Time
}

// Store is the SQLite-backed play history. Safe for concurrent use; the
// database handle does its own locking.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the history database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts a play row for the track.
func (s *Store) Record(track *services.Track) error {
	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}

	_, err := s.db.Exec(
		`INSERT INTO plays (id, track_id, title, artist, played_at) VALUES (?, ?, ?, ?, ?)`,
		shared.GenerateID(), track.ID, track.Name, artist, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	return nil
}

// UniqueTracksSince counts distinct tracks played at or after since.
func (s *Store) UniqueTracksSince(since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT track_id) FROM plays WHERE played_at >= ?`, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique tracks: %w", err)
	}
	return count, nil
}

// RecentPlays returns up to limit plays, newest first.
func (s *Store) RecentPlays(limit int) ([]Play, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT track_id, title, artist, played_at FROM plays ORDER BY played_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		if err := rows.Scan(&p.TrackID, &p.Title, &p.Artist, &p.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
