package automatic

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	batch      TEXT NOT NULL,
	game_id    TEXT NOT NULL,
	winner     TEXT NOT NULL,
	plies      INTEGER NOT NULL,
	opening    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (batch, game_id)
);`

// ResultStore keeps self-play results in a SQLite file, grouped by batch.
type ResultStore struct {
	db *sql.DB
}

// OpenResultStore opens or creates the database at path.
func OpenResultStore(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; the workers share this store.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened-result-store")
	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

// Save records r under batch, replacing an earlier game with the same id.
func (s *ResultStore) Save(batch string, r *GameResult) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO games (batch, game_id, winner, plies, opening, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch, r.GameID, r.Winner, r.Plies, strings.Join(r.Opening, " "),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// Results returns the games of batch in the order they were saved.
func (s *ResultStore) Results(batch string) ([]*GameResult, error) {
	rows, err := s.db.Query(
		`SELECT game_id, winner, plies, opening FROM games WHERE batch = ? ORDER BY rowid`, batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []*GameResult
	for rows.Next() {
		r := &GameResult{}
		var opening string
		if err := rows.Scan(&r.GameID, &r.Winner, &r.Plies, &opening); err != nil {
			return nil, err
		}
		r.Opening = strings.Fields(opening)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Batches lists the stored batch names.
func (s *ResultStore) Batches() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT batch FROM games ORDER BY batch`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
