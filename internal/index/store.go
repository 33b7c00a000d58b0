package index

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"storyweaver/internal/domain"
)

// store persists one theme's passages and vectors in a SQLite file.
// Presence of the file means the theme was already built.
type store struct {
	conn *sqlx.DB
}

func openStore(path string) (*store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	s := &store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate index db: %w", err)
	}
	return s, nil
}

func (s *store) Close() error { return s.conn.Close() }

func (s *store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passages (
		idx INTEGER PRIMARY KEY,
		theme TEXT NOT NULL,
		content TEXT NOT NULL,
		vector TEXT NOT NULL
	);`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *store) save(passages []domain.Passage, vectors [][]float64) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("passages and vectors length mismatch: %d vs %d", len(passages), len(vectors))
	}
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM passages`); err != nil {
		tx.Rollback()
		return err
	}
	for i, p := range passages {
		vec, err := json.Marshal(vectors[i])
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO passages (idx, theme, content, vector) VALUES (?, ?, ?, ?)`,
			i, p.Theme, p.Content, string(vec),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *store) load() ([]domain.Passage, [][]float64, error) {
	var rows []struct {
		Theme   string `db:"theme"`
		Content string `db:"content"`
		Vector  string `db:"vector"`
	}
	if err := s.conn.Select(&rows, `SELECT theme, content, vector FROM passages ORDER BY idx`); err != nil {
		return nil, nil, err
	}
	passages := make([]domain.Passage, 0, len(rows))
	vectors := make([][]float64, 0, len(rows))
	for _, r := range rows {
		var vec []float64
		if err := json.Unmarshal([]byte(r.Vector), &vec); err != nil {
			return nil, nil, fmt.Errorf("decode stored vector: %w", err)
		}
		passages = append(passages, domain.Passage{Content: r.Content, Theme: r.Theme})
		vectors = append(vectors, vec)
	}
	return passages, vectors, nil
}
