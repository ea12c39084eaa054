package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"modiesel/internal/domain"
)

// DBStore keeps the single dashboard session in a one-row table. The driver
// is picked from the DSN: postgres:// DSNs use lib/pq, everything else is a
// sqlite file path. Queries are written with ? placeholders and rebound per
// driver.
type DBStore struct {
	db *sqlx.DB
}

func OpenStore(dsn string) (*DBStore, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session(
		  id INTEGER PRIMARY KEY CHECK (id = 1),
		  token TEXT NOT NULL,
		  user_json TEXT NOT NULL,
		  updated_at TEXT NOT NULL
		)
	`); err != nil {
		return nil, err
	}
	return &DBStore{db: db}, nil
}

func (s *DBStore) Load(ctx context.Context) (Session, error) {
	var row struct {
		Token    string `db:"token"`
		UserJSON string `db:"user_json"`
	}
	q := s.db.Rebind(`SELECT token, user_json FROM session WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, q, 1); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(row.UserJSON), &u); err != nil {
		return Session{}, err
	}
	return Session{Token: row.Token, User: u}, nil
}

func (s *DBStore) Save(ctx context.Context, sess Session) error {
	uj, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	q := s.db.Rebind(`
		INSERT INTO session(id, token, user_json, updated_at) VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  token = excluded.token,
		  user_json = excluded.user_json,
		  updated_at = excluded.updated_at
	`)
	_, err = s.db.ExecContext(ctx, q, 1, sess.Token, string(uj), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *DBStore) Clear(ctx context.Context) error {
	q := s.db.Rebind(`DELETE FROM session WHERE id = ?`)
	_, err := s.db.ExecContext(ctx, q, 1)
	return err
}

func (s *DBStore) Close() error { return s.db.Close() }
