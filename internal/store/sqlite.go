package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/xtding233/idle-venues/internal/state"
)

const schema = `CREATE TABLE IF NOT EXISTS saves (
	id         TEXT PRIMARY KEY,
	level      INTEGER NOT NULL,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps one row per save.
type SQLiteStore struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &SQLiteStore{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts or replaces the snapshot under id.
func (s *SQLiteStore) Save(ctx context.Context, id string, gs *state.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	payload, err := Encode(gs)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO saves (id, level, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET level = excluded.level, payload = excluded.payload, updated_at = excluded.updated_at`,
		id, gs.Level, payload, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return errors.Wrap(err, "save game")
	}
	return nil
}

// Load returns the snapshot stored under id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM saves WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load game")
	}
	return Decode(payload)
}

// Delete removes the save; deleting a missing save is ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete game")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete game")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every save, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]SaveInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, level, updated_at FROM saves ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list games")
	}
	defer rows.Close()

	var out []SaveInfo
	for rows.Next() {
		var (
			info SaveInfo
			ms   int64
		)
		if err := rows.Scan(&info.ID, &info.Level, &ms); err != nil {
			return nil, errors.Wrap(err, "scan save")
		}
		info.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, info)
	}
	return out, errors.Wrap(rows.Err(), "list games")
}
