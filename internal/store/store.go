// Package store persists game snapshots by save ID.
package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/xtding233/idle-venues/internal/state"
)

var (
	ErrNotFound  = errors.New("save not found")
	ErrInvalidID = errors.New("save id must be a uuid")
)

// SaveInfo lists a save without decoding it.
type SaveInfo struct {
	ID        string    `json:"id"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is implemented by the SQLite and in-memory backends.
type Store interface {
	Save(ctx context.Context, id string, s *state.GameState) error
	Load(ctx context.Context, id string) (*state.GameState, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]SaveInfo, error)
	Close() error
}

// NewID returns a fresh save ID.
func NewID() string { return uuid.NewString() }

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return nil
}
