package preference

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kalambet/grokvibe/internal/vibe"
)

const keyPrefix = "user:"

// Key returns the backend key holding userID's default vibe.
func Key(userID string) string {
	return keyPrefix + userID
}

// Open selects a backend from configuration: Redis when redisURL is set,
// otherwise SQLite when sqlitePath is set, otherwise NullBackend.
func Open(redisURL, sqlitePath string) (Backend, error) {
	switch {
	case redisURL != "":
		return NewRedisBackend(redisURL)
	case sqlitePath != "":
		b, err := NewSQLiteBackend(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite preferences: %w", err)
		}
		return b, nil
	default:
		return NullBackend{}, nil
	}
}

// Store reads and writes per-user default vibes. Every value it stores or
// returns is a member of the fixed vibe set.
type Store struct {
	backend Backend
	logger  zerolog.Logger
}

// NewStore wraps backend. A nil backend behaves as NullBackend.
func NewStore(backend Backend) *Store {
	if backend == nil {
		backend = NullBackend{}
	}
	return &Store{
		backend: backend,
		logger:  log.Logger.With().Str("component", "preference").Str("backend", backend.Name()).Logger(),
	}
}

// Backend returns the name of the underlying backend.
func (s *Store) Backend() string { return s.backend.Name() }

// Vibe returns userID's stored default vibe, or vibe.Default when none is
// stored, the stored value is not a valid vibe, or the backend fails.
func (s *Store) Vibe(ctx context.Context, userID string) vibe.Vibe {
	raw, err := s.backend.Get(ctx, Key(userID))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return vibe.Default
	default:
		s.logger.Warn().Err(err).Str("user", userID).Msg("reading default vibe")
		return vibe.Default
	}

	v := vibe.Vibe(raw)
	if !v.Valid() {
		s.logger.Warn().Str("user", userID).Str("value", raw).Msg("ignoring invalid stored vibe")
		return vibe.Default
	}
	return v
}

// SetVibe persists v as userID's default. It reports false, without
// writing, for invalid vibes, and false when the backend fails.
func (s *Store) SetVibe(ctx context.Context, userID string, v vibe.Vibe) bool {
	if !v.Valid() {
		return false
	}
	if err := s.backend.Set(ctx, Key(userID), string(v)); err != nil {
		if !errors.Is(err, ErrUnavailable) {
			s.logger.Warn().Err(err).Str("user", userID).Str("vibe", string(v)).Msg("writing default vibe")
		}
		return false
	}
	return true
}

// ClearVibe removes userID's stored default so reads return vibe.Default
// again. It returns ErrNotFound when nothing was stored.
func (s *Store) ClearVibe(ctx context.Context, userID string) error {
	if err := s.backend.Delete(ctx, Key(userID)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("clearing default vibe for %s: %w", userID, err)
	}
	return nil
}

// Entry is one user's stored default.
type Entry struct {
	UserID string
	Vibe   vibe.Vibe
}

// List returns every stored default ordered by user id. Invalid stored
// values are reported as vibe.Default.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	raw, err := s.backend.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for k, v := range raw {
		vb := vibe.Vibe(v)
		if !vb.Valid() {
			vb = vibe.Default
		}
		entries = append(entries, Entry{UserID: strings.TrimPrefix(k, keyPrefix), Vibe: vb})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}
