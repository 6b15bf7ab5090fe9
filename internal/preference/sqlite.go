package preference

import (
	"context"
	"errors"

	"github.com/kalambet/grokvibe/internal/storage"
)

// SQLiteBackend keeps preferences in a local SQLite file.
type SQLiteBackend struct {
	store *storage.Store
}

// NewSQLiteBackend opens (or creates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	s, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteBackend{store: s}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.store.GetPreference(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	return b.store.SetPreference(ctx, key, value)
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	err := b.store.DeletePreference(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (b *SQLiteBackend) List(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := b.store.ListPreferences(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Close() error { return b.store.Close() }
