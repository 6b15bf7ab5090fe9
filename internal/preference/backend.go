package preference

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a Backend when the key does not exist.
	ErrNotFound = errors.New("preference not found")
	// ErrUnavailable is returned by the null backend for every operation.
	ErrUnavailable = errors.New("preference store not configured")
)

// Backend is a string key/value store. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key, returning ErrNotFound when it does not exist.
	Delete(ctx context.Context, key string) error
	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
	Name() string
	Close() error
}

// NullBackend stands in when no store is configured: reads miss and
// writes fail.
type NullBackend struct{}

func (NullBackend) Get(context.Context, string) (string, error) { return "", ErrUnavailable }

func (NullBackend) Set(context.Context, string, string) error { return ErrUnavailable }

func (NullBackend) Delete(context.Context, string) error { return ErrUnavailable }

func (NullBackend) List(context.Context, string) (map[string]string, error) {
	return nil, ErrUnavailable
}

func (NullBackend) Name() string { return "none" }

func (NullBackend) Close() error { return nil }
