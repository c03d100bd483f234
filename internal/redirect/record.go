package redirect

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record exists for a key or slug.
	ErrNotFound = errors.New("redirect not found")
	// ErrDuplicateKey is returned when a record with the same key already exists.
	ErrDuplicateKey = errors.New("duplicate redirect key")
	// ErrDuplicateSlug is returned when a record with the same slug already exists.
	ErrDuplicateSlug = errors.New("duplicate redirect slug")
)

// Record represents an issued redirect link.
//
// Key and Slug are immutable once created. Token is generated once at issuance
// and never rotated by an update; only Destination mutates. Records never
// expire on their own.
type Record struct {
	Key         string
	Slug        string // optional human-readable alternate identifier
	Destination string
	Token       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines the interface for redirect record storage.
//
// Uniqueness of Key and Slug is enforced by the implementation, not by
// callers; a violated constraint surfaces as ErrDuplicateKey or
// ErrDuplicateSlug.
type Repository interface {
	Add(ctx context.Context, record *Record) error
	GetByKey(ctx context.Context, key string) (*Record, error)
	GetBySlug(ctx context.Context, slug string) (*Record, error)
	GetAll(ctx context.Context) ([]*Record, error)
	UpdateDestination(ctx context.Context, key, destination string) error
	Delete(ctx context.Context, key string) error
}
