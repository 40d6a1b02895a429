// Package storage persists the site document. The whole document is read and
// rewritten on every mutation; backends must make each write all-or-nothing
// relative to the request that issued it.
package storage

import (
	"context"
	"errors"

	"eventmap/internal/models"
)

// ErrNotExist is returned by Read when no document has been written yet.
// Callers are expected to seed an initial document.
var ErrNotExist = errors.New("document does not exist")

// Store reads and replaces the single site document.
type Store interface {
	Read(ctx context.Context) (*models.Document, error)
	Write(ctx context.Context, doc *models.Document) error
}
