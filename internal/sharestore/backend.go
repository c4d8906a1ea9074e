package sharestore

import (
	"context"

	"greeting-cards/pkg/models"
)

// Backend is the durable storage under the share store. It is the single
// source of truth across process restarts; the in-memory cache is rebuilt
// from it at startup.
type Backend interface {
	// Write persists a whole record. Overwrites any record with the same id.
	Write(ctx context.Context, card *models.SharedCard) error

	// Read returns the record for id, or ErrNotFound if absent. Read does
	// not apply expiry; that is the store's job.
	Read(ctx context.Context, id string) (*models.SharedCard, error)

	// Delete removes the record for id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// All returns every durable record keyed by id, expired ones included.
	All(ctx context.Context) (map[string]*models.SharedCard, error)

	Close() error
}
