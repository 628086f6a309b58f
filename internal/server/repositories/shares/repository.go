// Package shares stores share metadata rows and answers the dedup query
// (integrity code -> unexpired share).
package shares

import (
	"context"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/server/models"
)

// Repository is the metadata store for shares. Lookups that find nothing
// return common.ErrorNotFound.
type Repository interface {
	// Create inserts a new row; CreatedAt is filled in from the store.
	Create(ctx context.Context, share *models.Share) error
	// GetByID returns the row with the given id, expired or not.
	GetByID(ctx context.Context, id string) (*models.Share, error)
	// FindActiveByHMAC returns the longest-lived row with the given code
	// whose expiration is after now.
	FindActiveByHMAC(ctx context.Context, hmac string, now time.Time) (*models.Share, error)
	// ListExpired returns up to limit ids whose expiration is at or before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
	// Delete removes a row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
