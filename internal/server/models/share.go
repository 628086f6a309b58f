// Package models defines server-side data models persisted in the database.
package models

import "time"

// Share is the metadata row for one issued share id. The payload itself
// lives in object storage under BlobKey(ID).
type Share struct {
	// ID is the opaque, unguessable share identifier.
	ID string `db:"id"`
	// HMAC is the integrity code of the payload; rows with the same code
	// may coexist once earlier ones have expired.
	HMAC string `db:"hmac"`
	// Name is the publisher-supplied display name.
	Name string `db:"name"`
	// ExpiresAt ends the share's validity; the row is treated as absent
	// once now >= ExpiresAt.
	ExpiresAt time.Time `db:"expiration"`
	// CreatedAt is set on insert.
	CreatedAt time.Time `db:"created_at"`
}

// ActiveAt reports whether the share is still valid at t.
func (s *Share) ActiveAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

// BlobKey returns the object-storage key for a share's payload.
func BlobKey(id string) string {
	return "folders/" + id + ".json"
}
