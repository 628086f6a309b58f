// Package blobstore keeps folder documents as opaque JSON objects keyed by
// share id. Missing objects are reported as common.ErrorNotFound.
package blobstore

import "context"

type Store interface {
	Put(ctx context.Context, key string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
