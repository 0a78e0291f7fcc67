// Package storage abstracts the blob store holding uploaded document files.
package storage

import "context"

// ObjectStorage fetches raw document bytes by key. Download failures are
// fatal for the document being ingested, never for the whole run.
type ObjectStorage interface {
	Download(ctx context.Context, key string) ([]byte, error)
}
