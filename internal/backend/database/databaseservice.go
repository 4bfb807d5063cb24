package database

import (
	"context"
	"encoding/json"
)

type DatabaseService interface {
	CreateDatabase() error
	DoesDatabaseExist() bool
	Close() error

	// GetEntries returns the records of a collection in insertion order, each
	// exactly as it was persisted. A collection that was never written to
	// yields an empty, non-nil slice.
	GetEntries(ctx context.Context, collection string) ([]json.RawMessage, error)
	// AppendEntry adds an entry to the end of a collection, creating the collection if needed.
	AppendEntry(ctx context.Context, collection string, entry Entry) error
}
