package adapter

import (
	"context"
)

// StorageProvider defines how to get a StorageAdapter for an account profile.
type StorageProvider interface {
	// GetAdapter returns a StorageAdapter authenticated as the given account.
	GetAdapter(ctx context.Context, account string) (StorageAdapter, error)
}
