package domain

import "context"

// CatalogSyncer imports the external catalog into the local store.
// Both operations only insert rows that are not present yet, so calling
// them again is how a failed run is retried. The count is the number of
// rows created by this call.
type CatalogSyncer interface {
	SyncCategories(ctx context.Context, actor *Principal) (int, error)
	SyncProducts(ctx context.Context, actor *Principal) (int, error)
}
