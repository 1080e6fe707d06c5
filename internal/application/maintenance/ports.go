package maintenance

import "context"

// PurgeResult reports how many rows a full reset removed per table
type PurgeResult struct {
	Categories      int64
	Products        int64
	Orders          int64
	DeliveryRecords int64
}

// Purger wipes all shop data in a single transaction
type Purger interface {
	PurgeAll(ctx context.Context) (*PurgeResult, error)
}
