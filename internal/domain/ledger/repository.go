package ledger

import (
	"context"
	"time"

	"dairyledger/internal/core/id"
)

// Repository defines the interface for transaction persistence.
// Writes happen inside the caller's transaction; there is no update or
// delete for headers and items, only the synced flag flips.
type Repository interface {
	// Create inserts the transaction header.
	Create(ctx context.Context, t *Transaction) error

	// SaveItems batch inserts the transaction lines.
	SaveItems(ctx context.Context, transactionID id.ID, items []Item) error

	// GetByID retrieves a header without items.
	GetByID(ctx context.Context, id id.ID) (*Transaction, error)

	// GetItems retrieves the lines of a transaction in line order.
	GetItems(ctx context.Context, transactionID id.ID) ([]Item, error)

	// ListByDate retrieves headers for a business date, optionally narrowed
	// by kind, in creation order.
	ListByDate(ctx context.Context, date time.Time, kind *Kind) ([]*Transaction, error)

	// ListUnsynced retrieves headers not yet pushed to the remote copy.
	ListUnsynced(ctx context.Context, limit int) ([]*Transaction, error)

	// MarkSynced flips the synced flag for a batch of transactions.
	MarkSynced(ctx context.Context, ids []id.ID) error
}
