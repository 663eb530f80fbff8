package repository

import "context"

// Tx exposes repositories bound to one unit of work.
type Tx interface {
	Products() ProductRepository
	Inventory() InventoryRepository
	Bills() BillRepository
}

// Transactor runs fn atomically. If fn returns an error nothing it wrote is
// kept; otherwise every write becomes visible at once.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
