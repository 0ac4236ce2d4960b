package order

import "context"

// Store is the order side the payment flow reads and mutates.
type Store interface {
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	// UpdateStatus sets the status and appends note to the order history.
	UpdateStatus(ctx context.Context, orderID int64, status Status, note string) error
	PaymentComplete(ctx context.Context, orderID int64) error
	ReduceStock(ctx context.Context, orderID int64) error
}

// Notifier queues a message for the customer.
type Notifier interface {
	AddNotice(ctx context.Context, orderID int64, level NoticeLevel, message string) error
}
