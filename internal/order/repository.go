package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payneteasy-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Store
	Notifier
}

type repository struct {
	db  *sql.DB
	log *zap.Logger
}

func NewRepository(db *sql.DB, log *zap.Logger) Repository {
	return &repository{db: db, log: log}
}

func (r *repository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	const q = `
	SELECT
		id, status, payment_method, total, currency, billing_email,
		billing_first_name, billing_last_name, billing_address_1, billing_city,
		billing_postcode, billing_country, billing_phone,
		shipping_first_name, shipping_last_name, shipping_address_1, shipping_city,
		shipping_postcode, shipping_country, shipping_phone,
		paid_at, created_at, updated_at
	FROM orders
	WHERE id = $1
	`

	var (
		o      Order
		paidAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID, &o.Status, &o.PaymentMethod, &o.Total, &o.Currency, &o.BillingEmail,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.Address1, &o.Billing.City,
		&o.Billing.Postcode, &o.Billing.Country, &o.Billing.Phone,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Address1, &o.Shipping.City,
		&o.Shipping.Postcode, &o.Shipping.Country, &o.Shipping.Phone,
		&paidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
		}
		return nil, err
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}

	return &o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status Status, note string) error {
	log := logger.FromCtx(ctx, r.log).With(zap.Int64("order_id", orderID))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
	}

	if note != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_notes (order_id, kind, message) VALUES ($1, 'status', $2)`,
			orderID, note,
		); err != nil {
			return fmt.Errorf("failed to add order note: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("order status updated", zap.String("status", string(status)))
	return nil
}

func (r *repository) PaymentComplete(ctx context.Context, orderID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET paid_at = COALESCE(paid_at, now()), updated_at = now() WHERE id = $1`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment complete: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
	}
	return nil
}

// ReduceStock decrements product stock by the order quantities once per order.
func (r *repository) ReduceStock(ctx context.Context, orderID int64) error {
	log := logger.FromCtx(ctx, r.log).With(zap.Int64("order_id", orderID))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET stock_reduced = true WHERE id = $1 AND stock_reduced = false`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to flag stock reduction: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		log.Debug("stock already reduced")
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE products p
		SET stock = p.stock - oi.quantity
		FROM order_items oi
		WHERE oi.product_id = p.id AND oi.order_id = $1
	`, orderID); err != nil {
		return fmt.Errorf("failed to reduce stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("stock reduced")
	return nil
}

func (r *repository) AddNotice(ctx context.Context, orderID int64, level NoticeLevel, message string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_notes (order_id, kind, level, message) VALUES ($1, 'notice', $2, $3)`,
		orderID, level, message,
	)
	if err != nil {
		return fmt.Errorf("failed to add notice: %w", err)
	}
	return nil
}
