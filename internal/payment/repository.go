package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

type Repository interface {
	Save(ctx context.Context, merchantOrderID int64, paynetOrderID string) error
	Lookup(ctx context.Context, merchantOrderID int64) (string, error)

	SavePaymentWebhook(
		ctx context.Context,
		eventID string,
		merchantOrderID string,
		status string,
		payload json.RawMessage,
	) (webhookID int64, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Save records the gateway order id created by a successful sale. Rows are
// never updated; a second sale for the same merchant order is rejected.
func (r *repository) Save(ctx context.Context, merchantOrderID int64, paynetOrderID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payneteasy_payments (paynet_order_id, merchant_order_id)
		VALUES ($1, $2)
	`, paynetOrderID, merchantOrderID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("merchant order %d: %w", merchantOrderID, ErrDuplicateRecord)
		}
		return err
	}
	return nil
}

func (r *repository) Lookup(ctx context.Context, merchantOrderID int64) (string, error) {
	var paynetOrderID string
	err := r.db.QueryRowContext(ctx, `
		SELECT paynet_order_id FROM payneteasy_payments WHERE merchant_order_id = $1
	`, merchantOrderID).Scan(&paynetOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("merchant order %d: %w", merchantOrderID, ErrRecordNotFound)
		}
		return "", err
	}
	return paynetOrderID, nil
}

func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	eventID string,
	merchantOrderID string,
	status string,
	payload json.RawMessage,
) (int64, error) {

	const q = `
	INSERT INTO payment_webhooks (
		event_id,
		merchant_order_id,
		status,
		payload
	)
	VALUES ($1, $2, $3, $4)
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, eventID, merchantOrderID, status, []byte(payload)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) MarkWebhookProcessed(
	ctx context.Context,
	webhookID int64,
) error {

	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(
	ctx context.Context,
	webhookID int64,
	reason string,
) error {

	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
