package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/metrics"
	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var ErrWrongPaymentMethod = errors.New(`Payment method is not "Payneteasy Payment System".`)

type Config struct {
	// MethodID is the order payment method handled by this gateway.
	MethodID    string
	Integration payment.IntegrationMethod
	// CompletedStatus is the order status reached on approval.
	CompletedStatus order.Status
	RequireSSN      bool

	// ReturnURL is the absolute return route; the order id is appended as ?orderId=.
	ReturnURL   string
	CallbackURL string
	// NotifyURL may contain one verb formatted with the order id.
	NotifyURL string
}

// Applied reports the branch chosen and whether the order was written.
type Applied struct {
	Transition Transition
	Written    bool
}

type Service interface {
	Reconcile(ctx context.Context, orderID int64, resp payment.Response) (Applied, error)
	QueryStatus(ctx context.Context, orderID int64) (payment.Response, error)
	QueryStatusByGatewayID(ctx context.Context, orderID int64, paynetOrderID string) (payment.Response, error)
	CheckStatus(ctx context.Context, orderID int64, paynetOrderID string) (payment.Response, Applied, error)
	Sale(ctx context.Context, orderID int64, in SaleInput) (*SaleResult, error)
	Refund(ctx context.Context, orderID int64, rawAmount string) (Applied, error)
	TargetStatus(t Transition) order.Status
}

type service struct {
	cfg     Config
	orders  order.Store
	notices order.Notifier
	records payment.Repository
	gateway payment.Gateway
	log     *zap.Logger
}

func NewService(
	cfg Config,
	orders order.Store,
	notices order.Notifier,
	records payment.Repository,
	gateway payment.Gateway,
	log *zap.Logger,
) Service {
	cfg.CompletedStatus = order.Status(strings.TrimPrefix(string(cfg.CompletedStatus), "wc-"))
	if cfg.CompletedStatus == "" {
		cfg.CompletedStatus = order.StatusProcessing
	}
	if cfg.Integration == "" {
		cfg.Integration = payment.MethodForm
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &service{
		cfg:     cfg,
		orders:  orders,
		notices: notices,
		records: records,
		gateway: gateway,
		log:     log,
	}
}

// TargetStatus is the local order status a transition moves to.
func (s *service) TargetStatus(t Transition) order.Status {
	switch t {
	case Paid, PartiallyRefunded:
		return s.cfg.CompletedStatus
	case OnHold:
		return order.StatusOnHold
	case Chargeback:
		return order.StatusChargeback
	case Refunded:
		return order.StatusRefunded
	default:
		return order.StatusFailed
	}
}

func (s *service) Reconcile(ctx context.Context, orderID int64, resp payment.Response) (Applied, error) {
	t := Classify(resp.TransactionType(), resp.Status())
	return s.apply(ctx, orderID, t, resp.CompoundStatus())
}

func (s *service) apply(ctx context.Context, orderID int64, t Transition, gatewayStatus string) (Applied, error) {
	ctx, span := otel.Tracer("paynet-reconciler").Start(ctx, "reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("paynet.status", gatewayStatus),
		attribute.String("reconcile.transition", t.String()),
	)

	log := logger.FromCtx(ctx, s.log).With(
		zap.Int64("order_id", orderID),
		zap.String("gateway_status", gatewayStatus),
		zap.String("transition", t.String()),
	)

	applied := Applied{Transition: t}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get order")
		return applied, err
	}

	target := s.TargetStatus(t)
	if o.Status == target {
		log.Info("order already reconciled", zap.String("status", string(o.Status)))
		metrics.RecordTransition(t.String(), false)
		return applied, nil
	}

	if err := s.write(ctx, orderID, t, target); err != nil {
		log.Error("failed to apply transition", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply transition")
		return applied, err
	}

	applied.Written = true
	metrics.RecordTransition(t.String(), true)
	log.Info("order reconciled",
		zap.String("from", string(o.Status)),
		zap.String("to", string(target)),
	)
	return applied, nil
}

func (s *service) write(ctx context.Context, orderID int64, t Transition, target order.Status) error {
	switch t {
	case Paid:
		// Idempotent steps first: the status write is what the guard reads.
		if err := s.orders.PaymentComplete(ctx, orderID); err != nil {
			return err
		}
		if err := s.orders.ReduceStock(ctx, orderID); err != nil {
			return err
		}
		return s.orders.UpdateStatus(ctx, orderID, target, "Payment completed successfully.")

	case OnHold:
		return s.orders.UpdateStatus(ctx, orderID, target, "Payment received but not confirmed.")

	case Chargeback:
		if err := s.orders.UpdateStatus(ctx, orderID, target, "Chargeback of payment."); err != nil {
			return err
		}
		return s.notices.AddNotice(ctx, orderID, order.NoticeNotice, "The payment was charged back.")

	case Refunded:
		if err := s.orders.UpdateStatus(ctx, orderID, target, "Refund of payment."); err != nil {
			return err
		}
		return s.notices.AddNotice(ctx, orderID, order.NoticeNotice, "The payment was refunded.")

	case PartiallyRefunded:
		if err := s.orders.UpdateStatus(ctx, orderID, target, "Partial refund of payment."); err != nil {
			return err
		}
		return s.notices.AddNotice(ctx, orderID, order.NoticeNotice, "The payment was partial refunded.")

	default:
		if err := s.orders.UpdateStatus(ctx, orderID, target, "Payment not paid."); err != nil {
			return err
		}
		return s.notices.AddNotice(ctx, orderID, order.NoticeError, "Payment not paid. Your order has been canceled.")
	}
}

func (s *service) QueryStatus(ctx context.Context, orderID int64) (payment.Response, error) {
	paynetOrderID, err := s.records.Lookup(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if paynetOrderID == "" {
		return nil, fmt.Errorf("merchant order %d: %w", orderID, payment.ErrRecordNotFound)
	}
	return s.QueryStatusByGatewayID(ctx, orderID, paynetOrderID)
}

// QueryStatusByGatewayID asks the gateway for the status of a sale whose
// gateway id the caller already knows. An empty id falls back to the record store.
func (s *service) QueryStatusByGatewayID(ctx context.Context, orderID int64, paynetOrderID string) (payment.Response, error) {
	if paynetOrderID == "" {
		return s.QueryStatus(ctx, orderID)
	}

	resp, err := s.gateway.Status(ctx, payment.StatusRequest{
		ClientOrderID: strconv.FormatInt(orderID, 10),
		OrderID:       paynetOrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("status query for order %d: %w", orderID, err)
	}
	return resp, nil
}

// CheckStatus queries the gateway and reconciles the order with the answer.
func (s *service) CheckStatus(ctx context.Context, orderID int64, paynetOrderID string) (payment.Response, Applied, error) {
	resp, err := s.QueryStatusByGatewayID(ctx, orderID, paynetOrderID)
	if err != nil {
		return nil, Applied{}, err
	}

	applied, err := s.Reconcile(ctx, orderID, resp)
	if err != nil {
		return resp, applied, err
	}
	return resp, applied, nil
}

// ThreeDSHTML returns the pending 3-D Secure fragment of a status answer.
func ThreeDSHTML(resp payment.Response) string {
	return resp.HTML()
}
