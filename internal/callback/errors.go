package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"payneteasy-be/internal/auth"
	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"
	"payneteasy-be/internal/reconciler"

	"go.uber.org/zap"
)

var (
	ErrInternal      = errors.New("internal error")
	ErrUnknownAction = errors.New("Unknown action.")
)

func parseOrderID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &payment.MissingInputError{Field: "order_id", Message: "Order ID is empty."}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("order %q: %w", raw, order.ErrOrderNotFound)
	}
	return id, nil
}

// userMessage is the text shown to the customer, admin or gateway.
func userMessage(err error) string {
	var (
		missing    *payment.MissingInputError
		validation *payment.ValidationError
		transport  *payment.TransportError
	)

	switch {
	case errors.As(err, &missing):
		return err.Error()
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &transport):
		return transport.Message
	case errors.Is(err, payment.ErrEmptyResponse):
		return "Host response is empty."
	case errors.Is(err, order.ErrOrderNotFound):
		return "Order not found."
	case errors.Is(err, payment.ErrRecordNotFound):
		return "Payment not found for this order."
	case errors.Is(err, payment.ErrDuplicateRecord):
		return "Payment was already initiated for this order."
	case errors.Is(err, auth.ErrInvalidNonce):
		return auth.ErrInvalidNonce.Error()
	case errors.Is(err, reconciler.ErrWrongPaymentMethod):
		return reconciler.ErrWrongPaymentMethod.Error()
	case errors.Is(err, ErrUnknownAction):
		return ErrUnknownAction.Error()
	default:
		return "Something went wrong. Please try again later."
	}
}

func statusCode(err error) int {
	var (
		missing    *payment.MissingInputError
		validation *payment.ValidationError
	)

	switch {
	case errors.As(err, &missing), errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidNonce):
		return http.StatusForbidden
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, payment.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrDuplicateRecord):
		return http.StatusConflict
	case errors.As(err, &validation), errors.Is(err, reconciler.ErrWrongPaymentMethod):
		return http.StatusUnprocessableEntity
	case payment.IsTransport(err), errors.Is(err, payment.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// safely runs fn and turns a panic into ErrInternal.
func (h *Handler) safely(ctx context.Context, name string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.FromCtx(ctx, h.log).Error("callback panicked",
				zap.String("handler", name),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("%w: %v", ErrInternal, rec)
		}
	}()
	return fn()
}
