package callback

import (
	"context"
	"net/http"
	"strings"

	"payneteasy-be/internal/auth"
	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/payment"

	"go.uber.org/zap"
)

const (
	ActionRefund      = "refund"
	ActionCheckStatus = "check_status"
)

type AjaxInput struct {
	OrderID      string
	Action       string
	Nonce        string
	RefundAmount string
}

type AjaxResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleAjax runs an admin action on an order and returns the message to show.
func (h *Handler) HandleAjax(ctx context.Context, in AjaxInput) (string, error) {
	var message string

	err := h.safely(ctx, "ajax", func() error {
		if h.nonces == nil {
			return auth.ErrInvalidNonce
		}
		if err := h.nonces.Verify(in.Nonce, auth.AjaxNonceAction); err != nil {
			return err
		}

		orderID, err := parseOrderID(in.OrderID)
		if err != nil {
			return err
		}

		action := strings.TrimSpace(in.Action)
		if action == "" {
			return &payment.MissingInputError{Field: "action", Message: "Required action not specified."}
		}

		if _, err := h.orders.GetOrder(ctx, orderID); err != nil {
			return err
		}

		switch action {
		case ActionRefund:
			if _, err := h.svc.Refund(ctx, orderID, in.RefundAmount); err != nil {
				return err
			}
			message = "Payment refunded."
		case ActionCheckStatus:
			if _, _, err := h.svc.CheckStatus(ctx, orderID, ""); err != nil {
				return err
			}
			message = "Status updated."
		default:
			return ErrUnknownAction
		}
		return nil
	})

	return message, err
}

func (h *Handler) Ajax(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ctx := r.Context()
	log := logger.FromCtx(ctx, h.log)

	in := AjaxInput{
		OrderID:      r.PostFormValue("order_id"),
		Action:       r.PostFormValue("action"),
		Nonce:        auth.ExtractNonce(r),
		RefundAmount: r.PostFormValue("refund_amount"),
	}

	message, err := h.HandleAjax(ctx, in)
	if err != nil {
		log.Warn("ajax action failed",
			zap.String("order_id", in.OrderID),
			zap.String("action", in.Action),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, AjaxResponse{Success: false, Message: userMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, AjaxResponse{Success: true, Message: message})
}
