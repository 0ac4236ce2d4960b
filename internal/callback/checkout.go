package callback

import (
	"context"
	"net"
	"net/http"

	"payneteasy-be/internal/auth"
	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/payment"
	"payneteasy-be/internal/reconciler"

	"go.uber.org/zap"
)

type CheckoutInput struct {
	OrderID   string
	Card      payment.Card
	SSN       string
	IPAddress string
}

type CheckoutResponse struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

// HandleCheckout starts the sale for an order and returns where to send the browser.
func (h *Handler) HandleCheckout(ctx context.Context, in CheckoutInput) (string, error) {
	var redirect string

	err := h.safely(ctx, "checkout", func() error {
		orderID, err := parseOrderID(in.OrderID)
		if err != nil {
			return err
		}

		res, err := h.svc.Sale(ctx, orderID, reconciler.SaleInput{
			Card:      in.Card,
			SSN:       in.SSN,
			IPAddress: in.IPAddress,
		})
		if err != nil {
			return err
		}

		redirect = res.Redirect
		return nil
	})

	return redirect, err
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ctx := r.Context()
	log := logger.FromCtx(ctx, h.log)

	in := CheckoutInput{
		OrderID: r.PostFormValue("order_id"),
		Card: payment.Card{
			Number:      r.PostFormValue("credit_card_number"),
			PrintedName: r.PostFormValue("card_printed_name"),
			ExpireMonth: r.PostFormValue("expire_month"),
			ExpireYear:  r.PostFormValue("expire_year"),
			CVV2:        r.PostFormValue("cvv2"),
		},
		SSN:       r.PostFormValue("ssn"),
		IPAddress: clientIP(r),
	}

	redirect, err := h.HandleCheckout(ctx, in)
	if err != nil {
		log.Warn("checkout failed", zap.String("order_id", in.OrderID), zap.Error(err))
		writeJSON(w, http.StatusOK, CheckoutResponse{Result: "failure", Message: userMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{Result: "success", Redirect: redirect})
}

// Nonce issues an ajax nonce to a trusted caller holding the internal key.
func (h *Handler) Nonce(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if h.nonces == nil || !auth.HasServiceKey(r, h.internalKey) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	nonce, err := h.nonces.Issue(auth.AjaxNonceAction)
	if err != nil {
		logger.FromCtx(r.Context(), h.log).Error("failed to issue nonce", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"nonce": nonce})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
