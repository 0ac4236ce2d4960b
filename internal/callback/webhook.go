package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/order"
	"payneteasy-be/internal/reconciler"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// WebhookInput is one gateway status push.
type WebhookInput struct {
	OrderID string
	// Status is the status the gateway signals for the order.
	Status string
	// PaynetOrderID is optional; the record store is used when empty.
	PaynetOrderID string
	Payload       json.RawMessage
}

type webhookBody struct {
	Object struct {
		OrderID flexString `json:"orderId"`
		Status  struct {
			Value string `json:"value"`
		} `json:"status"`
	} `json:"object"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// ParseWebhook reads both the JSON body form and the query form
// (client_orderid, status or type, orderid).
func ParseWebhook(r *http.Request) (WebhookInput, error) {
	var in WebhookInput

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return in, fmt.Errorf("failed to read body: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	params := r.URL.Query()

	if len(raw) > 0 && (raw[0] == '{' || strings.Contains(r.Header.Get("Content-Type"), "json")) {
		var body webhookBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return in, fmt.Errorf("invalid JSON payload: %w", err)
		}
		in.OrderID = string(body.Object.OrderID)
		in.Status = body.Object.Status.Value
		in.Payload = json.RawMessage(raw)
	} else if len(raw) > 0 {
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			return in, fmt.Errorf("invalid form payload: %w", err)
		}
		for k, vs := range form {
			if params.Get(k) == "" {
				params[k] = vs
			}
		}
	}

	if in.OrderID == "" {
		in.OrderID = params.Get("client_orderid")
	}
	if in.Status == "" {
		in.Status = params.Get("status")
	}
	if in.Status == "" {
		in.Status = params.Get("type")
	}
	in.PaynetOrderID = params.Get("orderid")

	if in.Payload == nil {
		flat := make(map[string]string, len(params))
		for k := range params {
			flat[k] = params.Get(k)
		}
		in.Payload, _ = json.Marshal(flat)
	}

	return in, nil
}

// HandleWebhook reconciles the order named by a delivery. A delivery whose
// status the order already carries is acknowledged without asking the gateway.
func (h *Handler) HandleWebhook(ctx context.Context, in WebhookInput) (string, error) {
	log := logger.FromCtx(ctx, h.log).With(
		zap.String("order_id", in.OrderID),
		zap.String("signalled_status", in.Status),
	)

	webhookID := h.recordDelivery(ctx, in, log)

	var out string
	err := h.safely(ctx, "webhook", func() error {
		orderID, err := parseOrderID(in.OrderID)
		if err != nil {
			return err
		}

		o, err := h.orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		if in.Status != "" && h.alreadyApplied(o.Status, in.Status) {
			log.Info("webhook already applied", zap.String("status", string(o.Status)))
			out = "OK"
			return nil
		}

		if _, _, err := h.svc.CheckStatus(ctx, orderID, in.PaynetOrderID); err != nil {
			return err
		}

		out = "OK"
		return nil
	})

	h.finishDelivery(ctx, webhookID, err, log)
	return out, err
}

// alreadyApplied matches the order status against the signalled one, either
// literally or through its transition target when the gateway value is known.
func (h *Handler) alreadyApplied(current order.Status, signalled string) bool {
	if strings.EqualFold(string(current), strings.TrimSpace(signalled)) {
		return true
	}
	t, known := reconciler.Recognize("", signalled)
	if !known {
		return false
	}
	return current == h.svc.TargetStatus(t)
}

func (h *Handler) recordDelivery(ctx context.Context, in WebhookInput, log *zap.Logger) int64 {
	if h.audit == nil {
		return 0
	}

	id, err := h.audit.SavePaymentWebhook(ctx, uuid.NewString(), in.OrderID, in.Status, in.Payload)
	if err != nil {
		log.Warn("failed to record webhook delivery", zap.Error(err))
		return 0
	}
	return id
}

func (h *Handler) finishDelivery(ctx context.Context, webhookID int64, procErr error, log *zap.Logger) {
	if h.audit == nil || webhookID == 0 {
		return
	}

	var err error
	if procErr != nil {
		err = h.audit.MarkWebhookFailed(ctx, webhookID, procErr.Error())
	} else {
		err = h.audit.MarkWebhookProcessed(ctx, webhookID)
	}
	if err != nil {
		log.Warn("failed to update webhook delivery", zap.Int64("webhook_id", webhookID), zap.Error(err))
	}
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		methodNotAllowed(w, "GET, POST")
		return
	}
	defer r.Body.Close()

	ctx := r.Context()
	log := logger.FromCtx(ctx, h.log)

	in, err := ParseWebhook(r)
	if err != nil {
		log.Warn("invalid webhook payload", zap.Error(err))
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.HandleWebhook(ctx, in)
	if err != nil {
		log.Error("webhook failed", zap.String("order_id", in.OrderID), zap.Error(err))
		writeText(w, statusCode(err), userMessage(err))
		return
	}

	writeText(w, http.StatusOK, out)
}
