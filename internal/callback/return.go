package callback

import (
	"context"
	"net/http"

	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/reconciler"

	"go.uber.org/zap"
)

type ReturnInput struct {
	OrderID string
}

// HandleReturn reconciles the order the browser came back for and returns
// the HTML to show: the pending 3-D Secure form, or a status page.
func (h *Handler) HandleReturn(ctx context.Context, in ReturnInput) (string, error) {
	var page string

	err := h.safely(ctx, "return", func() error {
		orderID, err := parseOrderID(in.OrderID)
		if err != nil {
			return err
		}

		if _, err := h.orders.GetOrder(ctx, orderID); err != nil {
			return err
		}

		resp, _, err := h.svc.CheckStatus(ctx, orderID, "")
		if err != nil {
			return err
		}

		status := resp.CompoundStatus()
		if html := reconciler.ThreeDSHTML(resp); html != "" && (status == "sale/processing" || status == "processing") {
			page = html
			return nil
		}

		page = renderPage(statusPage(status), h.siteURL)
		return nil
	})

	return page, err
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()
	log := logger.FromCtx(ctx, h.log)

	page, err := h.HandleReturn(ctx, ReturnInput{OrderID: r.URL.Query().Get("orderId")})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		log.Warn("return handler failed", zap.String("order_id", r.URL.Query().Get("orderId")), zap.Error(err))
		w.WriteHeader(statusCode(err))
		_, _ = w.Write([]byte(renderPage(userMessage(err), h.siteURL)))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
