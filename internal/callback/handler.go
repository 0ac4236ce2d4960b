package callback

import (
	"encoding/json"
	"net/http"

	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"
	"payneteasy-be/internal/reconciler"

	"go.uber.org/zap"
)

const (
	ReturnPath   = "/payneteasy/return"
	WebhookPath  = "/payneteasy/webhook"
	AjaxPath     = "/payneteasy/ajax"
	CheckoutPath = "/payneteasy/checkout"
	NoncePath    = "/payneteasy/nonce"
)

type Nonces interface {
	Issue(action string) (string, error)
	Verify(nonce, action string) error
}

// Handler serves the browser, gateway and admin entry points.
type Handler struct {
	svc         reconciler.Service
	orders      order.Store
	audit       payment.Repository
	nonces      Nonces
	siteURL     string
	internalKey string
	log         *zap.Logger
}

type Options struct {
	SiteURL string
	// InternalKey guards nonce issuance; empty disables the route.
	InternalKey string
}

func NewHandler(
	svc reconciler.Service,
	orders order.Store,
	audit payment.Repository,
	nonces Nonces,
	opts Options,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:         svc,
		orders:      orders,
		audit:       audit,
		nonces:      nonces,
		siteURL:     opts.SiteURL,
		internalKey: opts.InternalKey,
		log:         log,
	}
}

// Routes registers every callback route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc(ReturnPath, h.Return)
	mux.HandleFunc(WebhookPath, h.Webhook)
	mux.HandleFunc(AjaxPath, h.Ajax)
	mux.HandleFunc(CheckoutPath, h.Checkout)
	mux.HandleFunc(NoncePath, h.Nonce)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
