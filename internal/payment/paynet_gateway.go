package payment

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	userAgent      = "Payneteasy-Client/1.0"
	defaultTimeout = 30 * time.Second
)

type GatewayConfig struct {
	BaseURL    string
	Login      string
	ControlKey string
	EndpointID string

	// InsecureSkipVerify disables TLS certificate and host verification.
	// Some PAYNET sandboxes serve certificates that do not verify.
	InsecureSkipVerify bool
	Timeout            time.Duration
	// LogExchange logs request and response fields, card data masked.
	LogExchange bool
}

type paynetGateway struct {
	cfg        GatewayConfig
	httpClient *http.Client
	log        *zap.Logger
}

// ----------------- Constructor -----------------

func NewPaynetGateway(cfg GatewayConfig, log *zap.Logger) Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.BaseURL != "" && !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ControlKey == "" {
		log.Warn("PAYNET control key is empty")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		log.Warn("TLS verification for PAYNET gateway is disabled", zap.String("base_url", cfg.BaseURL))
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &paynetGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log: log,
	}
}

// ----------------- Signed calls -----------------

func (g *paynetGateway) Sale(ctx context.Context, req PaymentRequest) (Response, error) {
	return g.Send(ctx, EndpointSale, g.signSale(req))
}

func (g *paynetGateway) SaleForm(ctx context.Context, req PaymentRequest) (Response, error) {
	return g.Send(ctx, EndpointSaleForm, g.signSale(req))
}

func (g *paynetGateway) Status(ctx context.Context, req StatusRequest) (Response, error) {
	v := url.Values{}
	v.Set("login", g.cfg.Login)
	v.Set("client_orderid", req.ClientOrderID)
	v.Set("orderid", req.OrderID)
	v.Set("control", SignStatus(g.cfg.Login, req.ClientOrderID, req.OrderID, g.cfg.ControlKey))
	return g.Send(ctx, EndpointStatus, v)
}

func (g *paynetGateway) Return(ctx context.Context, req ReturnRequest) (Response, error) {
	v := url.Values{}
	v.Set("login", g.cfg.Login)
	v.Set("client_orderid", req.ClientOrderID)
	v.Set("orderid", req.OrderID)
	v.Set("comment", req.Comment)
	v.Set("control", SignStatus(g.cfg.Login, req.ClientOrderID, req.OrderID, g.cfg.ControlKey))
	return g.Send(ctx, EndpointReturn, v)
}

func (g *paynetGateway) signSale(req PaymentRequest) url.Values {
	v := req.values()
	v.Set("control", SignSale(g.cfg.EndpointID, req.ClientOrderID, req.Amount, req.Email, g.cfg.ControlKey))
	return v
}

// ----------------- Transport -----------------

func (g *paynetGateway) endpointURL(endpoint Endpoint) string {
	return g.cfg.BaseURL + apiPath + string(endpoint) + "/" + g.cfg.EndpointID
}

func (g *paynetGateway) Send(ctx context.Context, endpoint Endpoint, payload url.Values) (Response, error) {
	ctx, span := otel.Tracer("paynet-gateway").Start(ctx, "paynet."+string(endpoint), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	target := g.endpointURL(endpoint)
	log := logger.FromCtx(ctx, g.log).With(
		zap.String("endpoint", string(endpoint)),
		zap.String("client_orderid", payload.Get("client_orderid")),
	)
	span.SetAttributes(
		attribute.String("paynet.endpoint", string(endpoint)),
		attribute.String("paynet.client_orderid", payload.Get("client_orderid")),
	)

	if g.cfg.LogExchange {
		log.Info("PAYNET request", zap.String("url", target), zap.String("body", maskedForm(payload)))
	}

	timer := metrics.StartTimer()
	resp, outcome, err := g.do(ctx, target, payload, log)
	metrics.ObserveGatewayCall(string(endpoint), outcome, timer.Duration())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	span.SetAttributes(attribute.String("paynet.status", resp.Status()))
	return resp, nil
}

func (g *paynetGateway) do(ctx context.Context, target string, payload url.Values, log *zap.Logger) (Response, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(payload.Encode()))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, "transport", &TransportError{Message: "Error occurred: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("PAYNET request failed", zap.Error(err))
		return nil, "transport", &TransportError{Message: "Error occurred: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error("PAYNET returned non-success status", zap.Int("http_status", resp.StatusCode))
		return nil, "transport", &TransportError{
			Code:    resp.StatusCode,
			Message: fmt.Sprintf("Error occurred. HTTP code: '%d'", resp.StatusCode),
		}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, "transport", &TransportError{Code: resp.StatusCode, Message: "failed to read paynet response: " + err.Error()}
	}

	body := string(bodyBytes)
	if strings.TrimSpace(body) == "" {
		log.Error("PAYNET response is empty")
		return nil, "empty", ErrEmptyResponse
	}

	if g.cfg.LogExchange {
		log.Info("PAYNET response", zap.String("body", body))
	}

	decoded, err := decodeResponse(body)
	if err != nil {
		log.Error("Failed decoding PAYNET response", zap.Error(err))
		return nil, "decode", fmt.Errorf("failed to decode paynet response: %w", err)
	}

	if decoded.Get("type") == "validation-error" {
		verr := &ValidationError{Message: decoded.Get("error-message"), Raw: body}
		log.Warn("PAYNET rejected request", zap.String("error_message", verr.Message))
		return nil, "validation", verr
	}

	return decoded, "ok", nil
}

var sensitiveFields = []string{"credit_card_number", "cvv2", "control"}

func maskedForm(v url.Values) string {
	masked := url.Values{}
	for k, vs := range v {
		masked[k] = append([]string(nil), vs...)
	}
	for _, k := range sensitiveFields {
		if masked.Get(k) != "" {
			masked.Set(k, mask(masked.Get(k)))
		}
	}
	return masked.Encode()
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// IsTransport reports whether err is a gateway transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
