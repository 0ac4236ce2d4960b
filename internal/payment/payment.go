// internal/payment/payment.go
package payment

import (
	"context"
	"net/url"
)

type Gateway interface {
	Send(ctx context.Context, endpoint Endpoint, payload url.Values) (Response, error)
	Sale(ctx context.Context, req PaymentRequest) (Response, error)
	SaleForm(ctx context.Context, req PaymentRequest) (Response, error)
	Status(ctx context.Context, req StatusRequest) (Response, error)
	Return(ctx context.Context, req ReturnRequest) (Response, error)
}
