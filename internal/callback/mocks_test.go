package callback

import (
	"context"
	"encoding/json"

	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"
	"payneteasy-be/internal/reconciler"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockService struct {
	mock.Mock
}

func (m *MockService) Reconcile(ctx context.Context, orderID int64, resp payment.Response) (reconciler.Applied, error) {
	args := m.Called(ctx, orderID, resp)
	return args.Get(0).(reconciler.Applied), args.Error(1)
}

func (m *MockService) QueryStatus(ctx context.Context, orderID int64) (payment.Response, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

func (m *MockService) QueryStatusByGatewayID(ctx context.Context, orderID int64, paynetOrderID string) (payment.Response, error) {
	args := m.Called(ctx, orderID, paynetOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

func (m *MockService) CheckStatus(ctx context.Context, orderID int64, paynetOrderID string) (payment.Response, reconciler.Applied, error) {
	args := m.Called(ctx, orderID, paynetOrderID)
	var resp payment.Response
	if args.Get(0) != nil {
		resp = args.Get(0).(payment.Response)
	}
	return resp, args.Get(1).(reconciler.Applied), args.Error(2)
}

func (m *MockService) Sale(ctx context.Context, orderID int64, in reconciler.SaleInput) (*reconciler.SaleResult, error) {
	args := m.Called(ctx, orderID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciler.SaleResult), args.Error(1)
}

func (m *MockService) Refund(ctx context.Context, orderID int64, rawAmount string) (reconciler.Applied, error) {
	args := m.Called(ctx, orderID, rawAmount)
	return args.Get(0).(reconciler.Applied), args.Error(1)
}

func (m *MockService) TargetStatus(t reconciler.Transition) order.Status {
	args := m.Called(t)
	return args.Get(0).(order.Status)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) GetOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, orderID int64, status order.Status, note string) error {
	args := m.Called(ctx, orderID, status, note)
	return args.Error(0)
}

func (m *MockOrderStore) PaymentComplete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderStore) ReduceStock(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Save(ctx context.Context, merchantOrderID int64, paynetOrderID string) error {
	args := m.Called(ctx, merchantOrderID, paynetOrderID)
	return args.Error(0)
}

func (m *MockAudit) Lookup(ctx context.Context, merchantOrderID int64) (string, error) {
	args := m.Called(ctx, merchantOrderID)
	return args.String(0), args.Error(1)
}

func (m *MockAudit) SavePaymentWebhook(ctx context.Context, eventID, merchantOrderID, status string, payload json.RawMessage) (int64, error) {
	args := m.Called(ctx, eventID, merchantOrderID, status, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAudit) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

func (m *MockAudit) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	args := m.Called(ctx, webhookID, reason)
	return args.Error(0)
}

type MockNonces struct {
	mock.Mock
}

func (m *MockNonces) Issue(action string) (string, error) {
	args := m.Called(action)
	return args.String(0), args.Error(1)
}

func (m *MockNonces) Verify(nonce, action string) error {
	args := m.Called(nonce, action)
	return args.Error(0)
}
