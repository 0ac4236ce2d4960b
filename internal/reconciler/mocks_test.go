package reconciler

import (
	"context"
	"encoding/json"
	"net/url"

	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

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

func (m *MockOrderStore) AddNotice(ctx context.Context, orderID int64, level order.NoticeLevel, message string) error {
	args := m.Called(ctx, orderID, level, message)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Send(ctx context.Context, endpoint payment.Endpoint, payload url.Values) (payment.Response, error) {
	args := m.Called(ctx, endpoint, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

func (m *MockGateway) Sale(ctx context.Context, req payment.PaymentRequest) (payment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

func (m *MockGateway) SaleForm(ctx context.Context, req payment.PaymentRequest) (payment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

func (m *MockGateway) Status(ctx context.Context, req payment.StatusRequest) (payment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

func (m *MockGateway) Return(ctx context.Context, req payment.ReturnRequest) (payment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(payment.Response), args.Error(1)
}

type MockRecords struct {
	mock.Mock
}

func (m *MockRecords) Save(ctx context.Context, merchantOrderID int64, paynetOrderID string) error {
	args := m.Called(ctx, merchantOrderID, paynetOrderID)
	return args.Error(0)
}

func (m *MockRecords) Lookup(ctx context.Context, merchantOrderID int64) (string, error) {
	args := m.Called(ctx, merchantOrderID)
	return args.String(0), args.Error(1)
}

func (m *MockRecords) SavePaymentWebhook(ctx context.Context, eventID, merchantOrderID, status string, payload json.RawMessage) (int64, error) {
	args := m.Called(ctx, eventID, merchantOrderID, status, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecords) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

func (m *MockRecords) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	args := m.Called(ctx, webhookID, reason)
	return args.Error(0)
}
