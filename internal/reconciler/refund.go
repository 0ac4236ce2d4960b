package reconciler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/payment"

	"go.uber.org/zap"
)

const refundComment = "Order cancel "

// Refund reverses the sale on the gateway and moves the order to chargeback.
// The amount is validated but the gateway always reverses the full sale.
func (s *service) Refund(ctx context.Context, orderID int64, rawAmount string) (Applied, error) {
	log := logger.FromCtx(ctx, s.log).With(zap.Int64("order_id", orderID))

	missing := &payment.MissingInputError{Field: "refund_amount", Message: "Refund amount not specified."}
	if strings.TrimSpace(rawAmount) == "" {
		return Applied{}, missing
	}

	amount, err := payment.ParseAmount(rawAmount)
	if err != nil {
		return Applied{}, fmt.Errorf("invalid refund amount: %w", err)
	}
	if amount == 0 {
		return Applied{}, missing
	}

	paynetOrderID, err := s.records.Lookup(ctx, orderID)
	if err != nil {
		return Applied{}, err
	}

	resp, err := s.gateway.Return(ctx, payment.ReturnRequest{
		ClientOrderID: strconv.FormatInt(orderID, 10),
		OrderID:       paynetOrderID,
		Comment:       refundComment,
	})
	if err != nil {
		log.Error("return request failed", zap.Error(err))
		return Applied{}, err
	}

	log.Info("return requested",
		zap.String("amount", payment.FormatAmount(amount)),
		zap.String("gateway_status", resp.CompoundStatus()),
	)

	return s.apply(ctx, orderID, Chargeback, resp.CompoundStatus())
}
