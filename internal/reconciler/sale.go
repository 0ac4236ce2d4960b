package reconciler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"payneteasy-be/internal/logger"
	"payneteasy-be/internal/order"
	"payneteasy-be/internal/payment"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SaleInput is what the customer submits at checkout.
type SaleInput struct {
	Card      payment.Card
	SSN       string
	IPAddress string
}

type SaleResult struct {
	PaynetOrderID string
	// Redirect is where the browser goes next.
	Redirect string
}

func (s *service) Sale(ctx context.Context, orderID int64, in SaleInput) (*SaleResult, error) {
	ctx, span := otel.Tracer("paynet-reconciler").Start(ctx, "sale")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	log := logger.FromCtx(ctx, s.log).With(zap.Int64("order_id", orderID))

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.PaymentMethod != s.cfg.MethodID {
		return nil, ErrWrongPaymentMethod
	}

	if err := s.validateSaleInput(in); err != nil {
		return nil, err
	}

	req := s.buildPaymentRequest(o, in)

	var resp payment.Response
	if s.cfg.Integration == payment.MethodDirect {
		resp, err = s.gateway.Sale(ctx, req)
	} else {
		resp, err = s.gateway.SaleForm(ctx, req)
	}
	if err != nil {
		log.Error("sale failed", zap.Error(err))
		return nil, err
	}

	paynetOrderID := resp.PaynetOrderID()
	if paynetOrderID == "" {
		return nil, errors.New("gateway response has no paynet-order-id")
	}

	if err := s.records.Save(ctx, orderID, paynetOrderID); err != nil {
		log.Error("failed to save payment record", zap.Error(err), zap.String("paynet_order_id", paynetOrderID))
		return nil, err
	}

	if redirect := resp.RedirectURL(); redirect != "" {
		if err := s.orders.UpdateStatus(ctx, orderID, order.StatusPending, "Payment link generated:"+redirect); err != nil {
			return nil, err
		}
	}

	result := &SaleResult{PaynetOrderID: paynetOrderID, Redirect: resp.RedirectURL()}
	if s.cfg.Integration == payment.MethodDirect {
		result.Redirect = s.returnURL(orderID)
	}

	log.Info("sale created",
		zap.String("paynet_order_id", paynetOrderID),
		zap.String("integration", string(s.cfg.Integration)),
	)
	return result, nil
}

func (s *service) validateSaleInput(in SaleInput) error {
	var errs []error

	if s.cfg.Integration == payment.MethodDirect {
		fields := []struct {
			name  string
			value string
		}{
			{"credit_card_number", in.Card.Number},
			{"card_printed_name", in.Card.PrintedName},
			{"expire_year", in.Card.ExpireYear},
			{"expire_month", in.Card.ExpireMonth},
			{"cvv2", in.Card.CVV2},
		}
		for _, f := range fields {
			if strings.TrimSpace(f.value) == "" {
				errs = append(errs, payment.Missing(f.name))
			}
		}
	}

	if s.cfg.RequireSSN && strings.TrimSpace(in.SSN) == "" {
		errs = append(errs, &payment.MissingInputError{Field: "ssn", Message: "CPF is required!"})
	}

	return errors.Join(errs...)
}

func (s *service) buildPaymentRequest(o *order.Order, in SaleInput) payment.PaymentRequest {
	addr := o.DeliveryAddress()
	returnURL := s.returnURL(o.ID)

	req := payment.PaymentRequest{
		ClientOrderID: strconv.FormatInt(o.ID, 10),
		OrderDesc:     fmt.Sprintf("Order # %d", o.ID),
		Amount:        o.Total,
		Currency:      o.Currency,
		Email:         o.BillingEmail,
		Address: payment.Address{
			FirstName: addr.FirstName,
			LastName:  addr.LastName,
			Address1:  addr.Address1,
			City:      addr.City,
			ZipCode:   addr.Postcode,
			Country:   addr.Country,
			Phone:     addr.Phone,
		},
		SSN:                in.SSN,
		IPAddress:          in.IPAddress,
		RedirectSuccessURL: returnURL,
		RedirectFailURL:    returnURL,
		RedirectURL:        returnURL,
		ServerCallbackURL:  s.cfg.CallbackURL,
		NotifyURL:          s.notifyURL(o.ID),
	}

	if s.cfg.Integration == payment.MethodDirect {
		card := in.Card
		req.Card = &card
	}
	return req
}

func (s *service) returnURL(orderID int64) string {
	return s.cfg.ReturnURL + "?" + url.Values{"orderId": {strconv.FormatInt(orderID, 10)}}.Encode()
}

func (s *service) notifyURL(orderID int64) string {
	if !strings.Contains(s.cfg.NotifyURL, "%") {
		return s.cfg.NotifyURL
	}
	return fmt.Sprintf(s.cfg.NotifyURL, orderID)
}
