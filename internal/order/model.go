package order

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusOnHold     Status = "on-hold"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusChargeback Status = "chargeback"
)

type NoticeLevel string

const (
	NoticeError  NoticeLevel = "error"
	NoticeNotice NoticeLevel = "notice"
)

type Address struct {
	FirstName string
	LastName  string
	Address1  string
	City      string
	Postcode  string
	Country   string
	Phone     string
}

type Order struct {
	ID            int64
	Status        Status
	PaymentMethod string
	Total         float64
	Currency      string
	BillingEmail  string
	Billing       Address
	Shipping      Address
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeliveryAddress returns the shipping address, each empty field filled
// from the billing address.
func (o *Order) DeliveryAddress() Address {
	pick := func(shipping, billing string) string {
		if shipping != "" {
			return shipping
		}
		return billing
	}
	return Address{
		FirstName: pick(o.Shipping.FirstName, o.Billing.FirstName),
		LastName:  pick(o.Shipping.LastName, o.Billing.LastName),
		Address1:  pick(o.Shipping.Address1, o.Billing.Address1),
		City:      pick(o.Shipping.City, o.Billing.City),
		Postcode:  pick(o.Shipping.Postcode, o.Billing.Postcode),
		Country:   pick(o.Shipping.Country, o.Billing.Country),
		Phone:     pick(o.Shipping.Phone, o.Billing.Phone),
	}
}
