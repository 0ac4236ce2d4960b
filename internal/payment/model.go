package payment

import (
	"net/url"
	"strings"
)

type Endpoint string

const (
	EndpointSale     Endpoint = "sale"
	EndpointSaleForm Endpoint = "sale-form"
	EndpointStatus   Endpoint = "status"
	EndpointReturn   Endpoint = "return"
)

type IntegrationMethod string

const (
	MethodForm   IntegrationMethod = "form"
	MethodDirect IntegrationMethod = "direct"
)

const apiPath = "paynet/api/v2/"

type Address struct {
	FirstName string
	LastName  string
	Address1  string
	City      string
	ZipCode   string
	Country   string
	Phone     string
}

// Card is only sent for the direct integration method.
type Card struct {
	Number      string
	PrintedName string
	ExpireMonth string
	ExpireYear  string
	CVV2        string
}

// PaymentRequest is the outbound sale payload.
type PaymentRequest struct {
	ClientOrderID      string
	OrderDesc          string
	Amount             float64
	Currency           string
	Email              string
	Address            Address
	Card               *Card
	SSN                string
	IPAddress          string
	RedirectSuccessURL string
	RedirectFailURL    string
	RedirectURL        string
	ServerCallbackURL  string
	NotifyURL          string
}

func (p PaymentRequest) values() url.Values {
	v := url.Values{}
	v.Set("client_orderid", p.ClientOrderID)
	v.Set("order_desc", p.OrderDesc)
	v.Set("amount", FormatAmount(p.Amount))
	v.Set("currency", p.Currency)
	v.Set("address1", p.Address.Address1)
	v.Set("city", p.Address.City)
	v.Set("zip_code", p.Address.ZipCode)
	v.Set("country", p.Address.Country)
	v.Set("phone", p.Address.Phone)
	v.Set("first_name", p.Address.FirstName)
	v.Set("last_name", p.Address.LastName)
	v.Set("email", p.Email)
	v.Set("ipaddress", p.IPAddress)
	v.Set("redirect_success_url", p.RedirectSuccessURL)
	v.Set("redirect_fail_url", p.RedirectFailURL)
	v.Set("redirect_url", p.RedirectURL)
	v.Set("server_callback_url", p.ServerCallbackURL)
	if p.NotifyURL != "" {
		v.Set("notify_url", p.NotifyURL)
	}
	if p.SSN != "" {
		v.Set("ssn", p.SSN)
	}
	if p.Card != nil {
		v.Set("credit_card_number", p.Card.Number)
		v.Set("card_printed_name", p.Card.PrintedName)
		v.Set("expire_month", p.Card.ExpireMonth)
		v.Set("expire_year", p.Card.ExpireYear)
		v.Set("cvv2", p.Card.CVV2)
	}
	return v
}

// StatusRequest queries the state of a sale. OrderID is the gateway id.
type StatusRequest struct {
	ClientOrderID string
	OrderID       string
}

// ReturnRequest asks the gateway to reverse a sale.
type ReturnRequest struct {
	ClientOrderID string
	OrderID       string
	Comment       string
}

// Response is the decoded url-encoded gateway answer.
type Response map[string]string

func (r Response) Get(key string) string { return r[key] }

func (r Response) RedirectURL() string     { return r["redirect-url"] }
func (r Response) PaynetOrderID() string   { return r["paynet-order-id"] }
func (r Response) MerchantOrderID() string { return r["merchant-order-id"] }
func (r Response) TransactionType() string { return r["transaction-type"] }
func (r Response) Status() string          { return r["status"] }

// HTML is the 3-D Secure challenge fragment, empty when none is pending.
func (r Response) HTML() string { return r["html"] }

// CompoundStatus joins transaction type and status as "sale/approved".
func (r Response) CompoundStatus() string {
	if r.TransactionType() == "" {
		return r.Status()
	}
	return r.TransactionType() + "/" + r.Status()
}

func decodeResponse(body string) (Response, error) {
	parsed, err := url.ParseQuery(body)
	if err != nil {
		return nil, err
	}

	out := make(Response, len(parsed))
	for k, vs := range parsed {
		if len(vs) == 0 {
			continue
		}
		out[k] = strings.TrimRight(vs[0], " \t\r\n\x00\x0B")
	}
	return out, nil
}
