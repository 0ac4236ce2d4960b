package reconciler

import "strings"

// Transition is the local action chosen for a gateway status.
type Transition int

const (
	None Transition = iota
	Paid
	OnHold
	Failed
	Chargeback
	Refunded
	PartiallyRefunded
)

func (t Transition) String() string {
	switch t {
	case Paid:
		return "paid"
	case OnHold:
		return "on-hold"
	case Failed:
		return "failed"
	case Chargeback:
		return "chargeback"
	case Refunded:
		return "refunded"
	case PartiallyRefunded:
		return "partially-refunded"
	default:
		return "none"
	}
}

// Classify maps a gateway transaction type and status to a Transition.
// Both the compound "sale/approved" form and the bare status are accepted.
// Anything unrecognized is Failed, so an order is never left unreconciled.
func Classify(transactionType, status string) Transition {
	t, _ := Recognize(transactionType, status)
	return t
}

// Recognize is Classify that also reports whether the status was a known
// gateway value. Unknown values yield Failed and false.
func Recognize(transactionType, status string) (Transition, bool) {
	txType := strings.ToLower(strings.TrimSpace(transactionType))
	status = strings.ToLower(strings.TrimSpace(status))

	if txType == "" {
		if i := strings.IndexByte(status, '/'); i > 0 {
			txType, status = status[:i], status[i+1:]
		}
	}

	if txType != "" {
		switch txType + "/" + status {
		case "sale/approved":
			return Paid, true
		case "sale/processing":
			return OnHold, true
		case "chargeback/approved":
			return Chargeback, true
		case "reversal/approved":
			return Refunded, true
		}
	}

	switch status {
	case "approved":
		if txType == "" {
			return Paid, true
		}
	case "processing":
		if txType == "" {
			return OnHold, true
		}
	case "chargeback-approved":
		return Chargeback, true
	case "reversal-approved", "refund":
		return Refunded, true
	case "partial-refund":
		return PartiallyRefunded, true
	case "declined", "error", "filtered":
		return Failed, true
	}
	return Failed, false
}
