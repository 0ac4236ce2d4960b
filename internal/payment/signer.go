package payment

import (
	"crypto/sha1"
	"encoding/hex"
)

// SignSale builds the control value for sale and sale-form requests.
func SignSale(endpointID, clientOrderID string, amount float64, email, controlKey string) string {
	return sha1Hex(endpointID + clientOrderID + MinorUnits(amount) + email + controlKey)
}

// SignStatus builds the control value for status and return requests.
func SignStatus(login, clientOrderID, orderID, controlKey string) string {
	return sha1Hex(login + clientOrderID + orderID + controlKey)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
