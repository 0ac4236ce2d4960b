package callback

import (
	"bytes"
	"html/template"
)

const (
	pageApproved = "Your payment was approved. Thank you."
	pageError    = "Your payment was not completed because of an error. Could you try again."
	pageDeclined = "Your payment was declined. Could you try again."
	pageUnknown  = "Transaction is declined but something went wrong, please inform your account manager, final status"
)

var pageTmpl = template.Must(template.New("page").Parse(
	`<div style="width: 100%; text-align: center"><div><h1>{{.Message}}</h1></div><div><a href="{{.Home}}">Return homepage</a></div></div>`,
))

func renderPage(message, home string) string {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, struct{ Message, Home string }{message, home}); err != nil {
		return message
	}
	return buf.String()
}

// statusPage picks the customer page for a final status answer.
func statusPage(compoundStatus string) string {
	switch compoundStatus {
	case "sale/approved", "approved":
		return pageApproved
	case "sale/error", "error":
		return pageError
	case "sale/declined", "declined":
		return pageDeclined
	default:
		return pageUnknown
	}
}
