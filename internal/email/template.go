package email

import (
	"html/template"
	"strings"
)

var quoteConfirmationTmpl = template.Must(template.New("quote_confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you{{if .Name}}, {{.Name}}{{end}}!</h2>
  <p>We have received your {{.InsuranceType}} insurance quote request.</p>
  <p>Our team will review your information and contact you shortly with a personalized quote.</p>
  <p>If you have any questions in the meantime, just reply to this email.</p>
  <p style="color: #888; font-size: 12px;">This message was sent automatically after your conversation with our intake assistant.</p>
</body>
</html>`))

type quoteConfirmationData struct {
	Name          string
	InsuranceType string
}

func renderQuoteConfirmation(name, insuranceType string) string {
	var b strings.Builder
	if err := quoteConfirmationTmpl.Execute(&b, quoteConfirmationData{Name: name, InsuranceType: insuranceType}); err != nil {
		return "We have received your " + insuranceType + " insurance quote request."
	}
	return b.String()
}
