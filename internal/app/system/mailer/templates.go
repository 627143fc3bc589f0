// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// ReceiptEmailData holds data for the membership receipt templates.
type ReceiptEmailData struct {
	SiteName      string
	ClubName      string
	Amount        float64
	Currency      string
	TransactionID string
	PaidAt        time.Time
	DashboardURL  string
}

// AmountText renders the amount as "25.00 USD".
func (d ReceiptEmailData) AmountText() string {
	return fmt.Sprintf("%.2f %s", d.Amount, strings.ToUpper(d.Currency))
}

// BuildReceiptEmail creates a membership receipt with both HTML and text bodies.
func BuildReceiptEmail(data ReceiptEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Welcome to %s", data.ClubName),
		TextBody: buildReceiptText(data),
		HTMLBody: buildReceiptHTML(data),
	}
}

func buildReceiptText(data ReceiptEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Your membership in %s is now active.\n\n", data.ClubName))
	buf.WriteString(fmt.Sprintf("Amount paid: %s\n", data.AmountText()))
	buf.WriteString(fmt.Sprintf("Transaction: %s\n", data.TransactionID))
	buf.WriteString(fmt.Sprintf("Date: %s\n\n", data.PaidAt.UTC().Format("2006-01-02 15:04 MST")))
	if data.DashboardURL != "" {
		buf.WriteString("See your clubs and upcoming events:\n")
		buf.WriteString(data.DashboardURL + "\n\n")
	}
	buf.WriteString(fmt.Sprintf("Thanks for joining, the %s team\n", data.SiteName))
	return buf.String()
}

var receiptHTML = template.Must(template.New("receipt").Parse(receiptHTMLTemplate))

func buildReceiptHTML(data ReceiptEmailData) string {
	var buf bytes.Buffer
	_ = receiptHTML.Execute(&buf, data)
	return buf.String()
}

const receiptHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Membership Receipt</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                Your membership in <strong>{{.ClubName}}</strong> is now active.
              </p>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="font-size: 14px; color: #374151;">
                <tr><td style="padding: 4px 0;">Amount paid</td><td style="text-align: right;">{{.AmountText}}</td></tr>
                <tr><td style="padding: 4px 0;">Transaction</td><td style="text-align: right; font-family: 'Courier New', monospace;">{{.TransactionID}}</td></tr>
              </table>
              {{if .DashboardURL}}
              <p style="margin: 24px 0 0; text-align: center;">
                <a href="{{.DashboardURL}}" style="display: inline-block; padding: 12px 28px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">My clubs</a>
              </p>
              {{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
