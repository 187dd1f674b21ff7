// internal/adapters/out/mail/sendgrid_notifier.go
package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	issdom "tokenforge/internal/domain/issuance"
)

const notifySubject = "Token issuance update"

// SendGridNotifier delivers issuance status messages to the originator as
// plain-text mail. The originator string is interpreted as a mail address.
// Delivery is best-effort: failures are logged, never propagated.
type SendGridNotifier struct {
	apiKey string
	from   string
}

var _ issdom.NotifierPort = (*SendGridNotifier)(nil)

func NewSendGridNotifier(apiKey, from string) *SendGridNotifier {
	return &SendGridNotifier{apiKey: apiKey, from: from}
}

// Notify implements issuance.NotifierPort.
func (n *SendGridNotifier) Notify(ctx context.Context, originator, message string) {
	if n == nil || n.apiKey == "" {
		log.Printf("[sendgrid] skipped (no api key) to=%s message=%q", originator, message)
		return
	}
	if originator == "" || message == "" {
		return
	}

	fromEmail := mail.NewEmail("Tokenforge", n.from)
	toEmail := mail.NewEmail("", originator)

	plainTextContent := message
	htmlContent := fmt.Sprintf("<pre>%s</pre>", message)

	msg := mail.NewSingleEmail(fromEmail, notifySubject, toEmail, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.Send(msg)
	if err != nil {
		log.Printf("[sendgrid] send error to=%s err=%v", originator, err)
		return
	}
	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return
	}

	log.Printf("[sendgrid] notification sent: status=%d to=%s", response.StatusCode, originator)
}
