// Package notifier implements outbound email delivery for site
// coordinator notifications.
package notifier

import (
	"context"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
	"go.uber.org/zap"
)

// MailjetNotifier implements domain.Notifier using the MailJet API.
type MailjetNotifier struct {
	client *mailjet.Client
	sender string
	logger *zap.Logger
}

// NewMailjetNotifier creates a notifier with the given API credentials
// and sender address.
func NewMailjetNotifier(publicKey, privateKey, sender string, logger *zap.Logger) *MailjetNotifier {
	return &MailjetNotifier{
		client: mailjet.NewMailjetClient(publicKey, privateKey),
		sender: sender,
		logger: logger,
	}
}

// Send delivers a single plain-text email to the recipient. The
// mailjet v3 client exposes no request context, so cancellation is
// not propagated to the API call.
func (n *MailjetNotifier) Send(_ context.Context, recipient, subject, body string) error {
	info := []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: n.sender},
		To:       &mailjet.RecipientsV31{mailjet.RecipientV31{Email: recipient}},
		Subject:  subject,
		TextPart: body,
	}}

	msgs := mailjet.MessagesV31{Info: info}
	if _, err := n.client.SendMailV31(&msgs); err != nil {
		return fmt.Errorf("sending mail to %s: %w", recipient, err)
	}

	n.logger.Debug("mail sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
	)

	return nil
}
