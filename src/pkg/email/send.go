/*
Package email sends pipeline notifications through one of three providers:
Amazon SES, Mailgun or SendGrid.

Credentials come from the environment:

	ses       AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION
	mailgun   MAILGUN_DOMAIN, MAILGUN_API_KEY
	sendgrid  SENDGRID_API_KEY
*/
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type Provider string

const (
	ProviderSES      Provider = "ses"
	ProviderMailgun  Provider = "mailgun"
	ProviderSendgrid Provider = "sendgrid"
)

// Message is one email ready for a provider.
type Message struct {
	Sender     string
	Recipients []string
	Subject    string
	Text       string
	HTML       string
	Headers    map[string]string
}

func (m Message) validate() (e *xerr.Error) {
	if strings.TrimSpace(m.Sender) == "" {
		return xerr.NewError(fmt.Errorf("sender is empty"), "validate email", m.Subject)
	}
	if len(m.Recipients) == 0 {
		return xerr.NewError(fmt.Errorf("no recipients"), "validate email", m.Subject)
	}
	for _, recipient := range m.Recipients {
		if !strings.Contains(recipient, "@") {
			return xerr.NewError(fmt.Errorf("recipient '%s' is not an address", recipient), "validate email", m.Subject)
		}
	}
	return nil
}

/*
SendMessage sends one email with the given provider.

When sendEmails points to false the message is only logged, which is how dry
runs work. headers may be nil.
*/
func SendMessage(
	provider Provider, sendEmails *bool, sender string, recipients []string,
	subject string, text string, html string, headers map[string]string,
) (e *xerr.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(Cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	message := Message{Sender: sender, Recipients: recipients, Subject: subject, Text: text, HTML: html, Headers: headers}
	return SendMessageContext(ctx, provider, sendEmails, message)
}

func SendMessageContext(ctx context.Context, provider Provider, sendEmails *bool, message Message) (e *xerr.Error) {
	message.Recipients = cleanRecipients(message.Recipients)
	e = message.validate()
	if e != nil {
		return e
	}

	if sendEmails != nil && !*sendEmails {
		tl.Log(
			tl.Important, palette.PurpleBold, "%s email '%s' to '%s' (sending is disabled)",
			"Skipping", message.Subject, strings.Join(message.Recipients, ", "),
		)
		return nil
	}

	tl.Log(tl.Info, palette.Blue, "%s '%s' to '%s' via '%s'", "Sending", message.Subject, strings.Join(message.Recipients, ", "), provider)
	var messageID string
	switch provider {
	case ProviderSES:
		messageID, e = sendSES(ctx, message)
	case ProviderMailgun:
		messageID, e = sendMailgun(ctx, message)
	case ProviderSendgrid:
		messageID, e = sendSendgrid(ctx, message)
	default:
		err := fmt.Errorf("provider must be one of %s, %s, %s", ProviderSES, ProviderMailgun, ProviderSendgrid)
		return xerr.NewError(err, "unknown email provider", provider)
	}
	if e != nil {
		return e
	}

	tl.Log(tl.Info1, palette.Green, "%s '%s' via '%s' (message id '%s')", "Sent", message.Subject, provider, messageID)
	return nil
}

func cleanRecipients(recipients []string) (cleaned []string) {
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient != "" {
			cleaned = append(cleaned, recipient)
		}
	}
	return cleaned
}
