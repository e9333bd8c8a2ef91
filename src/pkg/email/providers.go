package email

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/tuumbleweed/xerr"
)

func sendSES(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", xerr.NewError(err, "load AWS configuration for SES", nil)
	}

	content := &types.Message{
		Subject: &types.Content{Data: aws.String(message.Subject), Charset: aws.String("UTF-8")},
		Body: &types.Body{
			Text: &types.Content{Data: aws.String(message.Text), Charset: aws.String("UTF-8")},
		},
	}
	if message.HTML != "" {
		content.Body.Html = &types.Content{Data: aws.String(message.HTML), Charset: aws.String("UTF-8")}
	}
	for name, value := range message.Headers {
		content.Headers = append(content.Headers, types.MessageHeader{Name: aws.String(name), Value: aws.String(value)})
	}

	output, err := sesv2.NewFromConfig(awsCfg).SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.Sender),
		Destination:      &types.Destination{ToAddresses: message.Recipients},
		Content:          &types.EmailContent{Simple: content},
	})
	if err != nil {
		return "", xerr.NewError(err, "send email via SES", message.Subject)
	}
	return aws.ToString(output.MessageId), nil
}

func sendMailgun(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	mg := mailgun.NewMailgun(os.Getenv("MAILGUN_DOMAIN"), os.Getenv("MAILGUN_API_KEY"))
	if Cfg.MailgunEU {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}

	m := mg.NewMessage(message.Sender, message.Subject, message.Text, message.Recipients...)
	if message.HTML != "" {
		m.SetHtml(message.HTML)
	}
	for name, value := range message.Headers {
		m.AddHeader(name, value)
	}

	_, messageID, err := mg.Send(ctx, m)
	if err != nil {
		return "", xerr.NewError(err, "send email via Mailgun", message.Subject)
	}
	return messageID, nil
}

func sendSendgrid(ctx context.Context, message Message) (messageID string, e *xerr.Error) {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("", message.Sender))
	m.Subject = message.Subject

	personalization := mail.NewPersonalization()
	for _, recipient := range message.Recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	m.AddPersonalizations(personalization)

	m.AddContent(mail.NewContent("text/plain", message.Text))
	if message.HTML != "" {
		m.AddContent(mail.NewContent("text/html", message.HTML))
	}
	for name, value := range message.Headers {
		m.SetHeader(name, value)
	}

	response, err := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY")).SendWithContext(ctx, m)
	if err != nil {
		return "", xerr.NewError(err, "send email via SendGrid", message.Subject)
	}
	return sendgridMessageID(response)
}

// sendgridMessageID turns a non-2xx API answer into an error.
func sendgridMessageID(response *rest.Response) (messageID string, e *xerr.Error) {
	if response == nil {
		return "", xerr.NewError(fmt.Errorf("empty response"), "send email via SendGrid", nil)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		err := fmt.Errorf("status is '%d'", response.StatusCode)
		return "", xerr.NewError(err, "SendGrid rejected the email", response.Body)
	}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
