package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service. With no from-address
// configured the service is disabled and sends become logged no-ops.
func NewEmailService(awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendAssignmentEmail sends a Secret Santa participant their reveal link
func (s *EmailService) SendAssignmentEmail(ctx context.Context, toEmail, toName, exchangeName, revealLink string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): assignment to %s", toEmail)
		return nil
	}

	if s.debug {
		log.Printf("[DEBUG] SendAssignmentEmail: to=%s exchange=%s", toEmail, exchangeName)
	}

	subject := fmt.Sprintf("Your Secret Santa assignment for %s", exchangeName)
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>The matches for <strong>%s</strong> have been drawn!</p>
		<p><a href="%s">Click here to see who you're gifting to.</a></p>
		<p>Keep it secret. Keep it safe.</p>
	`, toName, exchangeName, revealLink)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nThe matches for %s have been drawn!\n\nSee who you're gifting to: %s\n\nKeep it secret. Keep it safe.\n",
		toName, exchangeName, revealLink)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	return nil
}
