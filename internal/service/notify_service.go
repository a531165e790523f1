package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"vacationtrail/internal/models"
)

// NotifyService sends reviewer emails via Amazon SES. When no sender address
// is configured the service runs disabled and every send becomes a logged
// no-op, so local setups work without AWS credentials.
type NotifyService struct {
	client        *sesv2.Client
	fromEmail     string
	fromName      string
	reviewerEmail string
	appBaseURL    string
	enabled       bool
}

// NewNotifyService creates a new notify service
func NewNotifyService(awsRegion, fromEmail, fromName, reviewerEmail, appBaseURL string) (*NotifyService, error) {
	if fromEmail == "" || reviewerEmail == "" {
		log.Println("Notify service disabled: SES_FROM_EMAIL or REVIEWER_EMAIL not configured")
		return &NotifyService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Notify service enabled: from=%s, reviewer=%s, region=%s", fromEmail, reviewerEmail, awsRegion)
	return &NotifyService{
		client:        sesv2.NewFromConfig(cfg),
		fromEmail:     fromEmail,
		fromName:      fromName,
		reviewerEmail: reviewerEmail,
		appBaseURL:    appBaseURL,
		enabled:       true,
	}, nil
}

// IsEnabled returns whether the notify service is enabled
func (s *NotifyService) IsEnabled() bool {
	return s.enabled
}

// SendSubmissionForReview tells the reviewer a category-word sheet is waiting
func (s *NotifyService) SendSubmissionForReview(ctx context.Context, sub *models.CategorySubmission) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): review request for %s day %d", sub.Username, sub.Day)
		return nil
	}

	reviewLink := fmt.Sprintf("%s/admin/review?user=%s&day=%d", s.appBaseURL, sub.Username, sub.Day)
	subject := fmt.Sprintf("Answer sheet to review: %s, day %d", sub.Username, sub.Day)

	var lines []string
	for category, answer := range sub.Answers {
		lines = append(lines, fmt.Sprintf("- %s: %s", category, answer))
	}

	textBody := fmt.Sprintf(`A category-word answer sheet is waiting for review.

Player: %s
Day: %d

Answers:
%s

Review it here: %s
`, sub.Username, sub.Day, strings.Join(lines, "\n"), reviewLink)

	htmlBody := fmt.Sprintf(`<p>A category-word answer sheet is waiting for review.</p>
<p><strong>Player:</strong> %s<br><strong>Day:</strong> %d</p>
<ul><li>%s</li></ul>
<p><a href="%s">Review submission</a></p>
`, sub.Username, sub.Day, strings.Join(lines, "</li><li>"), reviewLink)

	return s.sendEmail(ctx, s.reviewerEmail, subject, htmlBody, textBody)
}

// SendReviewComplete tells the reviewer address a verdict has been applied,
// closing the loop on the review thread
func (s *NotifyService) SendReviewComplete(ctx context.Context, username string, day, approved, reward int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): review complete for %s day %d", username, day)
		return nil
	}

	subject := fmt.Sprintf("Review applied: %s, day %d", username, day)
	body := fmt.Sprintf("Review for %s on day %d is done: %d answers approved, %d tiles awarded.",
		username, day, approved, reward)
	return s.sendEmail(ctx, s.reviewerEmail, subject, "<p>"+body+"</p>", body)
}

// sendEmail sends an email using Amazon SES
func (s *NotifyService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
