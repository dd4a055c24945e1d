package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the subset of the SES v2 client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier delivers messages as plain-text email through AWS SES v2.
type SESNotifier struct {
	client    sesAPI
	fromEmail string
	logger    *slog.Logger
}

// NewSESNotifier loads AWS credentials from the environment for region.
func NewSESNotifier(ctx context.Context, region, fromEmail string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESNotifier{client: sesv2.NewFromConfig(cfg), fromEmail: fromEmail, logger: logger}, nil
}

// Send emails message.Body to message.Destination.
func (n *SESNotifier) Send(ctx context.Context, message Message) error {
	subject := message.Subject
	if subject == "" {
		subject = "HomeHelp"
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{message.Destination},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(message.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		if n.logger != nil {
			n.logger.Error("ses send failed", slog.String("kind", message.Kind), slog.Any("error", err))
		}
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
