package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESClient is the subset of the SES v2 client used by the sender
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client SESClient
	config Config
}

// NewSESSender creates an Amazon SES sender using the default AWS credential chain
func NewSESSender(ctx context.Context, cfg Config) (EmailSender, error) {
	if err := validateIdentity(cfg); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrInvalidConfig, err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(awsCfg), cfg), nil
}

// NewSESSenderWithClient wraps an existing SES client
func NewSESSenderWithClient(client SESClient, cfg Config) EmailSender {
	return &sesSender{client: client, config: cfg}
}

// SendEmail implements EmailSender
func (s *sesSender) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.config.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: params.SendTo,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(params.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(params.BodyHTML)},
				},
			},
		},
	}
	if s.config.SupportEmail != "" {
		input.ReplyToAddresses = []string{s.config.SupportEmail}
	}
	if params.Tag != "" {
		input.EmailTags = []types.MessageTag{{Name: aws.String("template"), Value: aws.String(params.Tag)}}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	return aws.ToString(out.MessageId), nil
}
