package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
)

// SNSClient is the subset of the SNS API used by SNSSender.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSOption configures an SNSSender.
type SNSOption func(*snsOptions)

type snsOptions struct {
	client     SNSClient
	httpClient *http.Client
}

// WithSNSClient uses a pre-built client instead of loading AWS config.
func WithSNSClient(c SNSClient) SNSOption {
	return func(o *snsOptions) { o.client = c }
}

// WithHTTPClient sets the HTTP client for the AWS SDK.
func WithHTTPClient(c *http.Client) SNSOption {
	return func(o *snsOptions) { o.httpClient = c }
}

// SNSSender publishes SMS directly to phone numbers through Amazon SNS.
type SNSSender struct {
	client SNSClient
	cfg    Config
}

// NewSNSSender loads AWS configuration and creates the SNS client. Static
// credentials are used when both keys are set; otherwise the default chain
// applies.
func NewSNSSender(ctx context.Context, cfg Config, opts ...SNSOption) (*SNSSender, error) {
	o := &snsOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		if cfg.Region == "" {
			return nil, fmt.Errorf("%w: region is required", ErrInvalidConfig)
		}
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}
		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, errors.Join(ErrFailedLoadConfig, err)
		}
		o.client = sns.NewFromConfig(awsConfig, func(so *sns.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
	}

	return &SNSSender{client: o.client, cfg: cfg}, nil
}

// SendSMS publishes the message to the phone number and returns the SNS
// message id.
func (s *SNSSender) SendSMS(ctx context.Context, to, message string) (string, error) {
	phone, err := NormalizePhone(to)
	if err != nil {
		return "", err
	}
	if message == "" {
		return "", ErrEmptyMessage
	}
	if s.cfg.FoldDiacritics {
		message = Fold(message)
	}

	attrs := map[string]types.MessageAttributeValue{}
	if s.cfg.SMSType != "" {
		attrs["AWS.SNS.SMS.SMSType"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.cfg.SMSType),
		}
	}
	if s.cfg.SenderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.cfg.SenderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			cause := fmt.Errorf("sns error: %s - %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
			if rejected(apiErr) {
				return "", errors.Join(ErrFailedToSend, ErrRejected, cause)
			}
			return "", errors.Join(ErrFailedToSend, cause)
		}
		return "", errors.Join(ErrFailedToSend, err)
	}
	return aws.ToString(out.MessageId), nil
}

// rejected reports whether SNS refused the request itself. Throttling is a
// client fault too but clears up on its own.
func rejected(apiErr smithy.APIError) bool {
	if apiErr.ErrorFault() != smithy.FaultClient {
		return false
	}
	return !strings.Contains(apiErr.ErrorCode(), "Throttl")
}
