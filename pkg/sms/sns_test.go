package sms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/sms"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSNSSender_SendSMS(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := &mockSNS{}
	client.On("Publish", ctx, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+15550100123" &&
			aws.ToString(in.Message) == "Zoe, your results are ready" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue) == "Transactional" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue) == "StMarys"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-123")}, nil).Once()

	s, err := sms.NewSNSSender(ctx, sms.Config{
		SMSType:        "Transactional",
		SenderID:       "StMarys",
		FoldDiacritics: true,
	}, sms.WithSNSClient(client))
	require.NoError(t, err)

	id, err := s.SendSMS(ctx, "+1 555 010 0123", "Zoë, your results are ready")
	require.NoError(t, err)
	assert.Equal(t, "sns-123", id)
	client.AssertExpectations(t)
}

func TestSNSSender_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("api error", func(t *testing.T) {
		client := &mockSNS{}
		client.On("Publish", ctx, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}).Once()
		s, err := sms.NewSNSSender(ctx, sms.Config{}, sms.WithSNSClient(client))
		require.NoError(t, err)

		_, err = s.SendSMS(ctx, "+15550100123", "hi")
		assert.ErrorIs(t, err, sms.ErrFailedToSend)
		assert.Contains(t, err.Error(), "Throttling")
		assert.False(t, sms.IsPermanent(err))
	})

	t.Run("client faults are permanent except throttling", func(t *testing.T) {
		tests := []struct {
			name      string
			apiErr    *smithy.GenericAPIError
			permanent bool
		}{
			{"invalid parameter", &smithy.GenericAPIError{Code: "InvalidParameter", Message: "Invalid parameter: PhoneNumber", Fault: smithy.FaultClient}, true},
			{"opted out", &smithy.GenericAPIError{Code: "OptedOut", Message: "Phone number is opted out", Fault: smithy.FaultClient}, true},
			{"throttled", &smithy.GenericAPIError{Code: "Throttled", Message: "Rate exceeded", Fault: smithy.FaultClient}, false},
			{"internal error", &smithy.GenericAPIError{Code: "InternalError", Message: "try again", Fault: smithy.FaultServer}, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client := &mockSNS{}
				client.On("Publish", ctx, mock.Anything).Return(nil, tt.apiErr).Once()
				s, err := sms.NewSNSSender(ctx, sms.Config{}, sms.WithSNSClient(client))
				require.NoError(t, err)

				_, err = s.SendSMS(ctx, "+15550100123", "hi")
				assert.ErrorIs(t, err, sms.ErrFailedToSend)
				assert.Equal(t, tt.permanent, sms.IsPermanent(err))
				assert.Equal(t, tt.permanent, errors.Is(err, sms.ErrRejected))
			})
		}
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("connection reset")
		client := &mockSNS{}
		client.On("Publish", ctx, mock.Anything).Return(nil, boom).Once()
		s, err := sms.NewSNSSender(ctx, sms.Config{}, sms.WithSNSClient(client))
		require.NoError(t, err)

		_, err = s.SendSMS(ctx, "+15550100123", "hi")
		assert.ErrorIs(t, err, sms.ErrFailedToSend)
		assert.ErrorIs(t, err, boom)
		assert.False(t, sms.IsPermanent(err))
	})

	t.Run("validation happens before publish", func(t *testing.T) {
		client := &mockSNS{}
		s, err := sms.NewSNSSender(ctx, sms.Config{}, sms.WithSNSClient(client))
		require.NoError(t, err)

		_, err = s.SendSMS(ctx, "12", "hi")
		assert.ErrorIs(t, err, sms.ErrInvalidPhone)
		assert.True(t, sms.IsPermanent(err))
		_, err = s.SendSMS(ctx, "+15550100123", "")
		assert.ErrorIs(t, err, sms.ErrEmptyMessage)
		assert.True(t, sms.IsPermanent(err))
		client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("missing region without client", func(t *testing.T) {
		_, err := sms.NewSNSSender(ctx, sms.Config{})
		assert.ErrorIs(t, err, sms.ErrInvalidConfig)
	})
}
