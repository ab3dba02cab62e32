package sms_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/sms"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+15550100123", want: "+15550100123"},
		{in: " +1 (555) 010-0123 ", want: "+15550100123"},
		{in: "0044 20 7946 0958", want: "+442079460958"},
		{in: "+44.20.7946.0958", want: "+442079460958"},
		{in: "5550100", wantErr: true},
		{in: "+0123456789", wantErr: true},
		{in: "+1234", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := sms.NormalizePhone(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, sms.ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	short := "Your appointment is at 10:00"
	assert.Equal(t, short, sms.Truncate(short, sms.MaxLength))

	exact := strings.Repeat("a", 160)
	assert.Equal(t, exact, sms.Truncate(exact, sms.MaxLength))

	long := strings.Repeat("b", 200)
	got := sms.Truncate(long, sms.MaxLength)
	assert.Equal(t, 160, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("b", 157)+"...", got)

	// multi-byte characters count as one
	unicodeLong := strings.Repeat("é", 161)
	got = sms.Truncate(unicodeLong, sms.MaxLength)
	assert.Equal(t, 160, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestFold(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Emile Zoe, cafe creme", sms.Fold("Émile Zoë, café crème"))
	assert.Equal(t, "plain", sms.Fold("plain"))
}

func TestLogSender(t *testing.T) {
	t.Parallel()
	s := sms.NewLogSender(logger.Discard())

	id, err := s.SendSMS(context.Background(), "+15550100123", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))

	_, err = s.SendSMS(context.Background(), "nope", "hello")
	assert.ErrorIs(t, err, sms.ErrInvalidPhone)

	_, err = s.SendSMS(context.Background(), "+15550100123", "")
	assert.ErrorIs(t, err, sms.ErrEmptyMessage)
}

func TestNew(t *testing.T) {
	t.Parallel()
	s, err := sms.New(context.Background(), sms.Config{Driver: sms.DriverLog}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &sms.LogSender{}, s)

	_, err = sms.New(context.Background(), sms.Config{Driver: "carrier-pigeon"}, nil)
	assert.ErrorIs(t, err, sms.ErrInvalidConfig)
}
