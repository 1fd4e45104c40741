package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/alertkit/pkg/email"
)

// MockEmailSender is a mock implementation of EmailSender for testing
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid params",
			params: email.SendEmailParams{
				SendTo:   []string{"user@example.com"},
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
				Tag:      "test",
			},
		},
		{
			name: "several recipients",
			params: email.SendEmailParams{
				SendTo:   []string{"a@example.com", "test.user+tag@sub.example.com"},
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
		},
		{
			name: "no recipients",
			params: email.SendEmailParams{
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo is required",
		},
		{
			name: "whitespace only recipient",
			params: email.SendEmailParams{
				SendTo:   []string{"   "},
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo is required",
		},
		{
			name: "invalid email format",
			params: email.SendEmailParams{
				SendTo:   []string{"user@example.com", "invalid-email"},
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo must be a valid email address",
		},
		{
			name: "missing domain",
			params: email.SendEmailParams{
				SendTo:   []string{"user@"},
				Subject:  "Test Subject",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "SendTo must be a valid email address",
		},
		{
			name: "empty subject",
			params: email.SendEmailParams{
				SendTo:   []string{"user@example.com"},
				Subject:  " ",
				BodyHTML: "<p>Test body</p>",
			},
			wantErr: true,
			errMsg:  "Subject is required",
		},
		{
			name: "empty body",
			params: email.SendEmailParams{
				SendTo:   []string{"user@example.com"},
				Subject:  "Test Subject",
			},
			wantErr: true,
			errMsg:  "BodyHTML is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested")
		sender := email.NewDevSender(dir)

		id, err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   []string{"user@example.com"},
			Subject:  "Test Email",
			BodyHTML: "<p>Привет 👋</p>",
			Tag:      "welcome",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(id, "_welcome"))

		html, err := os.ReadFile(filepath.Join(dir, id+".html"))
		require.NoError(t, err)
		assert.Equal(t, "<p>Привет 👋</p>", string(html))

		raw, err := os.ReadFile(filepath.Join(dir, id+".json"))
		require.NoError(t, err)
		var meta map[string]any
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, id, meta["message_id"])
		assert.Equal(t, "Test Email", meta["subject"])
		assert.Equal(t, []any{"user@example.com"}, meta["send_to"])
	})

	t.Run("uses sanitized subject without tag", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		id, err := email.NewDevSender(dir).SendEmail(ctx, email.SendEmailParams{
			SendTo:   []string{"user@example.com"},
			Subject:  "Your Booking #42 / confirmed!",
			BodyHTML: "<p>ok</p>",
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(id, "_your_booking_42__confirmed"), id)
	})

	t.Run("validation error writes nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := email.NewDevSender(dir).SendEmail(ctx, email.SendEmailParams{Subject: "x", BodyHTML: "y"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := email.Config{SenderEmail: "noreply@example.com", DevDir: t.TempDir()}

	t.Run("dev by default", func(t *testing.T) {
		t.Parallel()

		s, err := email.NewSender(ctx, base)
		require.NoError(t, err)
		assert.IsType(t, &email.DevSender{}, s)
	})

	t.Run("postmark requires tokens", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.Provider = "postmark"
		_, err := email.NewSender(ctx, cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("smtp checks identity", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.Provider = "SMTP"
		s, err := email.NewSender(ctx, cfg)
		require.NoError(t, err)
		assert.NotNil(t, s)

		cfg.SenderEmail = "not-an-address"
		_, err = email.NewSender(ctx, cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.Provider = "carrier-pigeon"
		_, err := email.NewSender(ctx, cfg)
		assert.ErrorIs(t, err, email.ErrUnknownProvider)
	})
}

func TestSMTPSender_NotConfigured(t *testing.T) {
	t.Parallel()

	sender := email.NewSMTPSender(email.Config{SenderEmail: "noreply@example.com"})
	_, err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   []string{"user@example.com"},
		Subject:  "Hello",
		BodyHTML: "<p>Hello</p>",
	})
	assert.ErrorIs(t, err, email.ErrNotConfigured)
}
