package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledMailerReturnsSentinel(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"user@example.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestValidateSMTPConfig(t *testing.T) {
	require.NoError(t, validateSMTPConfig(SMTPSettings{Enabled: false}))
	require.Error(t, validateSMTPConfig(SMTPSettings{Enabled: true}))
	require.Error(t, validateSMTPConfig(SMTPSettings{Enabled: true, Host: "mail.example.com"}))
	require.NoError(t, validateSMTPConfig(SMTPSettings{Enabled: true, Host: "mail.example.com", Port: 587}))
}

func TestUniqueAddresses(t *testing.T) {
	got := uniqueAddresses([]string{" a@example.com", "a@example.com", "", "b@example.com "})
	require.Equal(t, []string{"a@example.com", "b@example.com"}, got)
}

func TestFormatMessageEscapesHeaders(t *testing.T) {
	raw := formatMessage("noreply@workhive.io", []string{"user@example.com"}, "Invite\r\nX-Injected: true", "hello")
	require.False(t, strings.Contains(raw, "Subject: Invite\r\nX-Injected"))
	require.True(t, strings.Contains(raw, "Content-Type: text/plain; charset=UTF-8"))
}
