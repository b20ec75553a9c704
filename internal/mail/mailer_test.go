package mail

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"pedidos-backend/internal/config"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerDisabledWithoutHost(t *testing.T) {
	assert.Nil(t, NewMailer(&config.Config{}))
}

func TestSendRecoveryNotice(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: 587, SMTPUser: "portal@brasfrut.com"})
	require.NotNil(t, m)

	var sent *email.Email
	var addr string
	m.send = func(e *email.Email, a string, _ smtp.Auth) error {
		sent, addr = e, a
		return nil
	}

	at := time.Date(2026, 3, 20, 14, 30, 0, 0, time.UTC)
	require.NoError(t, m.SendRecoveryNotice("Brasfrut", "rh@brasfrut.com", "10.0.0.9", at))
	assert.Equal(t, "smtp.local:587", addr)
	assert.Equal(t, "portal@brasfrut.com", sent.From)
	assert.Equal(t, []string{"rh@brasfrut.com"}, sent.To)
	assert.Contains(t, sent.Subject, "Brasfrut")
	assert.Contains(t, string(sent.Text), "20/03/2026 14:30")
	assert.Contains(t, string(sent.Text), "10.0.0.9")
}

func TestSendRecoveryNoticeWrapsErrors(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: 25})
	m.send = func(*email.Email, string, smtp.Auth) error { return errors.New("connection refused") }
	err := m.SendRecoveryNotice("Brasfrut", "rh@brasfrut.com", "", time.Now())
	assert.ErrorContains(t, err, "connection refused")
}
