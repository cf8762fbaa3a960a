package services

import (
	"net/smtp"
	"testing"

	"github.com/dimitrije/capsule-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "user@example.com",
		Password: "password",
		From:     "noreply@example.com",
	}
}

func TestEmailService_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.SMTPConfig)
		want   bool
	}{
		{"complete", func(*config.SMTPConfig) {}, true},
		{"missing host", func(c *config.SMTPConfig) { c.Host = "" }, false},
		{"missing username", func(c *config.SMTPConfig) { c.Username = "" }, false},
		{"missing password", func(c *config.SMTPConfig) { c.Password = "" }, false},
		{"missing from", func(c *config.SMTPConfig) { c.From = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configuredSMTP()
			tt.modify(&cfg)
			assert.Equal(t, tt.want, NewEmailService(cfg).IsConfigured())
		})
	}
}

func TestEmailService_Send_NotConfigured(t *testing.T) {
	svc := NewEmailService(config.SMTPConfig{})

	err := svc.Send("to@example.com", "Subject", "Body")

	assert.NoError(t, err)
}

func TestEmailService_SendCapsuleInvite(t *testing.T) {
	svc := NewEmailService(configuredSMTP())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := svc.SendCapsuleInvite("partner@example.com", "Alex <script>", "ABCD2345")

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"partner@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "ABCD2345")
	assert.Contains(t, string(gotMsg), "Alex &lt;script&gt;")
	assert.NotContains(t, string(gotMsg), "<script>")
}

func TestEmailService_Send_RejectsHeaderInjection(t *testing.T) {
	svc := NewEmailService(configuredSMTP())
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}

	err := svc.Send("victim@example.com\r\nBcc: other@example.com", "Subject", "Body")

	assert.ErrorIs(t, err, ErrInvalidInput)
}
