package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSMTPMailerSend(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "OTP <otp@example.com>"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		require.NotNil(t, a)
		return nil
	}

	subject, body := OTPMessage("123456", 5)
	require.NoError(t, m.Send(context.Background(), "ravi@example.com", subject, body))
	require.Equal(t, "smtp.example.com:587", gotAddr)
	require.Equal(t, "otp@example.com", gotFrom)
	require.Equal(t, []string{"ravi@example.com"}, gotTo)
	require.True(t, strings.Contains(string(gotMsg), "Subject: Your OTP Code\r\n"))
	require.True(t, strings.HasSuffix(string(gotMsg), "Your OTP is 123456. It is valid for 5 minutes."))
}

func TestSMTPMailerCancelled(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, m.Send(ctx, "a@b", "s", "b"))
}

func TestLogMailer(t *testing.T) {
	require.NoError(t, LogMailer{}.Send(context.Background(), "a@b", "s", "b"))
}
