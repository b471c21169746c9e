package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"testing"
)

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier()
	if err := n.Notify(context.Background(), "subject", "body"); err != nil {
		t.Errorf("LogNotifier.Notify returned error: %v", err)
	}
}

func TestNewSMTPNotifierValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  SMTPConfig
		wantErr bool
	}{
		{
			name:    "missing host",
			config:  SMTPConfig{From: "a@example.com", To: []string{"b@example.com"}},
			wantErr: true,
		},
		{
			name:    "missing from",
			config:  SMTPConfig{Host: "mail.example.com", To: []string{"b@example.com"}},
			wantErr: true,
		},
		{
			name:    "missing recipients",
			config:  SMTPConfig{Host: "mail.example.com", From: "a@example.com"},
			wantErr: true,
		},
		{
			name:    "valid",
			config:  SMTPConfig{Host: "mail.example.com", From: "a@example.com", To: []string{"b@example.com"}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSMTPNotifier(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSMTPNotifier error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSMTPNotifierDefaultPort(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{
		Host: "mail.example.com",
		From: "a@example.com",
		To:   []string{"b@example.com"},
	})
	if err != nil {
		t.Fatalf("NewSMTPNotifier failed: %v", err)
	}
	if n.config.Port != 25 {
		t.Errorf("default port = %d, want 25", n.config.Port)
	}
}

func TestSMTPNotifierNotify(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n, err := NewSMTPNotifier(SMTPConfig{
		Host: "mail.example.com",
		Port: 587,
		From: "pipeline@example.com",
		To:   []string{"ops@example.com", "oncall@example.com"},
	})
	if err != nil {
		t.Fatalf("NewSMTPNotifier failed: %v", err)
	}
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err = n.Notify(context.Background(), "processing failed", "document doc-1 failed after 3 retries")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if gotAddr != "mail.example.com:587" {
		t.Errorf("addr = %q, want %q", gotAddr, "mail.example.com:587")
	}
	if gotFrom != "pipeline@example.com" {
		t.Errorf("from = %q, want %q", gotFrom, "pipeline@example.com")
	}
	if len(gotTo) != 2 {
		t.Errorf("recipient count = %d, want 2", len(gotTo))
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"Subject: processing failed\r\n",
		"To: ops@example.com, oncall@example.com\r\n",
		"document doc-1 failed after 3 retries",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPNotifierNotifySendError(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{
		Host: "mail.example.com",
		From: "a@example.com",
		To:   []string{"b@example.com"},
	})
	if err != nil {
		t.Fatalf("NewSMTPNotifier failed: %v", err)
	}
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return fmt.Errorf("connection refused")
	}

	if err := n.Notify(context.Background(), "s", "b"); err == nil {
		t.Error("Notify should surface send errors")
	}
}

func TestSMTPNotifierCancelledContext(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{
		Host: "mail.example.com",
		From: "a@example.com",
		To:   []string{"b@example.com"},
	})
	if err != nil {
		t.Fatalf("NewSMTPNotifier failed: %v", err)
	}
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Error("send must not be called with a cancelled context")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.Notify(ctx, "s", "b"); err != context.Canceled {
		t.Errorf("want context.Canceled, got %v", err)
	}
}
