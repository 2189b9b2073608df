// Package relay delivers one-time codes to the mail-simulation service.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// Relay sends a one-time code to an account's mailbox.
type Relay interface {
	SendOTP(ctx context.Context, msg Message) error
}

// Message is the payload posted to the mail service.
type Message struct {
	Email        string `json:"email"`
	HospitalName string `json:"hospital_name"`
	OTP          string `json:"otp"`
}

// MailerClient posts OTP messages to the mail-simulation service's /send-otp endpoint.
type MailerClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewMailerClient returns a client for the mail service at baseURL. A non-positive timeout uses the default.
func NewMailerClient(baseURL string, timeout time.Duration) *MailerClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MailerClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// SendOTP posts msg to the mail service. Any transport failure or non-2xx status is an error.
// Does not log the OTP.
func (c *MailerClient) SendOTP(ctx context.Context, msg Message) error {
	if c.BaseURL == "" {
		return errors.New("relay: mailer URL not configured")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send-otp", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
