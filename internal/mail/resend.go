package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/config"
	"github.com/go-resty/resty/v2"
)

// ResendClient sends mail through the Resend HTTP API.
type ResendClient struct {
	http *resty.Client
}

// NewResendClient constructs a Resend backend from config.
func NewResendClient(cfg config.MailConfig) (*ResendClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("resend api key is required")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &ResendClient{http: client}, nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
}

// Send posts the message to Resend's /emails endpoint.
func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	var ok resendResponse
	var fail resendError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    msg.From,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			ReplyTo: msg.ReplyTo,
		}).
		SetResult(&ok).
		SetError(&fail).
		Post("/emails")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if fail.Message != "" {
			return "", fmt.Errorf("resend: %s (status %d)", fail.Message, resp.StatusCode())
		}
		return "", fmt.Errorf("resend: status %d", resp.StatusCode())
	}
	return ok.ID, nil
}
