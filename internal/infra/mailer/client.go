// Package mailer is a thin client for a Resend-style transactional email
// HTTP API: POST /emails with a bearer key, response carries the provider
// message id.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nightgate/internal/pkg/config"
	"nightgate/internal/pkg/errs"
	"nightgate/internal/worker/emailqueue"
)

type Client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func NewClient(cfg config.EmailConfig) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.FromAddress,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (c *Client) Send(ctx context.Context, msg emailqueue.Message) (string, error) {
	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return "", errs.Wrap(err, "failed to encode email request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", errs.Wrap(err, "failed to build email request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errs.Wrap(err, "email provider request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.Newf("email provider returned %d: %s", resp.StatusCode, string(body))
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errs.Wrap(err, "failed to decode email response")
	}
	if out.ID == "" {
		return "", errs.New("email provider response missing message id")
	}

	return out.ID, nil
}

var _ emailqueue.Provider = (*Client)(nil)

func (c *Client) String() string {
	return fmt.Sprintf("mailer.Client(%s)", c.baseURL)
}
