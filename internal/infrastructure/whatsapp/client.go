// Package whatsapp implements the messaging.Sender contract against the
// WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/licsync/backend/internal/domain/messaging"
	"go.uber.org/zap"
)

// Config holds Cloud API settings
type Config struct {
	APIURL        string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// Client sends messages through the Cloud API's /{phone-number-id}/messages
// endpoint with bearer authentication.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a WhatsApp client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type templatePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type templateBody struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// SendText delivers a free-form text message
func (c *Client) SendText(ctx context.Context, phone, content string) (string, error) {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               normalizePhone(phone),
		Type:             "text",
		Text:             textBody{Body: content},
	}
	return c.post(ctx, payload)
}

// SendTemplate delivers a pre-approved HSM template with body parameters
func (c *Client) SendTemplate(ctx context.Context, phone, templateName string, params []string) (string, error) {
	payload := templatePayload{
		MessagingProduct: "whatsapp",
		To:               normalizePhone(phone),
		Type:             "template",
		Template: templateBody{
			Name:     templateName,
			Language: templateLanguage{Code: "pt_BR"},
		},
	}
	if len(params) > 0 {
		parameters := make([]templateParameter, len(params))
		for i, p := range params {
			parameters[i] = templateParameter{Type: "text", Text: p}
		}
		payload.Template.Components = []templateComponent{
			{Type: "body", Parameters: parameters},
		}
	}
	return c.post(ctx, payload)
}

func (c *Client) post(ctx context.Context, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.cfg.APIURL, "/"), c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read whatsapp response: %w", err)
	}

	var decoded sendResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode whatsapp response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decoded.Error != nil {
			return "", fmt.Errorf("whatsapp api error %d: %s", decoded.Error.Code, decoded.Error.Message)
		}
		return "", fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}

	if len(decoded.Messages) == 0 {
		return "", fmt.Errorf("whatsapp api returned no message id")
	}

	c.logger.Debug("whatsapp message accepted",
		zap.String("provider_message_id", decoded.Messages[0].ID),
	)
	return decoded.Messages[0].ID, nil
}

// normalizePhone strips everything but digits; the Cloud API expects bare
// E.164 digits.
func normalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Ensure Client implements messaging.Sender
var _ messaging.Sender = (*Client)(nil)
