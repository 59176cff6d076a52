// Package notify sends booking confirmations over the Meta WhatsApp Cloud
// API. Delivery is best effort: the booking flow treats every failure here as
// log-and-continue.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/abhinaba-ghosh/sarodwala/pkg/config"
)

// ErrNotConfigured reports that no API credentials are present. Callers treat
// it like any other send failure.
var ErrNotConfigured = errors.New("whatsapp business api not configured")

// Client is a minimal WhatsApp Cloud API client.
type Client struct {
	hc  *http.Client
	cfg config.WhatsAppConfig
}

// NewClient builds the client with the configured request timeout.
func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{
		hc:  &http.Client{Timeout: cfg.Timeout},
		cfg: cfg,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.PhoneNumberID != "" && c.cfg.APIToken != ""
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
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendTemplate sends the approved confirmation template with the given body
// parameters and returns the message id.
func (c *Client) SendTemplate(ctx context.Context, phone string, params []string) (string, error) {
	parameters := make([]templateParameter, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, templateParameter{Type: "text", Text: p})
	}
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                c.NormalizePhone(phone),
		"type":              "template",
		"template": map[string]interface{}{
			"name":       c.cfg.TemplateName,
			"language":   map[string]string{"code": c.cfg.TemplateLanguage},
			"components": []templateComponent{{Type: "body", Parameters: parameters}},
		},
	}
	return c.send(ctx, payload)
}

// SendText sends a plain text message and returns the message id.
func (c *Client) SendText(ctx context.Context, phone, message string) (string, error) {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                c.NormalizePhone(phone),
		"type":              "text",
		"text":              map[string]string{"body": message},
	}
	return c.send(ctx, payload)
}

func (c *Client) send(ctx context.Context, payload interface{}) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read whatsapp response: %w", err)
	}

	var parsed sendResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= 400 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("whatsapp send failed: %s (status=%d)", parsed.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("whatsapp send failed (status=%d)", resp.StatusCode)
	}
	if len(parsed.Messages) == 0 {
		return "", fmt.Errorf("whatsapp response missing message id")
	}
	return parsed.Messages[0].ID, nil
}

// NormalizePhone strips formatting and prefixes the default country code for
// bare ten-digit numbers.
func (c *Client) NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	code := c.cfg.DefaultCountryCode
	if code != "" && len(cleaned) == 10 && !strings.HasPrefix(cleaned, code) {
		cleaned = code + cleaned
	}
	return cleaned
}
