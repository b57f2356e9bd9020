package line

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/farmperf/internal/config"
)

// maxTextLength is the LINE limit for a single text message.
const maxTextLength = 5000

// Client exposes the LINE Messaging API operations used by the application.
type Client interface {
	PushText(ctx context.Context, to, text string) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a LINE Messaging API client using the provided configuration values.
func NewClient(cfg config.LineConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.ChannelToken)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// apiError represents a LINE Messaging API error payload.
type apiError struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details"`
}

// PushText sends text to a user, group or room. Text longer than one LINE
// message is split across up to five messages of the same push.
func (c *APIClient) PushText(ctx context.Context, to, text string) error {
	if to == "" {
		return fmt.Errorf("line push: recipient must not be empty")
	}

	parts := splitText(text, maxTextLength)
	if len(parts) > 5 {
		parts = parts[:5]
	}
	payload := pushRequest{To: to}
	for _, part := range parts {
		payload.Messages = append(payload.Messages, textMessage{Type: "text", Text: part})
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post("/v2/bot/message/push")
	if err != nil {
		return fmt.Errorf("send line message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if len(apiErr.Details) > 0 {
			message = fmt.Sprintf("%s (%s: %s)", message, apiErr.Details[0].Property, apiErr.Details[0].Message)
		}
		return fmt.Errorf("line api error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}

func splitText(text string, limit int) []string {
	if text == "" {
		return []string{""}
	}
	var parts []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		cut := limit
		if i := strings.LastIndex(string(runes[:limit]), "\n"); i > 0 {
			cut = utf8.RuneCountInString(string(runes[:limit])[:i])
		}
		parts = append(parts, string(runes[:cut]))
		text = strings.TrimLeft(string(runes[cut:]), "\n")
	}
	return append(parts, text)
}
