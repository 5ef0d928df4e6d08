package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coparrent/coparrent/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
)

// Email categories select the "from" address. Presentation only.
const (
	CategoryWelcome      = "welcome"
	CategoryUpdate       = "update"
	CategorySupport      = "support"
	CategoryCancellation = "cancellation"
)

const defaultMailAPIBaseURL = "https://api.resend.com"

// Message is a transactional email to deliver.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Category string
}

// Result is the provider's acknowledgment of an accepted email.
type Result struct {
	ID string `json:"id"`
}

// Sender dispatches transactional email. Implementations never propagate
// failures: email is strictly best-effort and must not affect callers.
type Sender interface {
	Send(ctx context.Context, msg Message) *Result
}

// Client sends email through a transactional-email REST API.
type Client struct {
	APIKey     string
	BaseURL    string
	FromDomain string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a mail client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("MAIL_API_KEY", "")),
		BaseURL:    strings.TrimRight(env.GetEnv("MAIL_API_BASE_URL", defaultMailAPIBaseURL), "/"),
		FromDomain: strings.TrimSpace(env.GetEnv("MAIL_FROM_DOMAIN", "coparrent.app")),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts the email to the provider. All errors are caught here: they are
// logged and nil is returned, never surfaced to the caller.
func (c *Client) Send(ctx context.Context, msg Message) *Result {
	if strings.TrimSpace(msg.To) == "" {
		log.Error("[Mail] dropping email without recipient")
		return nil
	}
	if strings.TrimSpace(c.APIKey) == "" {
		log.Errorf("[Mail] MAIL_API_KEY not configured, dropping email to %s", msg.To)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"from":    c.fromAddress(msg.Category),
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		log.Errorf("[Mail] failed to encode email to %s: %v", msg.To, err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		log.Errorf("[Mail] failed to build request for %s: %v", msg.To, err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf("[Mail] send to %s failed: %v", msg.To, err)
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Errorf("[Mail] send to %s rejected: status=%d body=%s", msg.To, resp.StatusCode, string(body))
		return nil
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		// Accepted but unparseable response still counts as sent.
		log.Warnf("[Mail] unexpected response body for %s: %v", msg.To, err)
		return &Result{}
	}

	log.Infof("[Mail] sent %s email to %s (id=%s)", msg.Category, msg.To, result.ID)
	return &result
}

func (c *Client) fromAddress(category string) string {
	switch category {
	case CategoryWelcome:
		return fmt.Sprintf("CoParrent <welcome@%s>", c.FromDomain)
	case CategorySupport:
		return fmt.Sprintf("CoParrent Support <support@%s>", c.FromDomain)
	case CategoryCancellation:
		return fmt.Sprintf("CoParrent <goodbye@%s>", c.FromDomain)
	default:
		return fmt.Sprintf("CoParrent <updates@%s>", c.FromDomain)
	}
}
