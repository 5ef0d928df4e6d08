package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coparrent/coparrent/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// Customer is the resolved provider customer identity. Deleted is set when the
// provider still references a customer record that has since been removed.
type Customer struct {
	ID      string
	Email   string
	Deleted bool
}

// Subscription is the subset of provider subscription state the classifier
// needs when the event payload does not carry it.
type Subscription struct {
	ID        string
	Customer  string
	Status    string
	ProductID string
}

// ProviderClient resolves provider-side objects referenced by webhook events.
type ProviderClient interface {
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// StripeClient talks to the payment provider's REST API.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *StripeClient) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	id := strings.TrimSpace(customerID)
	if id == "" {
		return nil, errors.New("customer id is required")
	}

	body, err := c.get(ctx, "/customers/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("customer response missing id")
	}

	return &Customer{
		ID:      strings.TrimSpace(raw.ID),
		Email:   strings.TrimSpace(raw.Email),
		Deleted: raw.Deleted,
	}, nil
}

func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	id := strings.TrimSpace(subscriptionID)
	if id == "" {
		return nil, errors.New("subscription id is required")
	}

	body, err := c.get(ctx, "/subscriptions/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var raw subscriptionObject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("subscription response missing id")
	}

	return &Subscription{
		ID:        strings.TrimSpace(raw.ID),
		Customer:  strings.TrimSpace(raw.Customer),
		Status:    strings.TrimSpace(raw.Status),
		ProductID: raw.firstProductID(),
	}, nil
}

func (c *StripeClient) get(ctx context.Context, path string) ([]byte, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}

	baseURL := strings.TrimRight(c.APIBaseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return body, nil
}
