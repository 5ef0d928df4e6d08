package billing

import (
	"encoding/json"
	"errors"
	"strings"
)

// EventKind is the closed set of provider webhook event types this service
// reacts to. Everything else is EventUnknown and acknowledged without effect.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCheckoutCompleted
	EventSubscriptionUpdated
	EventSubscriptionDeleted
	EventInvoicePaymentFailed
)

// ParseEventKind maps the provider's event type string to an EventKind.
// Matching is exact and case-sensitive, mirroring the provider contract.
func ParseEventKind(eventType string) EventKind {
	switch eventType {
	case "checkout.session.completed":
		return EventCheckoutCompleted
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	case "invoice.payment_failed":
		return EventInvoicePaymentFailed
	default:
		return EventUnknown
	}
}

// Event is the provider webhook envelope. Data.Object is kept raw and decoded
// per event kind by the classifier.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a webhook envelope. A payload without an event id or
// type cannot be deduplicated or classified and is a parse failure.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ev.ID) == "" {
		return nil, errors.New("webhook payload missing event id")
	}
	if strings.TrimSpace(ev.Type) == "" {
		return nil, errors.New("webhook payload missing event type")
	}
	return &ev, nil
}

// TierAction describes what a classified event does to the stored
// subscription tier.
type TierAction int

const (
	// TierKeep leaves the stored tier untouched.
	TierKeep TierAction = iota
	// TierSet overwrites the stored tier with Outcome.Tier.
	TierSet
	// TierClear sets the stored tier to NULL.
	TierClear
)

// Outcome is the canonical instruction derived from a classified event.
// When NoOp is set, Reason explains why and no projection happens.
type Outcome struct {
	NoOp       bool
	Reason     string
	Email      string
	Status     string
	TierAction TierAction
	Tier       string
}

// IdempotencyResult reports whether the caller holds the claim for an event.
type IdempotencyResult struct {
	ShouldProcess    bool
	AlreadyProcessed bool
}

// checkoutSession is the subset of the provider checkout session object the
// classifier needs.
type checkoutSession struct {
	Customer        string `json:"customer"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Subscription string `json:"subscription"`
	Mode         string `json:"mode"`
}

// subscriptionObject is the subset of the provider subscription object carried
// in subscription.* events.
type subscriptionObject struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    struct {
		Data []struct {
			Price struct {
				Product string `json:"product"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// invoiceObject is the subset of the provider invoice object carried in
// invoice.* events.
type invoiceObject struct {
	Customer      string `json:"customer"`
	CustomerEmail string `json:"customer_email"`
	Subscription  string `json:"subscription"`
}

// firstProductID returns the product reference of the first subscription item.
func (s *subscriptionObject) firstProductID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return strings.TrimSpace(s.Items.Data[0].Price.Product)
}
