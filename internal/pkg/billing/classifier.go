package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coparrent/coparrent/app/models"
)

// Classifier maps verified webhook events to a canonical (status, tier)
// instruction. It never writes anything; the projector applies its output.
type Classifier struct {
	provider ProviderClient
}

// NewClassifier creates a classifier that resolves customer identities and
// subscription details through the given provider client.
func NewClassifier(provider ProviderClient) *Classifier {
	return &Classifier{provider: provider}
}

// Classify derives the canonical outcome for an event. A returned error means
// classification itself failed (payload decode or provider lookup); handled
// events that require no projection come back as a no-op Outcome instead.
func (c *Classifier) Classify(ctx context.Context, ev *Event) (Outcome, error) {
	switch ParseEventKind(ev.Type) {
	case EventCheckoutCompleted:
		return c.classifyCheckoutCompleted(ctx, ev)
	case EventSubscriptionUpdated:
		return c.classifySubscriptionUpdated(ctx, ev)
	case EventSubscriptionDeleted:
		return c.classifySubscriptionDeleted(ctx, ev)
	case EventInvoicePaymentFailed:
		return c.classifyInvoicePaymentFailed(ctx, ev)
	default:
		return Outcome{NoOp: true, Reason: "unhandled event type: " + ev.Type}, nil
	}
}

func (c *Classifier) classifyCheckoutCompleted(ctx context.Context, ev *Event) (Outcome, error) {
	var session checkoutSession
	if err := json.Unmarshal(ev.Data.Object, &session); err != nil {
		return Outcome{}, fmt.Errorf("decode checkout session: %w", err)
	}

	if strings.TrimSpace(session.Subscription) == "" {
		return Outcome{NoOp: true, Reason: "checkout session has no subscription attached"}, nil
	}

	email := strings.TrimSpace(session.CustomerDetails.Email)
	if email == "" {
		email = strings.TrimSpace(session.CustomerEmail)
	}
	if email == "" {
		resolved, noop, err := c.resolveCustomerEmail(ctx, session.Customer)
		if err != nil {
			return Outcome{}, err
		}
		if noop != "" {
			return Outcome{NoOp: true, Reason: noop}, nil
		}
		email = resolved
	}

	sub, err := c.provider.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolve checkout subscription: %w", err)
	}
	if !isActiveProviderStatus(sub.Status) {
		return Outcome{NoOp: true, Reason: "checkout subscription is not active: " + sub.Status}, nil
	}

	out := Outcome{
		Email:  email,
		Status: models.SubscriptionStatusActive,
	}
	if tier, ok := TierForProduct(sub.ProductID); ok {
		out.TierAction = TierSet
		out.Tier = tier
	} else {
		out.TierAction = TierClear
	}
	return out, nil
}

func (c *Classifier) classifySubscriptionUpdated(ctx context.Context, ev *Event) (Outcome, error) {
	var sub subscriptionObject
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return Outcome{}, fmt.Errorf("decode subscription: %w", err)
	}

	email, noop, err := c.resolveCustomerEmail(ctx, sub.Customer)
	if err != nil {
		return Outcome{}, err
	}
	if noop != "" {
		return Outcome{NoOp: true, Reason: noop}, nil
	}

	switch strings.ToLower(strings.TrimSpace(sub.Status)) {
	case "active", "trialing":
		out := Outcome{Email: email, Status: models.SubscriptionStatusActive}
		if tier, ok := TierForProduct(sub.firstProductID()); ok {
			out.TierAction = TierSet
			out.Tier = tier
		} else {
			out.TierAction = TierClear
		}
		return out, nil
	case "past_due":
		return Outcome{Email: email, Status: models.SubscriptionStatusPastDue, TierAction: TierKeep}, nil
	case "canceled", "unpaid":
		return Outcome{Email: email, Status: models.SubscriptionStatusCanceled, TierAction: TierClear}, nil
	default:
		return Outcome{NoOp: true, Reason: "unhandled subscription status: " + sub.Status}, nil
	}
}

func (c *Classifier) classifySubscriptionDeleted(ctx context.Context, ev *Event) (Outcome, error) {
	var sub subscriptionObject
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return Outcome{}, fmt.Errorf("decode subscription: %w", err)
	}

	email, noop, err := c.resolveCustomerEmail(ctx, sub.Customer)
	if err != nil {
		return Outcome{}, err
	}
	if noop != "" {
		return Outcome{NoOp: true, Reason: noop}, nil
	}

	return Outcome{Email: email, Status: models.SubscriptionStatusCanceled, TierAction: TierClear}, nil
}

func (c *Classifier) classifyInvoicePaymentFailed(ctx context.Context, ev *Event) (Outcome, error) {
	var inv invoiceObject
	if err := json.Unmarshal(ev.Data.Object, &inv); err != nil {
		return Outcome{}, fmt.Errorf("decode invoice: %w", err)
	}

	email := strings.TrimSpace(inv.CustomerEmail)
	if email == "" {
		resolved, noop, err := c.resolveCustomerEmail(ctx, inv.Customer)
		if err != nil {
			return Outcome{}, err
		}
		if noop != "" {
			return Outcome{NoOp: true, Reason: noop}, nil
		}
		email = resolved
	}

	// The tier stays untouched here: the payment failed, the subscription
	// itself did not change tier.
	return Outcome{Email: email, Status: models.SubscriptionStatusPastDue, TierAction: TierKeep}, nil
}

// resolveCustomerEmail looks up a provider customer. The second return value
// carries a no-op reason for the cases that are expected and non-fatal: a
// missing reference, a deleted customer record, or a customer without email.
func (c *Classifier) resolveCustomerEmail(ctx context.Context, customerID string) (string, string, error) {
	id := strings.TrimSpace(customerID)
	if id == "" {
		return "", "event carries no customer reference", nil
	}

	customer, err := c.provider.GetCustomer(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("resolve customer %s: %w", id, err)
	}
	if customer.Deleted {
		return "", "customer record was deleted at the provider: " + id, nil
	}
	if strings.TrimSpace(customer.Email) == "" {
		return "", "customer has no email: " + id, nil
	}
	return customer.Email, "", nil
}
