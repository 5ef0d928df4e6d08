package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/coparrent/coparrent/app/models"
)

func makeEvent(t *testing.T, id, eventType, object string) *Event {
	t.Helper()
	ev := &Event{ID: id, Type: eventType}
	ev.Data.Object = json.RawMessage(object)
	return ev
}

func TestClassifyUnknownEventType(t *testing.T) {
	c := NewClassifier(&fakeProvider{})

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "invoice.payment_succeeded", `{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.NoOp {
		t.Fatalf("expected unknown event type to be a no-op, got %+v", out)
	}
}

func TestClassifyCheckoutCompleted(t *testing.T) {
	provider := &fakeProvider{
		subs: map[string]*Subscription{
			"sub_1": {ID: "sub_1", Status: "active", ProductID: "prod_QCoParrentPrem01"},
		},
	}
	c := NewClassifier(provider)

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "checkout.session.completed", `{
		"customer": "cus_1",
		"customer_details": { "email": "parent@example.com" },
		"subscription": "sub_1",
		"mode": "subscription"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.NoOp {
		t.Fatalf("unexpected no-op: %s", out.Reason)
	}
	if out.Email != "parent@example.com" || out.Status != models.SubscriptionStatusActive {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.TierAction != TierSet || out.Tier != models.TierPremium {
		t.Fatalf("expected premium tier set, got %+v", out)
	}
}

func TestClassifyCheckoutCompleted_EmailFromCustomerLookup(t *testing.T) {
	provider := &fakeProvider{
		customers: map[string]*Customer{
			"cus_1": {ID: "cus_1", Email: "looked-up@example.com"},
		},
		subs: map[string]*Subscription{
			"sub_1": {ID: "sub_1", Status: "trialing", ProductID: "prod_QCoParrentMvp01"},
		},
	}
	c := NewClassifier(provider)

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "checkout.session.completed", `{
		"customer": "cus_1",
		"subscription": "sub_1"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Email != "looked-up@example.com" {
		t.Fatalf("expected email from customer lookup, got %q", out.Email)
	}
	if out.Status != models.SubscriptionStatusActive || out.Tier != models.TierMVP {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestClassifyCheckoutCompleted_NoOps(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		object   string
	}{
		{
			name:     "no subscription attached",
			provider: &fakeProvider{},
			object:   `{"customer":"cus_1","customer_email":"parent@example.com","mode":"payment"}`,
		},
		{
			name: "deleted customer",
			provider: &fakeProvider{
				customers: map[string]*Customer{"cus_1": {ID: "cus_1", Deleted: true}},
				subs:      map[string]*Subscription{"sub_1": {ID: "sub_1", Status: "active"}},
			},
			object: `{"customer":"cus_1","subscription":"sub_1"}`,
		},
		{
			name: "customer without email",
			provider: &fakeProvider{
				customers: map[string]*Customer{"cus_1": {ID: "cus_1"}},
				subs:      map[string]*Subscription{"sub_1": {ID: "sub_1", Status: "active"}},
			},
			object: `{"customer":"cus_1","subscription":"sub_1"}`,
		},
		{
			name: "subscription not active",
			provider: &fakeProvider{
				subs: map[string]*Subscription{"sub_1": {ID: "sub_1", Status: "incomplete"}},
			},
			object: `{"customer_email":"parent@example.com","subscription":"sub_1"}`,
		},
	}

	for _, tt := range tests {
		c := NewClassifier(tt.provider)
		out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "checkout.session.completed", tt.object))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if !out.NoOp || out.Reason == "" {
			t.Fatalf("%s: expected reasoned no-op, got %+v", tt.name, out)
		}
	}
}

func TestClassifyCheckoutCompleted_ProviderError(t *testing.T) {
	provider := &fakeProvider{subErr: errors.New("provider unavailable")}
	c := NewClassifier(provider)

	_, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "checkout.session.completed", `{
		"customer_email": "parent@example.com",
		"subscription": "sub_1"
	}`))
	if err == nil {
		t.Fatalf("expected provider failure to surface as error")
	}
}

func TestClassifySubscriptionUpdated(t *testing.T) {
	tests := []struct {
		status     string
		product    string
		wantStatus string
		wantAction TierAction
		wantTier   string
	}{
		{status: "active", product: "prod_QCoParrentPrem01", wantStatus: models.SubscriptionStatusActive, wantAction: TierSet, wantTier: models.TierPremium},
		{status: "trialing", product: "prod_QCoParrentLaw01", wantStatus: models.SubscriptionStatusActive, wantAction: TierSet, wantTier: models.TierLawOffice},
		{status: "active", product: "prod_Unmapped", wantStatus: models.SubscriptionStatusActive, wantAction: TierClear},
		{status: "past_due", wantStatus: models.SubscriptionStatusPastDue, wantAction: TierKeep},
		{status: "canceled", wantStatus: models.SubscriptionStatusCanceled, wantAction: TierClear},
		{status: "unpaid", wantStatus: models.SubscriptionStatusCanceled, wantAction: TierClear},
	}

	for _, tt := range tests {
		provider := &fakeProvider{
			customers: map[string]*Customer{"cus_1": {ID: "cus_1", Email: "parent@example.com"}},
		}
		c := NewClassifier(provider)

		object := `{"id":"sub_1","customer":"cus_1","status":"` + tt.status + `","items":{"data":[{"price":{"product":"` + tt.product + `"}}]}}`
		out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "customer.subscription.updated", object))
		if err != nil {
			t.Fatalf("status %q: unexpected error: %v", tt.status, err)
		}
		if out.NoOp {
			t.Fatalf("status %q: unexpected no-op: %s", tt.status, out.Reason)
		}
		if out.Status != tt.wantStatus || out.TierAction != tt.wantAction || out.Tier != tt.wantTier {
			t.Fatalf("status %q: got %+v, want status=%q action=%v tier=%q", tt.status, out, tt.wantStatus, tt.wantAction, tt.wantTier)
		}
	}
}

func TestClassifySubscriptionUpdated_UnhandledStatus(t *testing.T) {
	provider := &fakeProvider{
		customers: map[string]*Customer{"cus_1": {ID: "cus_1", Email: "parent@example.com"}},
	}
	c := NewClassifier(provider)

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "customer.subscription.updated",
		`{"id":"sub_1","customer":"cus_1","status":"incomplete_expired"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.NoOp {
		t.Fatalf("expected unhandled status to be a no-op, got %+v", out)
	}
}

func TestClassifySubscriptionDeleted(t *testing.T) {
	provider := &fakeProvider{
		customers: map[string]*Customer{"cus_1": {ID: "cus_1", Email: "parent@example.com"}},
	}
	c := NewClassifier(provider)

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "customer.subscription.deleted",
		`{"id":"sub_1","customer":"cus_1","status":"canceled"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != models.SubscriptionStatusCanceled || out.TierAction != TierClear {
		t.Fatalf("expected canceled with tier cleared, got %+v", out)
	}
}

func TestClassifyInvoicePaymentFailed(t *testing.T) {
	c := NewClassifier(&fakeProvider{})

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "invoice.payment_failed",
		`{"customer":"cus_1","customer_email":"parent@example.com","subscription":"sub_1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != models.SubscriptionStatusPastDue {
		t.Fatalf("expected past_due, got %+v", out)
	}
	if out.TierAction != TierKeep {
		t.Fatalf("expected tier to stay untouched on payment failure, got %+v", out)
	}
}

func TestClassifyInvoicePaymentFailed_NoCustomerReference(t *testing.T) {
	c := NewClassifier(&fakeProvider{})

	out, err := c.Classify(context.Background(), makeEvent(t, "evt_1", "invoice.payment_failed", `{"subscription":"sub_1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.NoOp {
		t.Fatalf("expected missing customer reference to be a no-op, got %+v", out)
	}
}
