package billing

import "testing"

func TestParseEventKind(t *testing.T) {
	tests := []struct {
		in   string
		want EventKind
	}{
		{in: "checkout.session.completed", want: EventCheckoutCompleted},
		{in: "customer.subscription.updated", want: EventSubscriptionUpdated},
		{in: "customer.subscription.deleted", want: EventSubscriptionDeleted},
		{in: "invoice.payment_failed", want: EventInvoicePaymentFailed},
		{in: "invoice.payment_succeeded", want: EventUnknown},
		{in: "Checkout.Session.Completed", want: EventUnknown},
		{in: "", want: EventUnknown},
	}

	for _, tt := range tests {
		if got := ParseEventKind(tt.in); got != tt.want {
			t.Fatalf("ParseEventKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"data": { "object": { "customer": "cus_1" } }
	}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_123" || ev.Type != "checkout.session.completed" {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.ID, ev.Type)
	}
	if len(ev.Data.Object) == 0 {
		t.Fatalf("expected raw data object to be kept")
	}
}

func TestParseEvent_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{"id":`},
		{name: "missing id", payload: `{"type":"invoice.payment_failed"}`},
		{name: "missing type", payload: `{"id":"evt_1"}`},
		{name: "blank id", payload: `{"id":"  ","type":"invoice.payment_failed"}`},
	}

	for _, tt := range tests {
		if _, err := ParseEvent([]byte(tt.payload)); err == nil {
			t.Fatalf("%s: expected parse error", tt.name)
		}
	}
}
