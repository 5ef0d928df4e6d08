package billing

import (
	"context"
	"strings"
	"testing"

	"github.com/coparrent/coparrent/app/models"
	"github.com/coparrent/coparrent/internal/pkg/mail"
)

func TestNotifySubscriptionChange(t *testing.T) {
	tests := []struct {
		status       string
		tier         string
		wantCategory string
		wantInHTML   string
	}{
		{status: models.SubscriptionStatusActive, tier: models.TierPremium, wantCategory: mail.CategoryWelcome, wantInHTML: "on the premium plan"},
		{status: models.SubscriptionStatusActive, wantCategory: mail.CategoryWelcome, wantInHTML: "now active."},
		{status: models.SubscriptionStatusPastDue, wantCategory: mail.CategoryUpdate, wantInHTML: "update your payment method"},
		{status: models.SubscriptionStatusCanceled, wantCategory: mail.CategoryCancellation, wantInHTML: "canceled"},
	}

	for _, tt := range tests {
		sender := &fakeSender{}
		n := NewNotifier(sender)
		n.NotifySubscriptionChange(context.Background(), "parent@example.com", tt.status, tt.tier)

		msgs := sender.sent()
		if len(msgs) != 1 {
			t.Fatalf("status %q: expected one email, got %d", tt.status, len(msgs))
		}
		msg := msgs[0]
		if msg.To != "parent@example.com" || msg.Category != tt.wantCategory {
			t.Fatalf("status %q: unexpected message %+v", tt.status, msg)
		}
		if !strings.Contains(msg.HTML, tt.wantInHTML) {
			t.Fatalf("status %q: expected HTML to contain %q, got %q", tt.status, tt.wantInHTML, msg.HTML)
		}
	}
}

func TestNotifySubscriptionChangeUnknownStatus(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender)

	n.NotifySubscriptionChange(context.Background(), "parent@example.com", "incomplete", "")
	if len(sender.sent()) != 0 {
		t.Fatalf("expected no email for unmapped status")
	}
}

func TestNotifierNilSafety(t *testing.T) {
	var n *Notifier
	// Must not panic.
	n.NotifySubscriptionChange(context.Background(), "parent@example.com", models.SubscriptionStatusActive, "")

	NewNotifier(nil).NotifySubscriptionChange(context.Background(), "parent@example.com", models.SubscriptionStatusActive, "")
}
