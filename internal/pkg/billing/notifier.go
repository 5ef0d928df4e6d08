package billing

import (
	"context"
	"fmt"

	"github.com/coparrent/coparrent/app/models"
	"github.com/coparrent/coparrent/internal/pkg/mail"
)

// Notifier turns projected subscription changes into transactional emails.
// Strictly best-effort: it runs after the projection commits and its failures
// never roll back or retry the projection.
type Notifier struct {
	sender mail.Sender
}

// NewNotifier creates a notifier on top of an email sender.
func NewNotifier(sender mail.Sender) *Notifier {
	return &Notifier{sender: sender}
}

// NotifySubscriptionChange sends the email matching the new canonical state.
func (n *Notifier) NotifySubscriptionChange(ctx context.Context, email, status, tier string) {
	if n == nil || n.sender == nil {
		return
	}

	var msg mail.Message
	msg.To = email

	switch status {
	case models.SubscriptionStatusActive:
		msg.Category = mail.CategoryWelcome
		msg.Subject = "Your CoParrent subscription is active"
		msg.HTML = fmt.Sprintf(
			"<p>Welcome! Your CoParrent subscription is now active%s.</p>"+
				"<p>Shared calendars, messaging and expense tracking are ready for your family.</p>",
			tierSuffix(tier),
		)
	case models.SubscriptionStatusPastDue:
		msg.Category = mail.CategoryUpdate
		msg.Subject = "Payment issue on your CoParrent subscription"
		msg.HTML = "<p>We could not process your latest payment. " +
			"Please update your payment method to keep your subscription active.</p>"
	case models.SubscriptionStatusCanceled:
		msg.Category = mail.CategoryCancellation
		msg.Subject = "Your CoParrent subscription was canceled"
		msg.HTML = "<p>Your subscription has been canceled. " +
			"Your data stays available on the free plan, and you can resubscribe anytime.</p>"
	default:
		return
	}

	n.sender.Send(ctx, msg)
}

func tierSuffix(tier string) string {
	if tier == "" {
		return ""
	}
	return fmt.Sprintf(" on the %s plan", tier)
}
