package billing

import (
	"context"
	"encoding/json"

	"github.com/coparrent/coparrent/internal/pkg/mail"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Service orchestrates a single webhook event through the idempotency gate,
// the classifier, the projector and the notification side-channel.
type Service struct {
	gate       *Gate
	classifier *Classifier
	projector  *Projector
	notifier   *Notifier
}

// NewService assembles a billing service from injected components.
func NewService(gate *Gate, classifier *Classifier, projector *Projector, notifier *Notifier) *Service {
	return &Service{
		gate:       gate,
		classifier: classifier,
		projector:  projector,
		notifier:   notifier,
	}
}

// NewServiceFromDB wires the default production components onto a GORM handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	repo := NewRepository(db)
	return NewService(
		NewGate(repo),
		NewClassifier(NewStripeClientFromEnv()),
		NewProjector(repo),
		NewNotifier(mail.NewClientFromEnv()),
	)
}

// ProcessResult summarizes how an event journey ended. Exactly one of the
// booleans is set for non-success outcomes; all false means fully processed.
type ProcessResult struct {
	Duplicate bool
	Ignored   bool
	Failed    bool
	Reason    string
}

// ProcessEvent runs the event state machine:
// received -> (new | duplicate) -> processing -> classified -> projected ->
// notified (best-effort) -> processed | failed.
// The caller has already verified the payload signature; every failure past
// this point is absorbed into the result, never raised.
func (s *Service) ProcessEvent(ctx context.Context, ev *Event) ProcessResult {
	idem := s.gate.CheckIdempotency(ctx, ev.ID, ev.Type)
	if !idem.ShouldProcess {
		log.Infof("[Billing] event %s already processed, skipping", ev.ID)
		return ProcessResult{Duplicate: true}
	}

	outcome, err := s.classifier.Classify(ctx, ev)
	if err != nil {
		log.Errorf("[Billing] classification failed for event %s: %v", ev.ID, err)
		s.gate.MarkEventFailed(ctx, ev.ID, err.Error())
		return ProcessResult{Failed: true, Reason: err.Error()}
	}
	if outcome.NoOp {
		log.Infof("[Billing] event %s is a no-op: %s", ev.ID, outcome.Reason)
		s.gate.MarkEventProcessed(ctx, ev.ID, "", noOpMetadata(outcome.Reason))
		return ProcessResult{Ignored: true, Reason: outcome.Reason}
	}

	if err := s.projector.Apply(ctx, outcome.Email, outcome.Status, outcome.TierAction, outcome.Tier); err != nil {
		log.Errorf("[Billing] projection failed for event %s: %v", ev.ID, err)
		s.gate.MarkEventFailed(ctx, ev.ID, err.Error())
		return ProcessResult{Failed: true, Reason: err.Error()}
	}

	// Projection has committed; from here on nothing may fail the event.
	s.notifier.NotifySubscriptionChange(ctx, outcome.Email, outcome.Status, outcome.Tier)

	s.gate.MarkEventProcessed(ctx, ev.ID, outcome.Email, outcomeMetadata(outcome))
	return ProcessResult{}
}

func noOpMetadata(reason string) string {
	data, _ := json.Marshal(map[string]string{"no_op": reason})
	return string(data)
}

func outcomeMetadata(out Outcome) string {
	meta := map[string]string{"status": out.Status}
	switch out.TierAction {
	case TierSet:
		meta["tier"] = out.Tier
	case TierClear:
		meta["tier"] = ""
	}
	data, _ := json.Marshal(meta)
	return string(data)
}
