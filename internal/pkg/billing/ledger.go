package billing

import (
	"context"
	"errors"
	"time"

	"github.com/coparrent/coparrent/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Gate enforces at-most-once processing of webhook events against the ledger.
//
// On any infra error the gate fails open: losing a legitimate payment event is
// worse than occasionally double-processing one, and the projector's
// overwrite-style writes make double-processing self-correcting.
type Gate struct {
	repo Repository
}

// NewGate creates an idempotency gate from an injected repository.
func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo}
}

// CheckIdempotency looks up the event and, if absent, atomically claims it
// before any side effect runs. Single attempt, no retries: the provider's own
// redelivery policy covers whole-request failures.
func (g *Gate) CheckIdempotency(ctx context.Context, eventID, eventType string) IdempotencyResult {
	_ = ctx
	if _, err := g.repo.GetProcessedEvent(eventID); err == nil {
		return IdempotencyResult{ShouldProcess: false, AlreadyProcessed: true}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("[Billing] ledger lookup failed for %s, failing open: %v", eventID, err)
		return IdempotencyResult{ShouldProcess: true, AlreadyProcessed: false}
	}

	now := time.Now()
	claimed, err := g.repo.ClaimEvent(&models.ProcessedEvent{
		EventID:     eventID,
		EventType:   eventType,
		Status:      models.EventStatusProcessing,
		ProcessedAt: &now,
	})
	if err != nil {
		log.Errorf("[Billing] ledger claim failed for %s, failing open: %v", eventID, err)
		return IdempotencyResult{ShouldProcess: true, AlreadyProcessed: false}
	}
	if !claimed {
		// A concurrent claimant won the insert race.
		return IdempotencyResult{ShouldProcess: false, AlreadyProcessed: true}
	}
	return IdempotencyResult{ShouldProcess: true, AlreadyProcessed: false}
}

// MarkEventProcessed finalizes a claimed event. Best-effort: the side effect
// has already committed, so failures here are logged, never surfaced.
func (g *Gate) MarkEventProcessed(ctx context.Context, eventID, customerEmail, metadata string) {
	_ = ctx
	if err := g.repo.MarkEventProcessed(eventID, customerEmail, metadata); err != nil {
		log.Errorf("[Billing] failed to mark event %s processed: %v", eventID, err)
	}
}

// MarkEventFailed records a terminal processing failure. Best-effort for the
// same reason as MarkEventProcessed.
func (g *Gate) MarkEventFailed(ctx context.Context, eventID, errMsg string) {
	_ = ctx
	if err := g.repo.MarkEventFailed(eventID, errMsg); err != nil {
		log.Errorf("[Billing] failed to mark event %s failed: %v", eventID, err)
	}
}
