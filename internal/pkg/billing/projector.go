package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrProfileNotFound is returned when no profile row matches the customer
// email resolved from a provider event.
var ErrProfileNotFound = errors.New("no profile matches customer email")

// Projector owns all writes to the canonical subscription state on profiles.
// Writes are unconditional overwrites; last writer wins.
type Projector struct {
	repo Repository
}

// NewProjector creates a subscription projector from an injected repository.
func NewProjector(repo Repository) *Projector {
	return &Projector{repo: repo}
}

// Apply writes the derived (status, tier) pair to the profile matching email.
// Email is the join key between provider customers and local profiles.
func (p *Projector) Apply(ctx context.Context, email, status string, action TierAction, tier string) error {
	_ = ctx
	addr := strings.ToLower(strings.TrimSpace(email))
	if addr == "" {
		return errors.New("customer email is required")
	}
	if strings.TrimSpace(status) == "" {
		return errors.New("subscription status is required")
	}

	fields := map[string]interface{}{
		"subscription_status": status,
	}
	switch action {
	case TierSet:
		// An unknown tier resolves to NULL rather than persisting junk.
		if t := normalizeTier(tier); t != "" {
			fields["subscription_tier"] = t
		} else {
			fields["subscription_tier"] = nil
		}
	case TierClear:
		fields["subscription_tier"] = nil
	}

	affected, err := p.repo.UpdateSubscriptionByEmail(addr, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, addr)
	}
	return nil
}
