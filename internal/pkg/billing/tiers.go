package billing

import (
	"strings"

	"github.com/coparrent/coparrent/app/models"
)

// productTiers is the static mapping from provider product IDs to internal
// subscription tiers. Unknown products resolve to no tier rather than an
// error so a newly added product never breaks webhook processing.
var productTiers = map[string]string{
	"prod_QCoParrentPrem01": models.TierPremium,
	"prod_QCoParrentMvp01":  models.TierMVP,
	"prod_QCoParrentLaw01":  models.TierLawOffice,
}

// TierForProduct resolves a provider product ID to an internal tier.
func TierForProduct(productID string) (string, bool) {
	tier, ok := productTiers[strings.TrimSpace(productID)]
	return tier, ok
}

func normalizeTier(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case models.TierPremium:
		return models.TierPremium
	case models.TierMVP:
		return models.TierMVP
	case models.TierLawOffice:
		return models.TierLawOffice
	default:
		return ""
	}
}

// isActiveProviderStatus reports whether a provider subscription status maps
// to the canonical "active" state. Trialing subscriptions are treated as
// active for entitlement purposes.
func isActiveProviderStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing":
		return true
	default:
		return false
	}
}
