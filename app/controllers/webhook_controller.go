package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/coparrent/coparrent/internal/pkg/billing"
	"github.com/coparrent/coparrent/internal/pkg/database"
	"github.com/coparrent/coparrent/internal/pkg/env"
	metrics "github.com/coparrent/coparrent/internal/pkg/metrics/counter"
)

// HandleStripeWebhook receives provider webhook deliveries.
//
// Response contract: 400 only when the signature is invalid or the payload
// cannot be parsed. Everything after verification answers 200 so the provider
// does not retry-storm on data problems that a redelivery cannot fix.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	if !billing.VerifyStripeWebhookSignature(rawBody, signature, secret) {
		log.Warn("[Webhook] rejected delivery with invalid signature")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := billing.ParseEvent(rawBody)
	if err != nil {
		log.Warnf("[Webhook] rejected unparseable delivery: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result := svc.ProcessEvent(ctx, event)
	switch {
	case result.Duplicate:
		_ = metrics.AddDuplicate(event.Type)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	case result.Ignored:
		_ = metrics.AddIgnored(event.Type)
	case result.Failed:
		// Swallowed per the response contract; the ledger row carries the error.
		_ = metrics.AddFailed(event.Type)
	default:
		_ = metrics.AddProcessed(event.Type)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
