package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"signsync/internal/logging"
	"signsync/internal/service"
)

// webhookResponse is the body the e-signature provider sees. Apart from the
// method gate and the signature gate, the endpoint always answers 200 so the
// provider's retry policy cannot amplify failures retrying will not fix.
type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, webhookSvc service.WebhookService, statusSvc service.StatusService, retentionSvc service.RetentionService, signingSecret string) {
	// Registering POST only makes Fiber answer every other method with 405.
	app.Post("/webhooks/docuseal", ReceiveWebhook(webhookSvc, signingSecret))

	app.Get("/statuses", ListStatuses(statusSvc))

	app.Post("/internal/maintenance/purge-events", PurgeEvents(retentionSvc))

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
}

// ReceiveWebhook handles inbound e-signature provider events.
func ReceiveWebhook(svc service.WebhookService, signingSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		signature := c.Get(SignatureHeader)

		if signingSecret != "" {
			if !VerifySignature(signingSecret, body, signature) {
				logging.Warn("webhook_signature_rejected", map[string]any{
					"request_id":       requestIDFromCtx(c),
					"signature_header": signature != "",
				})
				return writeError(c, fiber.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed")
			}
		} else if signature != "" {
			// No secret configured yet; surface that signed deliveries are
			// arriving unverified.
			logging.Info("webhook_signature_unverified", map[string]any{
				"request_id": requestIDFromCtx(c),
			})
		}

		outcome, err := svc.Process(c.UserContext(), body)
		if err != nil {
			// Deliberate 200: a storage fault is not something the provider
			// can fix by retrying, and non-2xx responses trigger its retry
			// storm. The failure is fully logged for operational follow-up.
			logging.Error("webhook_processing_failed", err, map[string]any{
				"request_id": requestIDFromCtx(c),
				"outcome":    string(outcome),
			})
			return c.JSON(webhookResponse{Success: false, Error: "internal error"})
		}

		return c.JSON(webhookResponse{Success: true, Message: string(outcome)})
	}
}

// ListStatuses returns paginated document status rows with optional
// user/template filters.
func ListStatuses(svc service.StatusService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), c.Query("user_id"), c.Query("template_id"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// PurgeEvents runs one retention sweep over raw webhook events.
func PurgeEvents(svc service.RetentionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deleted, err := svc.PurgeExpired(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"deleted": deleted})
	}
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
