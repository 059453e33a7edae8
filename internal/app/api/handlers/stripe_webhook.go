package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/provisioning"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/stripegw"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe webhook bodies are small; anything past this is not a real event.
const maxWebhookBody = 1 << 20

// @Summary      Stripe Webhook
// @Description  Handles Stripe subscription lifecycle events. The body must be the raw event exactly as Stripe signed it.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature header"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  map[string]string
// @Router       /api/webhooks/stripe [post]
// ApiStripeWebhook feeds raw deliveries into the provisioning bridge.
// Status codes here are Stripe's contract, not the internal envelope:
// 2xx acknowledges, 4xx rejects permanently, 5xx triggers redelivery.
func ApiStripeWebhook(bridge *provisioning.Bridge, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
			return
		}

		res, err := bridge.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		switch {
		case errors.Is(err, provisioning.ErrInvalidSignature):
			logctx.FromCtx(c, log).Warnw("webhook_stripe_bad_signature")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		case errors.Is(err, stripegw.ErrCustomerDeleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer no longer exists"})
		case err != nil:
			logctx.FromCtx(c, log).Errorw("webhook_stripe_handle_error", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		default:
			logctx.FromCtx(c, log).Infow("webhook_stripe_handled",
				"event_id", res.EventID,
				"event_type", res.EventType,
				"duplicate", res.Duplicate,
				"ignored", res.Ignored,
			)
			c.JSON(http.StatusOK, gin.H{"received": true})
		}
	}
}

func RegisterStripeWebhookRoutes(r gin.IRouter, bridge *provisioning.Bridge, log *zap.SugaredLogger) {
	r.POST("/stripe", ApiStripeWebhook(bridge, log))
}
