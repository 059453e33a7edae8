package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/calls"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary      Call Completed Webhook
// @Description  Receives call data from the voice assistant after each call ends.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body calls.CallCompletedRequest true "Call end payload"
// @Success      200  {object}  calls.CallCompletedResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/calls/webhook [post]
// ApiCallCompletedWebhook is an external webhook like the Stripe one: plain
// status codes, no internal envelope.
func ApiCallCompletedWebhook(svc *calls.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req calls.CallCompletedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload structure"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.HandleCallCompleted(c.Request.Context(), &req)
		switch {
		case errors.Is(err, calls.ErrAssistantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found for this assistant"})
		case err != nil:
			logctx.FromCtx(c, log).Errorw("webhook_call_handle_error", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		default:
			c.JSON(http.StatusOK, res)
		}
	}
}

type ListCallsResponse struct {
	Calls []CallItem       `json:"calls"`
	Stats *calls.CallStats `json:"stats"`
	Total int              `json:"total"`
}

type CallItem struct {
	ID              string  `json:"id"`
	CallerName      *string `json:"caller_name"`
	CallerPhone     *string `json:"caller_phone"`
	ServiceNeeded   *string `json:"service_needed"`
	Urgency         *string `json:"urgency"`
	DurationSeconds int64   `json:"duration_seconds"`
	RecordingURL    *string `json:"recording_url"`
	Transcript      *string `json:"transcript"`
	CreatedAt       string  `json:"created_at"`
}

// @Summary      List Recent Calls
// @Description  Returns a client's calls, newest first, with aggregate stats.
// @Tags         Client
// @Produce      json
// @Param        email query string true "Client contact email"
// @Param        limit query int false "Max calls to return (default 50)"
// @Success      200  {object}  handlers.RespListCalls
// @Router       /api/v1/calls [get]
func ApiListCalls(callSvc *calls.Service, clientSvc *clients.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing email"))
			return
		}
		client, err := clientSvc.GetByEmail(c.Request.Context(), email)
		if errors.Is(err, clients.ErrNotFound) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "client not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		items, err := callSvc.Recent(c.Request.Context(), client.ID, limit)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		stats, err := callSvc.Stats(c.Request.Context(), client.ID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		out := make([]CallItem, 0, len(items))
		for _, it := range items {
			var urgency *string
			if it.Urgency != nil {
				u := string(*it.Urgency)
				urgency = &u
			}
			out = append(out, CallItem{
				ID:              it.ID,
				CallerName:      it.CallerName,
				CallerPhone:     it.CallerPhone,
				ServiceNeeded:   it.ServiceNeeded,
				Urgency:         urgency,
				DurationSeconds: it.DurationSeconds,
				RecordingURL:    it.RecordingURL,
				Transcript:      it.Transcript,
				CreatedAt:       it.CreatedAt.Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, response.OKT(&ListCallsResponse{Calls: out, Stats: stats, Total: len(out)}))
	}
}

func RegisterCallWebhookRoutes(r gin.IRouter, svc *calls.Service, log *zap.SugaredLogger) {
	r.POST("/webhook", ApiCallCompletedWebhook(svc, log))
}
