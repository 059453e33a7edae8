package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/usage"
	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type UsageResponse struct {
	Stats       *usage.Stats            `json:"stats"`
	MonthlyData []*models.UsageTracking `json:"monthly_data"`
	Limit       int64                   `json:"limit"`
	Used        int64                   `json:"used"`
}

// @Summary      Get Usage
// @Description  Returns today's and the current month's usage for a client.
// @Tags         Client
// @Produce      json
// @Param        email query string true "Client contact email"
// @Success      200  {object}  handlers.RespUsage
// @Router       /api/v1/usage [get]
func ApiGetUsage(usageSvc *usage.Service, clientSvc *clients.Service) gin.HandlerFunc {
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

		stats, err := usageSvc.GetStats(c.Request.Context(), client.ID, client.CallMinutesLimit)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		now := time.Now().UTC()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthly, err := usageSvc.Range(c.Request.Context(), client.ID, monthStart, now)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.OKT(&UsageResponse{
			Stats:       stats,
			MonthlyData: monthly,
			Limit:       client.CallMinutesLimit,
			Used:        client.CallMinutesUsed,
		}))
	}
}
