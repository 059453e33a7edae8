package handlers

import (
	"errors"
	"net/http"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/calls"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/usage"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary      Get Client
// @Description  Returns the client record for the dashboard, resolved by contact email.
// @Tags         Client
// @Produce      json
// @Param        email query string true "Client contact email"
// @Success      200  {object}  handlers.RespClient
// @Router       /api/v1/client [get]
func ApiGetClient(svc *clients.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing email"))
			return
		}
		client, err := svc.GetByEmail(c.Request.Context(), email)
		if errors.Is(err, clients.ErrNotFound) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "client not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(client))
	}
}

// @Summary      Start Checkout
// @Description  Opens a subscription checkout session for a plan.
// @Tags         Client
// @Accept       json
// @Produce      json
// @Param        request body clients.CheckoutRequest true "Checkout request"
// @Success      200  {object}  handlers.RespCheckout
// @Router       /api/v1/checkout [post]
func ApiStartCheckout(svc *clients.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req clients.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.StartCheckout(c.Request.Context(), &req)
		if err != nil {
			logctx.FromCtx(c, log).Errorw("checkout_failed", "error", err.Error())
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterClientRoutes(r gin.IRouter, clientSvc *clients.Service, callSvc *calls.Service, usageSvc *usage.Service, log *zap.SugaredLogger) {
	r.GET("/client", ApiGetClient(clientSvc))
	r.GET("/calls", ApiListCalls(callSvc, clientSvc))
	r.GET("/usage", ApiGetUsage(usageSvc, clientSvc))
	r.POST("/checkout", ApiStartCheckout(clientSvc, log))
}
