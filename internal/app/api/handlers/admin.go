package handlers

import (
	"errors"
	"net/http"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/auditlog"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/leads"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/provisioning"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary      List Clients (Admin)
// @Description  Paginated, filterable list of all clients.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body clients.ScanRequest true "Scan request with filters and pagination"
// @Success      200  {object}  handlers.RespScanClients
// @Router       /api/v1/admin/list_clients [post]
func ApiListClients(svc *clients.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req clients.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Client Overview (Admin)
// @Description  Headline client counts and MRR.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespClientOverview
// @Router       /api/v1/admin/get_client_overview [post]
func ApiGetClientOverview(svc *clients.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.GetOverview(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Leads (Admin)
// @Description  Paginated, filterable list of leads, highest score first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body leads.ScanRequest true "Scan request with filters and pagination"
// @Success      200  {object}  handlers.RespScanLeads
// @Router       /api/v1/admin/list_leads [post]
func ApiListLeads(svc *leads.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req leads.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Audit Log (Admin)
// @Description  Paginated, filterable audit trail, newest first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body auditlog.ScanRequest true "Scan request with filters and pagination"
// @Success      200  {object}  handlers.RespScanAuditLog
// @Router       /api/v1/admin/list_audit_log [post]
func ApiListAuditLog(svc *auditlog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auditlog.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Webhook Events (Admin)
// @Description  Paginated, filterable view of the processed webhook ledger.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body provisioning.LedgerScanRequest true "Scan request with filters and pagination"
// @Success      200  {object}  handlers.RespScanWebhookEvents
// @Router       /api/v1/admin/list_webhook_events [post]
func ApiListWebhookEvents(ledger *provisioning.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req provisioning.LedgerScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := ledger.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Reprovision Client (Admin)
// @Description  Re-runs the provisioning hand-off for a client stuck in pending_provisioning.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReprovisionRequest true "Client to reprovision"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/reprovision_client [post]
func ApiReprovisionClient(bridge *provisioning.Bridge, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReprovisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.ClientID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing client_id"))
			return
		}
		res, err := bridge.ManualReprovision(c.Request.Context(), req.ClientID)
		if errors.Is(err, provisioning.ErrClientNotFound) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "client not found"))
			return
		}
		if err != nil {
			logctx.FromCtx(c, log).Errorw("reprovision_failed", "client_id", req.ClientID, "error", err.Error())
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type ReprovisionRequest struct {
	ClientID string `json:"client_id"`
}

func RegisterAdminRoutes(r gin.IRouter, clientSvc *clients.Service, leadSvc *leads.Service, audit *auditlog.Service, ledger *provisioning.Ledger, bridge *provisioning.Bridge, log *zap.SugaredLogger) {
	r.POST("/list_clients", ApiListClients(clientSvc))
	r.POST("/get_client_overview", ApiGetClientOverview(clientSvc))
	r.POST("/list_leads", ApiListLeads(leadSvc))
	r.POST("/list_audit_log", ApiListAuditLog(audit))
	r.POST("/list_webhook_events", ApiListWebhookEvents(ledger))
	r.POST("/reprovision_client", ApiReprovisionClient(bridge, log))
}
