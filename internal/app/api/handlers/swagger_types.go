package handlers

import (
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/auditlog"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/clients"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/leads"
	"github.com/ronsystem/fcpdigital-backend/internal/app/service/provisioning"
	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespClient wraps a client record in the standard envelope.
type RespClient struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Client            `json:"data"`
}

// RespCheckout wraps a checkout session in the standard envelope.
type RespCheckout struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    clients.CheckoutResponse `json:"data"`
}

// RespListCalls wraps a call listing in the standard envelope.
type RespListCalls struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListCallsResponse        `json:"data"`
}

// RespUsage wraps a usage summary in the standard envelope.
type RespUsage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    UsageResponse            `json:"data"`
}

// RespScanClients wraps an admin client scan in the standard envelope.
type RespScanClients struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    clients.ScanResponse     `json:"data"`
}

// RespClientOverview wraps the admin overview in the standard envelope.
type RespClientOverview struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    clients.Overview         `json:"data"`
}

// RespScanLeads wraps an admin lead scan in the standard envelope.
type RespScanLeads struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    leads.ScanResponse       `json:"data"`
}

// RespScanAuditLog wraps an admin audit log scan in the standard envelope.
type RespScanAuditLog struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    auditlog.ScanResponse    `json:"data"`
}

// RespScanWebhookEvents wraps an admin webhook ledger scan in the standard envelope.
type RespScanWebhookEvents struct {
	Code    response.APIResponseCode      `json:"code"`
	Message string                        `json:"message"`
	Data    provisioning.LedgerScanResponse `json:"data"`
}
