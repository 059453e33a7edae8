package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	RegisterHealthRoutes(r.Group("/"))
	RegisterStripeWebhookRoutes(r.Group("/api/webhooks"), nil, nil)
	RegisterCallWebhookRoutes(r.Group("/api/calls"), nil, nil)
	RegisterClientRoutes(r.Group("/api/v1"), nil, nil, nil, nil)
	RegisterAdminRoutes(r.Group("/api/v1/admin"), nil, nil, nil, nil, nil, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("GET /healthz"))
	require.True(t, contains("POST /api/webhooks/stripe"))
	require.True(t, contains("POST /api/calls/webhook"))
	require.True(t, contains("GET /api/v1/client"))
	require.True(t, contains("GET /api/v1/calls"))
	require.True(t, contains("GET /api/v1/usage"))
	require.True(t, contains("POST /api/v1/checkout"))
	require.True(t, contains("POST /api/v1/admin/list_clients"))
	require.True(t, contains("POST /api/v1/admin/get_client_overview"))
	require.True(t, contains("POST /api/v1/admin/list_leads"))
	require.True(t, contains("POST /api/v1/admin/list_audit_log"))
	require.True(t, contains("POST /api/v1/admin/list_webhook_events"))
	require.True(t, contains("POST /api/v1/admin/reprovision_client"))
}
