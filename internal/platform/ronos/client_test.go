package ronos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cfgpkg "github.com/ronsystem/fcpdigital-backend/pkg/config"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, srvURL string, timeout time.Duration) *Client {
	t.Helper()
	cfg := &cfgpkg.Config{}
	cfg.Provisioner.WebhookURL = srvURL
	cfg.Provisioner.TimeoutSeconds = int(timeout / time.Second)
	c := New(cfg, zap.NewNop().Sugar())
	c.http.Timeout = timeout
	return c
}

func TestProvision_SuccessPostsPayload(t *testing.T) {
	var got ProvisionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2*time.Second)
	err := c.Provision(context.Background(), &ProvisionRequest{
		EventType:            "customer.subscription.created",
		ClientID:             "client-1",
		BusinessName:         "Acme Plumbing",
		ContactEmail:         "owner@acme.test",
		Plan:                 types.PlanTierScale,
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_456",
	})
	require.NoError(t, err)
	require.Equal(t, "client-1", got.ClientID)
	require.Equal(t, types.PlanTierScale, got.Plan)
}

func TestProvision_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2*time.Second)
	err := c.Provision(context.Background(), &ProvisionRequest{ClientID: "client-1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
	require.Contains(t, err.Error(), "upstream exploded")
}

func TestProvision_TimeoutIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, time.Second)
	c.http.Timeout = 50 * time.Millisecond
	err := c.Provision(context.Background(), &ProvisionRequest{ClientID: "client-1"})
	require.Error(t, err)
}
