package ronos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	cfgpkg "github.com/ronsystem/fcpdigital-backend/pkg/config"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"go.uber.org/zap"
)

// maxErrorExcerpt caps how much of an error response body is carried into
// logs and failure metadata.
const maxErrorExcerpt = 512

// ProvisionRequest is the payload handed to the RonOS client_onboarder. The
// onboarder is idempotent on ClientID, so redelivery is safe.
type ProvisionRequest struct {
	EventType            string         `json:"event_type"`
	ClientID             string         `json:"client_id"`
	BusinessName         string         `json:"business_name"`
	ContactEmail         string         `json:"contact_email"`
	ContactPhone         string         `json:"contact_phone"`
	Plan                 types.PlanTier `json:"plan"`
	StripeCustomerID     string         `json:"stripe_customer_id"`
	StripeSubscriptionID string         `json:"stripe_subscription_id"`
}

// Client calls the external provisioning system over HTTP. Each call is
// bounded by the configured timeout so a hung onboarder cannot stall the
// webhook handler indefinitely.
type Client struct {
	url  string
	http *http.Client
	log  *zap.SugaredLogger
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		url:  cfg.Provisioner.WebhookURL,
		http: &http.Client{Timeout: cfg.Provisioner.Timeout()},
		log:  log,
	}
}

// Provision performs one outbound attempt. Only an explicit 2xx from the
// onboarder counts as success; anything else (including transport errors)
// is returned as an error for the caller's retry loop.
func (c *Client) Provision(ctx context.Context, req *ProvisionRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal provision request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build provision request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("provisioner unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
	return fmt.Errorf("provisioner returned %d: %s", resp.StatusCode, string(excerpt))
}
