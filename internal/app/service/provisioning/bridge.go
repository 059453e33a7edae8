package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/auditlog"
	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/ronos"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/stripegw"
	"github.com/ronsystem/fcpdigital-backend/pkg/config"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/tool"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrClientNotFound is returned by the store when no client matches.
	ErrClientNotFound = errors.New("client not found")
	// ErrDuplicateEvent is returned by the store when the ledger already holds
	// the event id. The unique constraint makes a racing duplicate insert a
	// detectable conflict instead of a silent double-provision.
	ErrDuplicateEvent = errors.New("webhook event already processed")
)

// PaymentsGateway is the slice of the Stripe gateway the bridge needs.
type PaymentsGateway interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)
}

// Provisioner hands a client off to the external onboarding system.
type Provisioner interface {
	Provision(ctx context.Context, req *ronos.ProvisionRequest) error
}

// AuditRecorder writes best-effort audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// Store is the persistence capability behind the bridge.
type Store interface {
	HasProcessedEvent(ctx context.Context, stripeEventID string) (bool, error)
	SaveLedgerEntry(ctx context.Context, entry *models.WebhookEvent) error
	CreateClient(ctx context.Context, client *models.Client) error
	SetClientStatus(ctx context.Context, clientID string, status types.ClientStatus) error
	MarkClientPendingProvisioning(ctx context.Context, clientID, reason string, at time.Time) error
	CancelClientByCustomerID(ctx context.Context, customerID string) (*models.Client, error)
	GetClient(ctx context.Context, clientID string) (*models.Client, error)
}

// Result describes how a webhook delivery was resolved.
type Result struct {
	EventID     string `json:"event_id"`
	EventType   string `json:"event_type"`
	CustomerID  string `json:"customer_id,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	Duplicate   bool   `json:"duplicate,omitempty"`
	Ignored     bool   `json:"ignored,omitempty"`
	Provisioned bool   `json:"provisioned,omitempty"`
}

// Bridge translates Stripe subscription lifecycle events into client records
// and provisioning hand-offs. A provisioning failure after all retries is not
// an error for the request: the payment was valid, so the client is parked in
// pending_provisioning and the event is acknowledged to stop redelivery.
type Bridge struct {
	cfg         *config.Config
	store       Store
	payments    PaymentsGateway
	provisioner Provisioner
	audit       AuditRecorder
	log         *zap.SugaredLogger

	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration)
	now         func() time.Time
}

func NewBridge(cfg *config.Config, db *gorm.DB, gw *stripegw.Gateway, prov *ronos.Client, audit *auditlog.Service, log *zap.SugaredLogger) *Bridge {
	return newBridge(cfg, NewGormStore(db), gw, prov, audit, log)
}

func newBridge(cfg *config.Config, store Store, payments PaymentsGateway, provisioner Provisioner, audit AuditRecorder, log *zap.SugaredLogger) *Bridge {
	maxAttempts := cfg.Provisioner.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Bridge{
		cfg:         cfg,
		store:       store,
		payments:    payments,
		provisioner: provisioner,
		audit:       audit,
		log:         log,
		maxAttempts: maxAttempts,
		sleep:       sleepCtx,
		now:         time.Now,
	}
}

// HandleWebhook runs one inbound delivery through the signature verifier, the
// idempotency guard, and the orchestrator, in that order. The signature is
// checked against the raw bytes before anything else happens; a bad signature
// produces no side effects at all.
func (b *Bridge) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (*Result, error) {
	event, err := b.payments.ConstructEvent(payload, sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	log := logctx.FromCtx(ctx, b.log)
	res := &Result{EventID: event.ID, EventType: string(event.Type)}

	processed, err := b.store.HasProcessedEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check webhook ledger: %w", err)
	}
	if processed {
		log.Infow("webhook_already_processed", "event_id", event.ID)
		res.Duplicate = true
		webhookEventsTotal.WithLabelValues(res.EventType, "duplicate").Inc()
		return res, nil
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated:
		err = b.handleSubscriptionCreated(ctx, &event, res)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		err = b.handleSubscriptionDeleted(ctx, &event, res)
	default:
		log.Infow("webhook_ignored", "event_id", event.ID, "event_type", event.Type)
		res.Ignored = true
		webhookEventsTotal.WithLabelValues(res.EventType, "ignored").Inc()
		return res, nil
	}

	if err != nil {
		webhookEventsTotal.WithLabelValues(res.EventType, "error").Inc()
		return res, err
	}
	webhookEventsTotal.WithLabelValues(res.EventType, "handled").Inc()
	return res, nil
}

func (b *Bridge) handleSubscriptionCreated(ctx context.Context, event *stripe.Event, res *Result) error {
	log := logctx.FromCtx(ctx, b.log)

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription payload: %w", err)
	}
	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	res.CustomerID = customerID

	cust, err := b.payments.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, stripegw.ErrCustomerDeleted) {
			log.Errorw("webhook_customer_deleted", "event_id", event.ID, "customer_id", customerID)
			return err
		}
		return fmt.Errorf("failed to resolve customer %s: %w", customerID, err)
	}

	plan, fee := b.derivePlanAndFee(ctx, &sub)

	businessName := cust.Metadata["business_name"]
	if businessName == "" {
		businessName = cust.Email
	}
	client := &models.Client{
		ID:                   tool.GenerateUUIDV7(),
		BusinessName:         businessName,
		ContactEmail:         cust.Email,
		ContactPhone:         cust.Metadata["phone"],
		Plan:                 plan.ID,
		MonthlyFee:           fee,
		StripeCustomerID:     lo.ToPtr(customerID),
		StripeSubscriptionID: lo.ToPtr(sub.ID),
		Status:               types.ClientStatusProvisioning,
		CallMinutesLimit:     plan.MinutesLimit,
	}
	// A persistence failure here is fatal for the request: Stripe will
	// redeliver and the ledger has no entry yet, so the retry is safe.
	if err := b.store.CreateClient(ctx, client); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	res.ClientID = client.ID
	log.Infow("client_created", "client_id", client.ID, "plan", plan.ID, "customer_id", customerID)

	ok := b.provisionWithRetry(ctx, &ronos.ProvisionRequest{
		EventType:            string(event.Type),
		ClientID:             client.ID,
		BusinessName:         client.BusinessName,
		ContactEmail:         client.ContactEmail,
		ContactPhone:         client.ContactPhone,
		Plan:                 client.Plan,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
	})

	if ok {
		if err := b.store.SetClientStatus(ctx, client.ID, types.ClientStatusActive); err != nil {
			log.Errorw("client_activate_failed", "client_id", client.ID, "error", err.Error())
		}
		res.Provisioned = true
	} else {
		reason := fmt.Sprintf("provisioner unreachable after %d attempts", b.maxAttempts)
		if err := b.store.MarkClientPendingProvisioning(ctx, client.ID, reason, b.now()); err != nil {
			log.Errorw("client_mark_pending_failed", "client_id", client.ID, "error", err.Error())
		}
		log.Errorw("client_pending_provisioning", "client_id", client.ID, "reason", reason)
	}

	b.writeLedger(ctx, event, res, ok, map[string]any{
		"subscription_id":   sub.ID,
		"plan":              plan.ID,
		"provision_success": ok,
	})
	b.recordAudit(ctx, "provision_client", client.ID, ok, lo.Ternary(ok, "", "provisioner unreachable"))
	return nil
}

func (b *Bridge) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event, res *Result) error {
	log := logctx.FromCtx(ctx, b.log)

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription payload: %w", err)
	}
	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	res.CustomerID = customerID

	var cancelErr error
	client, err := b.store.CancelClientByCustomerID(ctx, customerID)
	switch {
	case errors.Is(err, ErrClientNotFound):
		// A deleted event for a customer we never provisioned: acknowledge
		// without mutating anything.
		log.Warnw("webhook_cancel_unknown_customer", "event_id", event.ID, "customer_id", customerID)
	case err != nil:
		cancelErr = err
		log.Errorw("client_cancel_failed", "customer_id", customerID, "error", err.Error())
	default:
		res.ClientID = client.ID
		log.Infow("client_cancelled", "client_id", client.ID, "customer_id", customerID)
	}

	meta := map[string]any{"subscription_id": sub.ID}
	if cancelErr != nil {
		meta["error"] = cancelErr.Error()
	}
	b.writeLedgerWithStatus(ctx, event, res, lo.Ternary(cancelErr != nil, types.WebhookEventStatusError, types.WebhookEventStatusSuccess), meta)
	if res.ClientID != "" {
		b.recordAudit(ctx, "cancel_client", res.ClientID, cancelErr == nil, lo.TernaryF(cancelErr != nil, func() string { return cancelErr.Error() }, func() string { return "" }))
	}
	return nil
}

// ManualReprovision re-runs the provisioning hand-off for a client parked in
// pending_provisioning. This is the operator-driven retry path; no scheduled
// sweep exists.
func (b *Bridge) ManualReprovision(ctx context.Context, clientID string) (*Result, error) {
	client, err := b.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.NeedsManualProvisioning() {
		return nil, fmt.Errorf("client %s is not pending provisioning (status %s)", clientID, client.Status)
	}

	res := &Result{ClientID: client.ID, CustomerID: lo.FromPtr(client.StripeCustomerID)}
	ok := b.provisionWithRetry(ctx, &ronos.ProvisionRequest{
		EventType:            "manual.reprovision",
		ClientID:             client.ID,
		BusinessName:         client.BusinessName,
		ContactEmail:         client.ContactEmail,
		ContactPhone:         client.ContactPhone,
		Plan:                 client.Plan,
		StripeCustomerID:     lo.FromPtr(client.StripeCustomerID),
		StripeSubscriptionID: lo.FromPtr(client.StripeSubscriptionID),
	})
	if ok {
		if err := b.store.SetClientStatus(ctx, client.ID, types.ClientStatusActive); err != nil {
			return nil, fmt.Errorf("failed to activate client: %w", err)
		}
		res.Provisioned = true
	} else {
		reason := fmt.Sprintf("provisioner unreachable after %d attempts", b.maxAttempts)
		if err := b.store.MarkClientPendingProvisioning(ctx, client.ID, reason, b.now()); err != nil {
			logctx.FromCtx(ctx, b.log).Errorw("client_mark_pending_failed", "client_id", client.ID, "error", err.Error())
		}
	}
	b.recordAudit(ctx, "reprovision_client", client.ID, ok, lo.Ternary(ok, "", "provisioner unreachable"))
	return res, nil
}

// provisionWithRetry makes up to maxAttempts bounded outbound calls with
// exponential backoff (1s, 2s, ...) between failed attempts.
func (b *Bridge) provisionWithRetry(ctx context.Context, req *ronos.ProvisionRequest) bool {
	log := logctx.FromCtx(ctx, b.log)
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		err := b.provisioner.Provision(ctx, req)
		if err == nil {
			provisionAttemptsTotal.WithLabelValues("success").Inc()
			log.Infow("provision_succeeded", "client_id", req.ClientID, "attempt", attempt)
			return true
		}
		provisionAttemptsTotal.WithLabelValues("failure").Inc()
		log.Warnw("provision_attempt_failed",
			"client_id", req.ClientID,
			"attempt", attempt,
			"max_attempts", b.maxAttempts,
			"error", err.Error(),
		)
		if attempt < b.maxAttempts {
			b.sleep(ctx, time.Duration(1<<(attempt-1))*time.Second)
		}
	}
	log.Errorw("provision_exhausted", "client_id", req.ClientID, "attempts", b.maxAttempts)
	return false
}

func (b *Bridge) derivePlanAndFee(ctx context.Context, sub *stripe.Subscription) (*types.Plan, float64) {
	var priceID string
	var unitAmount int64
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
		unitAmount = sub.Items.Data[0].Price.UnitAmount
	}

	plan, known := b.cfg.GetPlanByStripePriceID(priceID)
	if !known {
		logctx.FromCtx(ctx, b.log).Warnw("unknown_stripe_price_id", "price_id", priceID, "fallback_plan", plan.ID)
	}

	// The fee follows Stripe's charged amount so provider-side price changes
	// are reflected even when the local plan table is stale.
	fee := plan.PriceMonthly
	if unitAmount > 0 {
		fee = float64(unitAmount) / 100
	}
	return plan, fee
}

func (b *Bridge) writeLedger(ctx context.Context, event *stripe.Event, res *Result, provisioned bool, meta map[string]any) {
	status := types.WebhookEventStatusSuccess
	if !provisioned {
		status = types.WebhookEventStatusPendingRetry
	}
	b.writeLedgerWithStatus(ctx, event, res, status, meta)
}

func (b *Bridge) writeLedgerWithStatus(ctx context.Context, event *stripe.Event, res *Result, status types.WebhookEventStatus, meta map[string]any) {
	metaBytes, _ := json.Marshal(meta)
	entry := &models.WebhookEvent{
		StripeEventID: event.ID,
		EventType:     string(event.Type),
		CustomerID:    res.CustomerID,
		Status:        status,
		Metadata:      datatypes.JSON(metaBytes),
	}
	if res.ClientID != "" {
		entry.ClientID = lo.ToPtr(res.ClientID)
	}
	err := b.store.SaveLedgerEntry(ctx, entry)
	switch {
	case errors.Is(err, ErrDuplicateEvent):
		// A racing duplicate delivery won the insert; this delivery's work is
		// done either way.
		logctx.FromCtx(ctx, b.log).Infow("webhook_ledger_duplicate", "event_id", event.ID)
	case err != nil:
		// The event itself was handled; failing the request now would only
		// trigger redelivery of work already done.
		logctx.FromCtx(ctx, b.log).Errorw("webhook_ledger_write_failed", "event_id", event.ID, "error", err.Error())
	}
}

func (b *Bridge) recordAudit(ctx context.Context, action, clientID string, success bool, errMsg string) {
	entry := &models.AuditLog{
		ActorType:    types.ActorTypeSystem,
		Action:       action,
		ResourceType: "client",
		ResourceID:   lo.ToPtr(clientID),
		Success:      success,
	}
	if errMsg != "" {
		entry.ErrorMessage = lo.ToPtr(errMsg)
	}
	b.audit.Record(ctx, entry)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
