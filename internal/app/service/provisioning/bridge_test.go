package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/ronos"
	"github.com/ronsystem/fcpdigital-backend/internal/platform/stripegw"
	"github.com/ronsystem/fcpdigital-backend/pkg/config"
	"github.com/ronsystem/fcpdigital-backend/pkg/tool"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const (
	scalePriceID  = "price_1SuJIsKAtfPK3Yyrs9nSrHYv"
	launchPriceID = "price_1SuJIDKAtfPK3Yyr9K24POD2"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	clients      map[string]*models.Client
	ledger       map[string]*models.WebhookEvent
	ledgerErr    error
	createErr    error
	hasProcessed func(eventID string) (bool, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients: map[string]*models.Client{},
		ledger:  map[string]*models.WebhookEvent{},
	}
}

func (s *fakeStore) HasProcessedEvent(_ context.Context, id string) (bool, error) {
	if s.hasProcessed != nil {
		return s.hasProcessed(id)
	}
	_, ok := s.ledger[id]
	return ok, nil
}

func (s *fakeStore) SaveLedgerEntry(_ context.Context, e *models.WebhookEvent) error {
	if s.ledgerErr != nil {
		return s.ledgerErr
	}
	if _, ok := s.ledger[e.StripeEventID]; ok {
		return ErrDuplicateEvent
	}
	if e.ID == "" {
		e.ID = tool.GenerateUUIDV7()
	}
	s.ledger[e.StripeEventID] = e
	return nil
}

func (s *fakeStore) CreateClient(_ context.Context, c *models.Client) error {
	if s.createErr != nil {
		return s.createErr
	}
	if c.ID == "" {
		c.ID = tool.GenerateUUIDV7()
	}
	cp := *c
	s.clients[c.ID] = &cp
	return nil
}

func (s *fakeStore) SetClientStatus(_ context.Context, id string, status types.ClientStatus) error {
	c, ok := s.clients[id]
	if !ok {
		return ErrClientNotFound
	}
	c.Status = status
	return nil
}

func (s *fakeStore) MarkClientPendingProvisioning(_ context.Context, id, reason string, at time.Time) error {
	c, ok := s.clients[id]
	if !ok {
		return ErrClientNotFound
	}
	c.Status = types.ClientStatusPendingProvisioning
	c.Metadata = datatypes.NewJSONType(&models.ClientMetadata{LastProvisionAttempt: &at, ProvisionError: reason})
	return nil
}

func (s *fakeStore) CancelClientByCustomerID(_ context.Context, customerID string) (*models.Client, error) {
	for _, c := range s.clients {
		if c.StripeCustomerID != nil && *c.StripeCustomerID == customerID {
			c.Status = types.ClientStatusCancelled
			return c, nil
		}
	}
	return nil, ErrClientNotFound
}

func (s *fakeStore) GetClient(_ context.Context, id string) (*models.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return c, nil
}

func (s *fakeStore) onlyClient(t *testing.T) *models.Client {
	t.Helper()
	require.Len(t, s.clients, 1)
	for _, c := range s.clients {
		return c
	}
	return nil
}

// fakeGateway verifies signatures by string comparison and serves canned
// events and customers.
type fakeGateway struct {
	events    map[string]stripe.Event
	customers map[string]*stripe.Customer
	deleted   map[string]bool
}

func (g *fakeGateway) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if sigHeader != "valid" {
		return stripe.Event{}, errors.New("signature mismatch")
	}
	ev, ok := g.events[string(payload)]
	if !ok {
		return stripe.Event{}, errors.New("unknown payload")
	}
	return ev, nil
}

func (g *fakeGateway) GetCustomer(_ context.Context, id string) (*stripe.Customer, error) {
	if g.deleted[id] {
		return nil, stripegw.ErrCustomerDeleted
	}
	c, ok := g.customers[id]
	if !ok {
		return nil, errors.New("no such customer")
	}
	return c, nil
}

// fakeProvisioner fails the first failures calls, then succeeds.
type fakeProvisioner struct {
	failures int
	calls    []*ronos.ProvisionRequest
}

func (p *fakeProvisioner) Provision(_ context.Context, req *ronos.ProvisionRequest) error {
	p.calls = append(p.calls, req)
	if len(p.calls) <= p.failures {
		return errors.New("provisioner returned 502: upstream exploded")
	}
	return nil
}

type fakeAudit struct{ entries []*models.AuditLog }

func (a *fakeAudit) Record(_ context.Context, e *models.AuditLog) { a.entries = append(a.entries, e) }

type bridgeFixture struct {
	bridge *Bridge
	store  *fakeStore
	gw     *fakeGateway
	prov   *fakeProvisioner
	audit  *fakeAudit
	sleeps []time.Duration
}

func newFixture(failures int) *bridgeFixture {
	cfg := &config.Config{
		Plans:       types.DefaultPlans(),
		Provisioner: config.ProvisionerConfig{MaxAttempts: 3},
	}
	f := &bridgeFixture{
		store: newFakeStore(),
		gw: &fakeGateway{
			events:    map[string]stripe.Event{},
			customers: map[string]*stripe.Customer{},
			deleted:   map[string]bool{},
		},
		prov:  &fakeProvisioner{failures: failures},
		audit: &fakeAudit{},
	}
	f.bridge = newBridge(cfg, f.store, f.gw, f.prov, f.audit, zap.NewNop().Sugar())
	f.bridge.sleep = func(_ context.Context, d time.Duration) { f.sleeps = append(f.sleeps, d) }
	f.bridge.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *bridgeFixture) addCustomer(id, email string, metadata map[string]string) {
	f.gw.customers[id] = &stripe.Customer{ID: id, Email: email, Metadata: metadata}
}

// stageEvent registers an event under a payload key and returns the payload.
func (f *bridgeFixture) stageEvent(t *testing.T, eventID string, eventType stripe.EventType, customerID, subID, priceID string, unitAmount int64) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       subID,
		"customer": customerID,
		"items": map[string]any{
			"data": []any{map[string]any{
				"price": map[string]any{"id": priceID, "unit_amount": unitAmount},
			}},
		},
	})
	require.NoError(t, err)
	payload := []byte(`{"payload_for":"` + eventID + `"}`)
	f.gw.events[string(payload)] = stripe.Event{
		ID:   eventID,
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
	return payload
}

func TestHandleWebhook_InvalidSignatureHasNoSideEffects(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", nil)

	_, err := f.bridge.HandleWebhook(context.Background(), payload, "garbage")
	require.ErrorIs(t, err, ErrInvalidSignature)

	require.Empty(t, f.store.clients)
	require.Empty(t, f.store.ledger)
	require.Empty(t, f.prov.calls)
	require.Empty(t, f.audit.entries)
}

func TestHandleWebhook_SubscriptionCreated_Provisions(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", map[string]string{
		"business_name": "Acme Plumbing",
		"phone":         "+15551234567",
	})

	res, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.True(t, res.Provisioned)
	require.False(t, res.Duplicate)

	client := f.store.onlyClient(t)
	require.Equal(t, types.ClientStatusActive, client.Status)
	require.Equal(t, "Acme Plumbing", client.BusinessName)
	require.Equal(t, "owner@acme.test", client.ContactEmail)
	require.Equal(t, "+15551234567", client.ContactPhone)
	require.Equal(t, types.PlanTierScale, client.Plan)
	require.Equal(t, 499.00, client.MonthlyFee)
	require.Equal(t, int64(1500), client.CallMinutesLimit)
	require.Equal(t, "cus_1", lo.FromPtr(client.StripeCustomerID))
	require.Equal(t, "sub_1", lo.FromPtr(client.StripeSubscriptionID))

	require.Len(t, f.prov.calls, 1)
	call := f.prov.calls[0]
	require.Equal(t, client.ID, call.ClientID)
	require.Equal(t, "customer.subscription.created", call.EventType)
	require.Equal(t, types.PlanTierScale, call.Plan)

	require.Len(t, f.store.ledger, 1)
	entry := f.store.ledger["evt_1"]
	require.Equal(t, types.WebhookEventStatusSuccess, entry.Status)
	require.Equal(t, client.ID, lo.FromPtr(entry.ClientID))

	require.Len(t, f.audit.entries, 1)
	require.True(t, f.audit.entries[0].Success)
}

func TestHandleWebhook_DuplicateDeliveryShortCircuits(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", nil)

	res1, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.False(t, res1.Duplicate)

	res2, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.True(t, res2.Duplicate)

	// Exactly one client, one ledger row, one provisioning call sequence.
	require.Len(t, f.store.clients, 1)
	require.Len(t, f.store.ledger, 1)
	require.Len(t, f.prov.calls, 1)
	require.Len(t, f.audit.entries, 1)
}

func TestHandleWebhook_RetryBound(t *testing.T) {
	f := newFixture(100) // provisioner never succeeds
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", nil)

	res, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	// The payment was validly received; the webhook is still acknowledged.
	require.NoError(t, err)
	require.False(t, res.Provisioned)

	require.Len(t, f.prov.calls, 3)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.sleeps)

	client := f.store.onlyClient(t)
	require.Equal(t, types.ClientStatusPendingProvisioning, client.Status)
	meta := client.Metadata.Data()
	require.NotNil(t, meta)
	require.NotEmpty(t, meta.ProvisionError)
	require.NotNil(t, meta.LastProvisionAttempt)

	entry := f.store.ledger["evt_1"]
	require.Equal(t, types.WebhookEventStatusPendingRetry, entry.Status)

	require.Len(t, f.audit.entries, 1)
	require.False(t, f.audit.entries[0].Success)
}

func TestHandleWebhook_RetryRecovery(t *testing.T) {
	f := newFixture(2) // fails attempts 1-2, succeeds on 3
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", nil)

	res, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.True(t, res.Provisioned)

	require.Len(t, f.prov.calls, 3)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.sleeps)

	client := f.store.onlyClient(t)
	require.Equal(t, types.ClientStatusActive, client.Status)

	require.Len(t, f.store.ledger, 1)
	require.Equal(t, types.WebhookEventStatusSuccess, f.store.ledger["evt_1"].Status)
}

func TestHandleWebhook_UnknownPriceIDFallsBackToDefaultTier(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", "price_nobody_knows", 129900)
	f.addCustomer("cus_1", "owner@acme.test", nil)

	_, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)

	client := f.store.onlyClient(t)
	require.Equal(t, types.DefaultPlanTier, client.Plan)
	// Fee still follows the charged amount, not the fallback plan's price.
	require.Equal(t, 1299.00, client.MonthlyFee)
}

func TestHandleWebhook_MissingUnitAmountUsesPlanPrice(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", launchPriceID, 0)
	f.addCustomer("cus_1", "owner@acme.test", nil)

	_, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)

	client := f.store.onlyClient(t)
	require.Equal(t, types.PlanTierLaunch, client.Plan)
	require.Equal(t, 249.00, client.MonthlyFee)
	require.Equal(t, int64(500), client.CallMinutesLimit)
}

func TestHandleWebhook_DeletedCustomerIsRejectedWithoutClient(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_gone", "sub_1", scalePriceID, 49900)
	f.gw.deleted["cus_gone"] = true

	_, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.ErrorIs(t, err, stripegw.ErrCustomerDeleted)
	require.Empty(t, f.store.clients)
	require.Empty(t, f.prov.calls)
}

func TestHandleWebhook_SubscriptionDeleted_CancelsKnownClient(t *testing.T) {
	f := newFixture(0)
	existing := &models.Client{
		ID:               "client-1",
		BusinessName:     "Acme Plumbing",
		ContactEmail:     "owner@acme.test",
		Plan:             types.PlanTierScale,
		MonthlyFee:       499.00,
		StripeCustomerID: lo.ToPtr("cus_1"),
		Status:           types.ClientStatusActive,
		CallMinutesLimit: 1500,
	}
	require.NoError(t, f.store.CreateClient(context.Background(), existing))

	payload := f.stageEvent(t, "evt_2", stripe.EventTypeCustomerSubscriptionDeleted, "cus_1", "sub_1", scalePriceID, 49900)
	res, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.Equal(t, "client-1", res.ClientID)

	client := f.store.clients["client-1"]
	require.Equal(t, types.ClientStatusCancelled, client.Status)
	// Every other field is untouched.
	require.Equal(t, "Acme Plumbing", client.BusinessName)
	require.Equal(t, 499.00, client.MonthlyFee)
	require.Equal(t, int64(1500), client.CallMinutesLimit)

	require.Equal(t, types.WebhookEventStatusSuccess, f.store.ledger["evt_2"].Status)
	require.Empty(t, f.prov.calls)
}

func TestHandleWebhook_SubscriptionDeleted_UnknownCustomerAcknowledged(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_2", stripe.EventTypeCustomerSubscriptionDeleted, "cus_unknown", "sub_1", scalePriceID, 49900)

	res, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.Empty(t, res.ClientID)
	require.Empty(t, f.store.clients)
}

func TestHandleWebhook_IrrelevantEventIgnored(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_3", "invoice.payment_succeeded", "cus_1", "sub_1", scalePriceID, 49900)

	res, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
	require.True(t, res.Ignored)
	require.Empty(t, f.store.clients)
	require.Empty(t, f.store.ledger)
	require.Empty(t, f.prov.calls)
}

func TestHandleWebhook_RacingLedgerInsertIsSwallowed(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", nil)
	f.store.ledgerErr = ErrDuplicateEvent

	// A near-simultaneous duplicate delivery won the ledger insert; this
	// delivery still acknowledges.
	_, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.NoError(t, err)
}

func TestHandleWebhook_ClientPersistenceFailureIsFatal(t *testing.T) {
	f := newFixture(0)
	payload := f.stageEvent(t, "evt_1", stripe.EventTypeCustomerSubscriptionCreated, "cus_1", "sub_1", scalePriceID, 49900)
	f.addCustomer("cus_1", "owner@acme.test", nil)
	f.store.createErr = errors.New("connection refused")

	_, err := f.bridge.HandleWebhook(context.Background(), payload, "valid")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidSignature)
	// No ledger row: Stripe will redeliver and the retry starts clean.
	require.Empty(t, f.store.ledger)
	require.Empty(t, f.prov.calls)
}

func TestManualReprovision_ActivatesPendingClient(t *testing.T) {
	f := newFixture(0)
	pending := &models.Client{
		ID:                   "client-1",
		BusinessName:         "Acme Plumbing",
		ContactEmail:         "owner@acme.test",
		Plan:                 types.PlanTierScale,
		StripeCustomerID:     lo.ToPtr("cus_1"),
		StripeSubscriptionID: lo.ToPtr("sub_1"),
		Status:               types.ClientStatusPendingProvisioning,
	}
	require.NoError(t, f.store.CreateClient(context.Background(), pending))

	res, err := f.bridge.ManualReprovision(context.Background(), "client-1")
	require.NoError(t, err)
	require.True(t, res.Provisioned)
	require.Equal(t, types.ClientStatusActive, f.store.clients["client-1"].Status)

	require.Len(t, f.prov.calls, 1)
	require.Equal(t, "manual.reprovision", f.prov.calls[0].EventType)
}

func TestManualReprovision_RejectsNonPendingClient(t *testing.T) {
	f := newFixture(0)
	active := &models.Client{ID: "client-1", Status: types.ClientStatusActive}
	require.NoError(t, f.store.CreateClient(context.Background(), active))

	_, err := f.bridge.ManualReprovision(context.Background(), "client-1")
	require.Error(t, err)
	require.Empty(t, f.prov.calls)
}

func TestManualReprovision_UnknownClient(t *testing.T) {
	f := newFixture(0)
	_, err := f.bridge.ManualReprovision(context.Background(), "nope")
	require.ErrorIs(t, err, ErrClientNotFound)
}
