package types

type ClientStatus string

const (
	// ClientStatusProvisioning is the initial status after payment; the
	// provisioning bridge is still driving the external onboarder.
	ClientStatusProvisioning ClientStatus = "provisioning"
	// ClientStatusPendingProvisioning means the onboarder was unreachable
	// after all retries; a manual reprovision is required.
	ClientStatusPendingProvisioning ClientStatus = "pending_provisioning"
	ClientStatusActive              ClientStatus = "active"
	ClientStatusCancelled           ClientStatus = "cancelled"
)

type WebhookEventStatus string

const (
	WebhookEventStatusSuccess      WebhookEventStatus = "success"
	WebhookEventStatusError        WebhookEventStatus = "error"
	WebhookEventStatusPendingRetry WebhookEventStatus = "pending_retry"
)

type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeClient ActorType = "client"
	ActorTypeSystem ActorType = "system"
)

type CallUrgency string

const (
	CallUrgencyLow    CallUrgency = "low"
	CallUrgencyMedium CallUrgency = "medium"
	CallUrgencyHigh   CallUrgency = "high"
	CallUrgencyUrgent CallUrgency = "urgent"
)

type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusResearched LeadStatus = "researched"
	LeadStatusContacted  LeadStatus = "contacted"
	LeadStatusConverted  LeadStatus = "converted"
	LeadStatusRejected   LeadStatus = "rejected"
)
