package calls

import (
	"regexp"
	"strings"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"
)

var callerNameRe = regexp.MustCompile(`(?i)(?:caller named|name is|i'm|this is)\s+([A-Z][a-z]+)`)

// parseUrgency buckets a call summary by keyword. The assistant's summaries
// are free text, so this is a heuristic, not a classifier.
func parseUrgency(summary string) types.CallUrgency {
	s := strings.ToLower(summary)
	switch {
	case containsAny(s, "emergency", "urgent", "critical", "immediately"):
		return types.CallUrgencyUrgent
	case containsAny(s, "important", "high priority", "asap"):
		return types.CallUrgencyHigh
	case containsAny(s, "medium", "soon", "this week"):
		return types.CallUrgencyMedium
	default:
		return types.CallUrgencyLow
	}
}

// extractServiceNeeded prefers the assistant's structured extraction and
// falls back to keyword matching on the summary.
func extractServiceNeeded(summary string, extracted map[string]string) string {
	if v := extracted["serviceType"]; v != "" {
		return v
	}
	if v := extracted["service"]; v != "" {
		return v
	}

	s := strings.ToLower(summary)
	switch {
	case strings.Contains(s, "plumb"):
		return "Plumbing Service"
	case containsAny(s, "hvac", "heating"):
		return "HVAC Service"
	case strings.Contains(s, "electric"):
		return "Electrical Service"
	case strings.Contains(s, "appointment"):
		return "Appointment Scheduling"
	case containsAny(s, "quote", "estimate"):
		return "Quote Request"
	case strings.Contains(s, "emergency"):
		return "Emergency Service"
	case strings.Contains(s, "maintenance"):
		return "Maintenance Service"
	case strings.Contains(s, "repair"):
		return "Repair Service"
	case strings.Contains(s, "inspection"):
		return "Inspection Service"
	default:
		return "Service Inquiry"
	}
}

// extractCallerName returns "" when no name can be found.
func extractCallerName(summary string, extracted map[string]string) string {
	if v := extracted["callerName"]; v != "" {
		return v
	}
	if v := extracted["name"]; v != "" {
		return v
	}
	if m := callerNameRe.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
