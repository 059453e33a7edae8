package calls

import (
	"testing"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestParseUrgency(t *testing.T) {
	cases := []struct {
		summary string
		want    types.CallUrgency
	}{
		{"Burst pipe, caller needs someone IMMEDIATELY", types.CallUrgencyUrgent},
		{"water heater emergency in the basement", types.CallUrgencyUrgent},
		{"Needs a callback ASAP about a leaking faucet", types.CallUrgencyHigh},
		{"High priority follow-up for a commercial account", types.CallUrgencyHigh},
		{"Would like an appointment sometime this week", types.CallUrgencyMedium},
		{"Asking about routine maintenance pricing", types.CallUrgencyLow},
		{"", types.CallUrgencyLow},
	}
	for _, c := range cases {
		require.Equal(t, c.want, parseUrgency(c.summary), "summary: %q", c.summary)
	}
}

func TestExtractServiceNeeded(t *testing.T) {
	// Structured extraction wins over keyword matching.
	require.Equal(t, "Drain Cleaning",
		extractServiceNeeded("caller asked about plumbing", map[string]string{"serviceType": "Drain Cleaning"}))
	require.Equal(t, "Water Heater",
		extractServiceNeeded("", map[string]string{"service": "Water Heater"}))

	require.Equal(t, "Plumbing Service", extractServiceNeeded("clogged plumbing in the kitchen", nil))
	require.Equal(t, "HVAC Service", extractServiceNeeded("heating stopped working overnight", nil))
	require.Equal(t, "Quote Request", extractServiceNeeded("wants an estimate for a repipe", nil))
	require.Equal(t, "Service Inquiry", extractServiceNeeded("general question about hours", nil))
}

func TestExtractCallerName(t *testing.T) {
	require.Equal(t, "Dana", extractCallerName("", map[string]string{"callerName": "Dana"}))
	require.Equal(t, "Sam", extractCallerName("", map[string]string{"name": "Sam"}))
	require.Equal(t, "Maria", extractCallerName("Caller said this is Maria from Oak Street", nil))
	require.Equal(t, "", extractCallerName("no name mentioned anywhere", nil))
}

func TestComputeCallStats(t *testing.T) {
	empty := computeCallStats(0, 0)
	require.Equal(t, int64(0), empty.TotalCalls)
	require.Equal(t, float64(0), empty.AvgDuration)

	// 4 calls, 750 seconds: 12.5 minutes total rounds to 13, avg 3.1.
	stats := computeCallStats(4, 750)
	require.Equal(t, int64(4), stats.TotalCalls)
	require.Equal(t, int64(13), stats.TotalMinutes)
	require.Equal(t, 3.1, stats.AvgDuration)
}
