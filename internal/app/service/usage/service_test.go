package usage

import (
	"testing"

	"github.com/ronsystem/fcpdigital-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	rows := []*models.UsageTracking{
		{Date: "2025-06-01", CallsCount: 3, CallMinutes: 12},
		{Date: "2025-06-02", CallsCount: 5, CallMinutes: 40},
		{Date: "2025-06-03", CallsCount: 2, CallMinutes: 8},
	}

	stats := computeStats(rows, "2025-06-03", 1500)
	require.Equal(t, int64(2), stats.TodayCalls)
	require.Equal(t, int64(8), stats.TodayMinutes)
	require.Equal(t, int64(10), stats.ThisMonthCalls)
	require.Equal(t, int64(60), stats.ThisMonthMinutes)
	// 60 of 1500 minutes = 4%.
	require.Equal(t, int64(4), stats.PercentageUsed)
}

func TestComputeStats_NoRowsToday(t *testing.T) {
	rows := []*models.UsageTracking{
		{Date: "2025-06-01", CallsCount: 1, CallMinutes: 5},
	}
	stats := computeStats(rows, "2025-06-09", 500)
	require.Equal(t, int64(0), stats.TodayCalls)
	require.Equal(t, int64(1), stats.ThisMonthCalls)
	require.Equal(t, int64(1), stats.PercentageUsed)
}

func TestComputeStats_ZeroLimit(t *testing.T) {
	stats := computeStats(nil, "2025-06-09", 0)
	require.Equal(t, int64(0), stats.PercentageUsed)
}

func TestComputeStats_OverLimit(t *testing.T) {
	rows := []*models.UsageTracking{{Date: "2025-06-01", CallMinutes: 600}}
	stats := computeStats(rows, "2025-06-09", 500)
	require.Equal(t, int64(120), stats.PercentageUsed)
}
