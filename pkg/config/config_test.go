package config

import (
	"testing"
	"time"

	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestGetPlanByStripePriceID(t *testing.T) {
	cfg := &Config{Plans: types.DefaultPlans()}

	launch := cfg.GetPlanByID(types.PlanTierLaunch)
	require.NotNil(t, launch)

	plan, known := cfg.GetPlanByStripePriceID(launch.StripePriceID)
	require.True(t, known)
	require.Equal(t, types.PlanTierLaunch, plan.ID)

	// Unknown price ids resolve to the default tier but report the miss.
	plan, known = cfg.GetPlanByStripePriceID("price_unknown")
	require.False(t, known)
	require.Equal(t, types.DefaultPlanTier, plan.ID)

	// An empty price id in the event never matches an empty table entry.
	cfg.Plans = append(cfg.Plans, &types.Plan{ID: "custom"})
	plan, known = cfg.GetPlanByStripePriceID("")
	require.False(t, known)
	require.Equal(t, types.DefaultPlanTier, plan.ID)
}

func TestProvisionerTimeout(t *testing.T) {
	require.Equal(t, 10*time.Second, ProvisionerConfig{}.Timeout())
	require.Equal(t, 25*time.Second, ProvisionerConfig{TimeoutSeconds: 25}.Timeout())
}
