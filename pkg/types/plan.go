package types

type PlanTier string

const (
	PlanTierLaunch   PlanTier = "launch"
	PlanTierScale    PlanTier = "scale"
	PlanTierDominate PlanTier = "dominate"
)

// Plan is one commercial offering level. The canonical set lives in config;
// DefaultPlans is used when no plans are configured.
type Plan struct {
	ID            PlanTier `json:"id" mapstructure:"id"`
	Name          string   `json:"name" mapstructure:"name"`
	PriceMonthly  float64  `json:"price_monthly" mapstructure:"price_monthly"`
	MinutesLimit  int64    `json:"minutes_limit" mapstructure:"minutes_limit"`
	StripePriceID string   `json:"stripe_price_id" mapstructure:"stripe_price_id"`
}

// DefaultPlanTier is used when a Stripe price id does not match any
// configured plan. An unrecognized price id is a data-quality problem,
// not a reason to reject a paid subscription.
const DefaultPlanTier = PlanTierScale

func DefaultPlans() []*Plan {
	return []*Plan{
		{ID: PlanTierLaunch, Name: "Launch", PriceMonthly: 249.00, MinutesLimit: 500, StripePriceID: "price_1SuJIDKAtfPK3Yyr9K24POD2"},
		{ID: PlanTierScale, Name: "Scale", PriceMonthly: 499.00, MinutesLimit: 1500, StripePriceID: "price_1SuJIsKAtfPK3Yyrs9nSrHYv"},
		{ID: PlanTierDominate, Name: "Dominate", PriceMonthly: 899.00, MinutesLimit: 3000, StripePriceID: "price_1SzQQxKAtfPK3Yyr4LDxrf8U"},
	}
}
