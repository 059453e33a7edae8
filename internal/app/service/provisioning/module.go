package provisioning

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewBridge),
	fx.Provide(NewLedger),
)
