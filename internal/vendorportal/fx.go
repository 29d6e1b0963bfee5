package vendorportal

import (
	"github.com/smallbiznis/procura/internal/vendorportal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendorportal.service",
	fx.Provide(service.New),
)
