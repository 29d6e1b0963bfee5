package vendor

import (
	"github.com/smallbiznis/procura/internal/vendors/repository"
	"github.com/smallbiznis/procura/internal/vendors/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendor.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
