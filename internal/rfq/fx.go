package rfq

import (
	"github.com/smallbiznis/procura/internal/rfq/repository"
	"github.com/smallbiznis/procura/internal/rfq/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rfq.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
