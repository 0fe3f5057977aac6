package order

import (
	"github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/order/repository"
	"github.com/smallbiznis/tapledger/internal/order/service"
	pkgrepository "github.com/smallbiznis/tapledger/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(pkgrepository.ProvideStore[domain.Drink]),
	fx.Provide(service.New),
)
