package billing

import (
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	"github.com/smallbiznis/tapledger/internal/billing/repository"
	"github.com/smallbiznis/tapledger/internal/billing/service"
	pkgrepository "github.com/smallbiznis/tapledger/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(pkgrepository.ProvideStore[domain.Bill]),
	fx.Provide(service.New),
)
