package usecase

import (
	"go.uber.org/fx"

	"github.com/packlab/packstore/internal/config"
	"github.com/packlab/packstore/internal/domain/repository"
	pkgAuth "github.com/packlab/packstore/internal/pkg/auth"
	"github.com/packlab/packstore/internal/pkg/clock"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewOrderUseCase,
	newLicenseUseCase,
	NewReconcileUseCase,
	newAdminUseCase,
)

type licenseParams struct {
	fx.In

	Licenses repository.LicenseRepository
	Clock    clock.Clock
	Config   *config.Config
}

func newLicenseUseCase(p licenseParams) *LicenseUseCase {
	return NewLicenseUseCase(p.Licenses, p.Clock, p.Config.LicenseTTL, p.Config.BindingPolicy)
}

type adminParams struct {
	fx.In

	Orders   repository.OrderRepository
	Licenses repository.LicenseRepository
	Hasher   pkgAuth.PasswordHasher
	Tokens   pkgAuth.Strategy
	Config   *config.Config
}

func newAdminUseCase(p adminParams) (*AdminUseCase, error) {
	return NewAdminUseCase(p.Orders, p.Licenses, p.Hasher, p.Tokens, p.Config.AdminPassword)
}
