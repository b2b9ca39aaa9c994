package di

import (
	"go.uber.org/fx"

	"github.com/packlab/packstore/internal/adapter/payos"
	"github.com/packlab/packstore/internal/app"
	"github.com/packlab/packstore/internal/config"
	"github.com/packlab/packstore/internal/logger"
	"github.com/packlab/packstore/internal/pkg/auth"
	"github.com/packlab/packstore/internal/pkg/clock"
	"github.com/packlab/packstore/internal/server/http/handlers"
	"github.com/packlab/packstore/internal/server/http/router"
	"github.com/packlab/packstore/internal/storage"
	"github.com/packlab/packstore/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		clock.Module,
		auth.Module,
		storage.Module,
		payos.Module,
		usecase.Module,
		fx.Provide(func(client payos.Client) app.PaymentProvider { return client }),
		fx.Provide(func(facade *app.LicensingFacade) handlers.LicensingFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
