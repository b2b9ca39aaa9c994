package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/packlab/packstore/internal/config"
	"github.com/packlab/packstore/internal/domain/repository"
	"github.com/packlab/packstore/internal/pkg/clock"
	"github.com/packlab/packstore/internal/storage/memory"
	"github.com/packlab/packstore/internal/storage/postgres"
)

// Module wires the repository factory and its adapters. The in-memory store
// is the default; a DSN switches the same contracts to PostgreSQL.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.LicenseRepository { return f.Licenses() },
	),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	Clock  clock.Clock
}

func newFactory(p factoryParams) (repository.Factory, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Info("storage", slog.String("backend", "memory"))
		return memory.New(p.Clock), nil
	}
	p.Logger.Info("storage", slog.String("backend", "postgres"))
	return postgres.New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory) {
	storage, ok := factory.(*postgres.Storage)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
