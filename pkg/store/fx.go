package store

import (
	"github.com/pseudomuto/cirrus/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("store", fx.Provide(
	fx.Annotate(
		func(cfg *config.Config) *Mux { return New(cfg) },
		fx.As(new(Store)),
	),
))
