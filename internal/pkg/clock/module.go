package clock

import "go.uber.org/fx"

// Module provides the system clock for dependency injection.
var Module = fx.Provide(func() Clock { return System{} })
