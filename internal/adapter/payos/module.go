package payos

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/packlab/packstore/internal/config"
)

// Module exposes payment provider client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	credentials := Credentials{
		ClientID:    p.Config.PayOSClientID,
		APIKey:      p.Config.PayOSAPIKey,
		ChecksumKey: p.Config.PayOSChecksumKey,
	}
	return NewHTTPClient(p.Config.PayOSAPIURL, credentials, p.Config.ReturnURL, p.Config.CancelURL, p.Logger)
}
