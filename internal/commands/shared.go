package commands

import (
	"errors"
	"fmt"

	"github.com/watchparty/wpc/internal/api"
)

func unauthenticatedClient(a *app) *api.Client {
	return api.New(a.cfg.ServerURL)
}

// loginError distinguishes a rejected credential exchange (surface the
// server's message) from the server being unreachable.
func loginError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s", api.ServerMessage(err))
	}
	return fmt.Errorf("could not reach the server: %w", err)
}
