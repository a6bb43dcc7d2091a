package session

import (
	"crew-match-backend/internal/client"

	"github.com/rs/zerolog"
)

// NewAuthenticator returns the demo authenticator when backendURL is unset or
// a placeholder, and a backend client otherwise
func NewAuthenticator(backendURL, demoPath string, logger zerolog.Logger) (Authenticator, error) {
	if IsDemoBackend(backendURL) {
		logger.Info().Str("path", demoPath).Msg("No backend configured, running in demo mode")
		return NewDemoAuthenticator(demoPath), nil
	}
	return client.New(backendURL, client.WithLogger(logger))
}
