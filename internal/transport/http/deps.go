package http

import (
	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/application/user"
	"github.com/go-otp-auth/internal/infrastructure/metrics"
	appmiddleware "github.com/go-otp-auth/internal/transport/http/middleware"
)

// Deps holds the services the router wires into handlers.
type Deps struct {
	Auth   auth.Service
	Users  user.Service
	Tokens appmiddleware.TokenVerifier

	// Metrics is optional. When nil, /metrics is not mounted.
	Metrics *metrics.Metrics
}
