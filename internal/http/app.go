package http

import (
	"insurance_intake_backend/internal/config"
	"insurance_intake_backend/internal/events"
	"insurance_intake_backend/platform/logger"
)

// App holds the fully initialized application dependencies. It is populated
// by main.go (the composition root) and passed to the router.
type App struct {
	// Config is the loaded application configuration.
	Config *config.Config
	// Logger is the structured logger.
	Logger *logger.Logger
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// ActiveThreads reports the live conversation count for health checks.
	ActiveThreads func() int
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
