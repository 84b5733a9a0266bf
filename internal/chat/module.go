// Package chat provides the conversation bounded context module: threads,
// the model dispatch loop and the chat HTTP surface.
package chat

import (
	"context"

	"insurance_intake_backend/internal/chat/handler"
	"insurance_intake_backend/internal/chat/service"
	"insurance_intake_backend/internal/events"
	apphttp "insurance_intake_backend/internal/http"
	"insurance_intake_backend/platform/logger"
	"insurance_intake_backend/platform/validator"
)

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	store   *service.ThreadStore
}

// Deps are the external dependencies the chat module needs.
type Deps struct {
	Model      service.ModelClient
	Dispatcher service.ToolDispatcher
	Bus        events.Bus
	Validator  *validator.Validator
	Logger     *logger.Logger
	Config     service.Config
	Store      *service.ThreadStore
}

// NewModule creates and initializes the chat module.
func NewModule(d Deps) *Module {
	svc := service.NewService(d.Store, d.Model, d.Dispatcher, d.Bus, d.Logger, d.Config)
	h := handler.New(svc, d.Validator)

	return &Module{
		handler: h,
		service: svc,
		store:   d.Store,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RunJanitor evicts idle threads until ctx is canceled.
func (m *Module) RunJanitor(ctx context.Context) {
	m.store.RunJanitor(ctx)
}

// RegisterRoutes mounts the chat routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/chat", ctx.ChatRateLimiter, m.handler.Chat)
	ctx.API.GET("/thread/:id/history", m.handler.History)
	ctx.API.DELETE("/thread/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
