// Package calllist provides the cold-call list bounded context module.
package calllist

import (
	"enrollhub_backend/internal/calllist/handler"
	"enrollhub_backend/internal/calllist/repository"
	"enrollhub_backend/internal/calllist/service"
	apphttp "enrollhub_backend/internal/http"
	"enrollhub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the call-list bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the call-list module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calllist"
}

// RegisterRoutes mounts call-list routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/call-list"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
