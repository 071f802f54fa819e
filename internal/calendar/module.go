// Package calendar bridges lead follow-ups onto a shared team calendar.
package calendar

import (
	apphttp "enrollhub_backend/internal/http"
	"enrollhub_backend/internal/calendar/handler"
	"enrollhub_backend/internal/calendar/repository"
	"enrollhub_backend/internal/calendar/service"
	"enrollhub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		svc:     svc,
		handler: handler.New(svc),
	}
}

func (m *Module) Name() string {
	return "calendar"
}

// Bridge returns the service for wiring into the lead workflow.
func (m *Module) Bridge() *service.Service {
	return m.svc
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/calendar"))
}

var _ apphttp.Module = (*Module)(nil)
