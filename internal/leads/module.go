// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"context"

	"enrollhub_backend/internal/events"
	apphttp "enrollhub_backend/internal/http"
	"enrollhub_backend/internal/leads/handler"
	"enrollhub_backend/internal/leads/repository"
	"enrollhub_backend/internal/leads/service"
	"enrollhub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, &pgUserDirectory{pool: pool}, bus, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the leads repository, used by the exports module.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// pgUserDirectory resolves user names for ledger entries straight from the
// users table, avoiding a dependency on the auth module.
type pgUserDirectory struct {
	pool *pgxpool.Pool
}

func (d *pgUserDirectory) UserName(ctx context.Context, userID uuid.UUID) (string, error) {
	var name string
	err := d.pool.QueryRow(ctx, `SELECT full_name FROM users WHERE id = $1 AND is_active = true`, userID).Scan(&name)
	return name, err
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
