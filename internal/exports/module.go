// Package exports produces CSV downloads of the lead book.
package exports

import (
	apphttp "enrollhub_backend/internal/http"
	leadsrepo "enrollhub_backend/internal/leads/repository"
	"enrollhub_backend/platform/httpkit"
)

type Module struct {
	handler *Handler
}

func NewModule(repo *leadsrepo.Repository) *Module {
	return &Module{handler: NewHandler(repo)}
}

func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts the export download for elevated roles only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/exports")
	group.Use(httpkit.RequireAnyRole(httpkit.RoleManager, httpkit.RoleOwner))
	group.GET("/leads.csv", m.handler.ExportLeadsCSV)
}

var _ apphttp.Module = (*Module)(nil)
