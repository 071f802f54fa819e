// Package users exposes the read-only user directory used by assignment pickers.
package users

import (
	"net/http"

	apphttp "enrollhub_backend/internal/http"
	"enrollhub_backend/internal/users/repository"
	"enrollhub_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	repo *repository.Repository
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: repository.New(pool)}
}

func (m *Module) Name() string {
	return "users"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/users", m.listUsers)
}

type userResponse struct {
	ID       string   `json:"id"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (m *Module) listUsers(c *gin.Context) {
	users, err := m.repo.ListActive(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:       u.ID.String(),
			FullName: u.FullName,
			Email:    u.Email,
			Roles:    u.Roles,
		})
	}
	httpkit.OK(c, out)
}

var _ apphttp.Module = (*Module)(nil)
