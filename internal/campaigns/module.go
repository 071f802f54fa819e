// Package campaigns manages marketing campaigns that leads are attributed to.
package campaigns

import (
	"errors"
	"net/http"
	"time"

	apphttp "enrollhub_backend/internal/http"
	"enrollhub_backend/internal/campaigns/repository"
	"enrollhub_backend/platform/httpkit"
	"enrollhub_backend/platform/logger"
	"enrollhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	repo     *repository.Repository
	validate *validator.Validator
	log      *logger.Logger
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{
		repo:     repository.New(pool),
		validate: validator.New(),
		log:      log,
	}
}

func (m *Module) Name() string {
	return "campaigns"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/campaigns")
	group.GET("/active", m.listActive)

	elevated := group.Group("")
	elevated.Use(httpkit.RequireAnyRole(httpkit.RoleManager, httpkit.RoleOwner))
	elevated.POST("", m.create)
	elevated.PUT("/:id/active", m.setActive)
}

type createCampaignRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Source    *string `json:"source" validate:"omitempty,max=120"`
	StartDate *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

type campaignResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Source    *string `json:"source,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	IsActive  bool    `json:"isActive"`
}

func toCampaignResponse(c repository.Campaign) campaignResponse {
	resp := campaignResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Source:   c.Source,
		IsActive: c.IsActive,
	}
	if c.StartDate != nil {
		s := c.StartDate.Format("2006-01-02")
		resp.StartDate = &s
	}
	if c.EndDate != nil {
		s := c.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}
	return resp
}

func (m *Module) listActive(c *gin.Context) {
	campaigns, err := m.repo.ListActive(c.Request.Context())
	if err != nil {
		m.log.DatabaseError("list_active_campaigns", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to list campaigns", nil)
		return
	}

	out := make([]campaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		out = append(out, toCampaignResponse(campaign))
	}
	httpkit.OK(c, out)
}

func (m *Module) create(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := m.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	params := repository.CreateParams{Name: req.Name, Source: req.Source}
	if req.StartDate != nil {
		d, _ := time.Parse("2006-01-02", *req.StartDate)
		params.StartDate = &d
	}
	if req.EndDate != nil {
		d, _ := time.Parse("2006-01-02", *req.EndDate)
		params.EndDate = &d
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		httpkit.Error(c, http.StatusBadRequest, "end date must not precede start date", nil)
		return
	}

	campaign, err := m.repo.Create(c.Request.Context(), params)
	if err != nil {
		m.log.DatabaseError("create_campaign", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to create campaign", nil)
		return
	}
	httpkit.JSON(c, http.StatusCreated, toCampaignResponse(campaign))
}

type setActiveRequest struct {
	IsActive bool `json:"isActive"`
}

func (m *Module) setActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign id", nil)
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if err := m.repo.SetActive(c.Request.Context(), id, req.IsActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpkit.Error(c, http.StatusNotFound, "campaign not found", nil)
			return
		}
		m.log.DatabaseError("set_campaign_active", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to update campaign", nil)
		return
	}
	httpkit.OK(c, gin.H{"id": id.String(), "isActive": req.IsActive})
}

var _ apphttp.Module = (*Module)(nil)
