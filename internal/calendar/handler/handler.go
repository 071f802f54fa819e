// Package handler exposes the calendar HTTP surface.
package handler

import (
	"errors"
	"net/http"
	"time"

	"enrollhub_backend/internal/calendar/repository"
	"enrollhub_backend/internal/calendar/service"
	"enrollhub_backend/platform/httpkit"
	"enrollhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/events", h.ListEvents)
	group.POST("/events", h.CreateEvent)
	group.GET("/events/:id", h.GetEvent)
	group.PUT("/events/:id", h.UpdateEvent)
	group.DELETE("/events/:id", h.DeleteEvent)
}

type createEventRequest struct {
	Title     string  `json:"title" validate:"required,min=1,max=200"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
	EventDate string  `json:"eventDate" validate:"required,datetime=2006-01-02"`
}

type updateEventRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
	EventDate *string `json:"eventDate" validate:"omitempty,datetime=2006-01-02"`
}

type eventResponse struct {
	ID         string  `json:"id"`
	LeadID     *string `json:"leadId,omitempty"`
	Title      string  `json:"title"`
	Notes      *string `json:"notes,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	LeadStatus *string `json:"leadStatus,omitempty"`
	EventDate  string  `json:"eventDate"`
}

func toEventResponse(e repository.Event) eventResponse {
	resp := eventResponse{
		ID:         e.ID.String(),
		Title:      e.Title,
		Notes:      e.Notes,
		Phone:      e.Phone,
		Email:      e.Email,
		LeadStatus: e.LeadStatus,
		EventDate:  e.EventDate.Format("2006-01-02"),
	}
	if e.LeadID != nil {
		id := e.LeadID.String()
		resp.LeadID = &id
	}
	return resp
}

func (h *Handler) ListEvents(c *gin.Context) {
	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from date", nil)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to date", nil)
			return
		}
		to = parsed
	}

	events, err := h.svc.ListRange(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toEventResponse(event))
	}
	httpkit.OK(c, out)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, _ := time.Parse("2006-01-02", req.EventDate)
	event, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Title:     req.Title,
		Notes:     req.Notes,
		EventDate: date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, toEventResponse(event))
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	event, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, toEventResponse(event))
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	input := service.UpdateInput{Title: req.Title}
	if req.Notes != nil {
		input.Notes = req.Notes
		input.NotesSet = true
	}
	if req.EventDate != nil {
		date, _ := time.Parse("2006-01-02", *req.EventDate)
		input.EventDate = &date
	}

	event, err := h.svc.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, toEventResponse(event))
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid event id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "calendar event not found", nil)
		return
	}
	httpkit.HandleError(c, err)
}
