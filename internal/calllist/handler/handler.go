// Package handler exposes the call-list HTTP endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"enrollhub_backend/internal/calllist/repository"
	"enrollhub_backend/internal/calllist/service"
	"enrollhub_backend/internal/calllist/transport"
	"enrollhub_backend/platform/httpkit"
	"enrollhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PUT("/:id/remarks/:index/read", h.MarkRemarkRead)
	rg.DELETE("/:id", h.Delete)
}

func actorFrom(c *gin.Context) (service.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:   id.UserID(),
		Name:     id.Name(),
		Elevated: id.IsElevated(),
	}, true
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var query transport.ListEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	entries, total, err := h.svc.List(c.Request.Context(), actor, service.ListQuery{
		Status: query.Status,
		Search: query.Search,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, transport.ToEntryResponse(entry))
	}
	httpkit.OK(c, transport.EntryListResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.CreateInput{
		Name:         req.Name,
		Phone:        req.Phone,
		SocialHandle: req.SocialHandle,
		Source:       req.Source,
		Purpose:      req.Purpose,
		Status:       req.Status,
	}
	if req.AssignedToID != nil && *req.AssignedToID != "" {
		userID, err := uuid.Parse(*req.AssignedToID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		input.AssignedToID = &userID
	}

	entry, err := h.svc.Create(c.Request.Context(), actor, input)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToEntryResponse(entry))
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	entry, remarks, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToEntryDetailResponse(entry, remarks))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req transport.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), actor, id, service.UpdateInput{
		Name:            req.Name.Value,
		NameSet:         req.Name.Set,
		Phone:           req.Phone.Value,
		PhoneSet:        req.Phone.Set,
		SocialHandle:    req.SocialHandle.Value,
		SocialHandleSet: req.SocialHandle.Set,
		Source:          req.Source.Value,
		SourceSet:       req.Source.Set,
		Purpose:         req.Purpose.Value,
		PurposeSet:      req.Purpose.Set,
		Status:          req.Status,
		AssignedToID:    req.AssignedToID.Value,
		AssignedToIDSet: req.AssignedToID.Set,
		RemarkText:      req.Remarks,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToEntryResponse(entry))
}

func (h *Handler) MarkRemarkRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid remark index", nil)
		return
	}

	if err := h.svc.MarkRemarkRead(c.Request.Context(), actor, id, index); err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"message": "remark marked read"})
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseEntryID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"message": "entry deleted"})
}

func parseEntryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid entry id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "call list entry not found", nil)
		return
	}
	httpkit.HandleError(c, err)
}
