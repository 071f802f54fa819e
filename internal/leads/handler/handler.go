// Package handler exposes the leads HTTP endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"enrollhub_backend/internal/leads/repository"
	"enrollhub_backend/internal/leads/service"
	"enrollhub_backend/internal/leads/transport"
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
	rg.GET("/:id/form", h.GetForm)
	rg.PUT("/:id", h.Save)
	rg.POST("/:id/remarks", h.AppendRemark)
	rg.PUT("/:id/remarks/:index/read", h.MarkRemarkRead)
	rg.PUT("/:id/assign", h.Assign)
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
		Owner:    id.HasRole(httpkit.RoleOwner),
	}, true
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	listQuery, err := buildListQuery(query)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	leads, total, err := h.svc.List(c.Request.Context(), actor, listQuery)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	now := time.Now()
	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, transport.ToLeadResponse(lead, now))
	}

	pageSize := listQuery.Limit
	page := listQuery.Offset/pageSize + 1
	totalPages := (total + pageSize - 1) / pageSize
	httpkit.OK(c, transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func buildListQuery(query transport.ListLeadsQuery) (service.ListQuery, error) {
	out := service.ListQuery{
		Status:    query.Status,
		Potential: query.Potential,
		Search:    query.Search,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}

	switch query.AssignedTo {
	case "":
	case "unassigned":
		out.Unassigned = true
	default:
		userID, err := uuid.Parse(query.AssignedTo)
		if err != nil {
			return service.ListQuery{}, errors.New("invalid assignedTo filter")
		}
		out.AssignedToID = &userID
	}

	if query.CampaignID != nil && *query.CampaignID != "" {
		campaignID, err := uuid.Parse(*query.CampaignID)
		if err != nil {
			return service.ListQuery{}, errors.New("invalid campaignId filter")
		}
		out.CampaignID = &campaignID
	}

	if query.FollowUpFrom != "" {
		from, err := time.Parse("2006-01-02", query.FollowUpFrom)
		if err != nil {
			return service.ListQuery{}, errors.New("invalid followUpFrom date")
		}
		out.FollowUpFrom = &from
	}
	if query.FollowUpTo != "" {
		to, err := time.Parse("2006-01-02", query.FollowUpTo)
		if err != nil {
			return service.ListQuery{}, errors.New("invalid followUpTo date")
		}
		out.FollowUpTo = &to
	}

	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	out.Limit = pageSize
	out.Offset = (page - 1) * pageSize
	return out, nil
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actor, service.CreateInput{
		FullName:          req.FullName,
		Phone:             req.Phone,
		AltPhone:          req.AltPhone,
		Email:             req.Email,
		Place:             req.Place,
		OtherPlace:        req.OtherPlace,
		Gender:            req.Gender,
		DateOfBirth:       req.DateOfBirth.Value,
		LeadStatus:        req.LeadStatus,
		LeadPotential:     req.LeadPotential,
		Occupation:        req.Occupation,
		EducationLevel:    req.EducationLevel,
		CoursePreferences: req.CoursePreferences,
		ContactPoint:      req.ContactPoint,
		CampaignID:        req.CampaignID.Value,
		AssignedToID:      req.AssignedToID.Value,
		FollowUpDate:      req.FollowUpDate.Value,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead, time.Now()))
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, remarks, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadDetailResponse(lead, remarks, time.Now()))
}

func (h *Handler) GetForm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, _, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToFormState(lead))
}

func (h *Handler) Save(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.SaveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.SaveChanges(c.Request.Context(), actor, id, service.SaveInput{
		FullName:          req.FullName,
		Phone:             req.Phone,
		AltPhone:          req.AltPhone.Value,
		AltPhoneSet:       req.AltPhone.Set,
		Email:             req.Email.Value,
		EmailSet:          req.Email.Set,
		Place:             req.Place.Value,
		PlaceSet:          req.Place.Set,
		OtherPlace:        req.OtherPlace.Value,
		OtherPlaceSet:     req.OtherPlace.Set,
		Gender:            req.Gender.Value,
		GenderSet:         req.Gender.Set,
		DateOfBirth:       req.DateOfBirth.Value,
		DateOfBirthSet:    req.DateOfBirth.Set,
		LeadStatus:        req.LeadStatus,
		LeadPotential:     req.LeadPotential,
		Occupation:        req.Occupation.Value,
		OccupationSet:     req.Occupation.Set,
		EducationLevel:    req.EducationLevel.Value,
		EducationLevelSet: req.EducationLevel.Set,
		CoursePreferences: req.CoursePreferences,
		CoursePrefsSet:    req.CoursePreferences != nil,
		ContactPoint:      req.ContactPoint.Value,
		ContactPointSet:   req.ContactPoint.Set,
		CampaignID:        req.CampaignID.Value,
		CampaignIDSet:     req.CampaignID.Set,
		FollowUpDate:      req.FollowUpDate.Value,
		FollowUpDateSet:   req.FollowUpDate.Set,
		IsAdmissionTaken:  req.IsAdmissionTaken,
		RemarkText:        req.Remarks,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead, time.Now()))
}

func (h *Handler) AppendRemark(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.AppendRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.AppendRemark(c.Request.Context(), actor, id, req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead, time.Now()))
}

func (h *Handler) MarkRemarkRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid remark index", nil)
		return
	}

	lead, unread, err := h.svc.MarkRemarkRead(c.Request.Context(), actor, id, index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := transport.ToLeadResponse(lead, time.Now())
	resp.HasUnreadRemarks = unread > 0
	resp.UnreadRemarks = unread
	httpkit.OK(c, resp)
}

func (h *Handler) Assign(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Assign(c.Request.Context(), actor, id, req.UserID, req.AssignmentRemark)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead, time.Now()))
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"message": "lead deleted"})
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}
	httpkit.HandleError(c, err)
}
