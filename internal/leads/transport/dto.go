// Package transport defines the request/response shapes for the leads API.
package transport

import (
	"time"

	"enrollhub_backend/internal/leads/domain"
	"enrollhub_backend/internal/leads/repository"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	FullName          string       `json:"fullName" validate:"required,min=2,max=150"`
	Phone             string       `json:"phone" validate:"required,min=5,max=20"`
	AltPhone          *string      `json:"altPhone" validate:"omitempty,min=5,max=20"`
	Email             *string      `json:"email" validate:"omitempty,email"`
	Place             *string      `json:"place" validate:"omitempty,max=150"`
	OtherPlace        *string      `json:"otherPlace" validate:"omitempty,max=150"`
	Gender            *string      `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth       OptionalDate `json:"dateOfBirth"`
	LeadStatus        string       `json:"leadStatus" validate:"omitempty"`
	LeadPotential     *string      `json:"leadPotential" validate:"omitempty"`
	Occupation        *string      `json:"occupation" validate:"omitempty,max=100"`
	EducationLevel    *string      `json:"educationLevel" validate:"omitempty,max=100"`
	CoursePreferences []string     `json:"coursePreferences" validate:"omitempty,max=20"`
	ContactPoint      *string      `json:"contactPoint" validate:"omitempty,max=100"`
	CampaignID        OptionalUUID `json:"campaignId"`
	AssignedToID      OptionalUUID `json:"assignedToId"`
	FollowUpDate      OptionalDate `json:"followUpDate"`
}

// SaveLeadRequest is one edit-form submission. Absent keys leave the field
// untouched; explicit nulls clear it.
type SaveLeadRequest struct {
	FullName          *string        `json:"fullName" validate:"omitempty,min=2,max=150"`
	Phone             *string        `json:"phone" validate:"omitempty,min=5,max=20"`
	AltPhone          OptionalString `json:"altPhone"`
	Email             OptionalString `json:"email"`
	Place             OptionalString `json:"place"`
	OtherPlace        OptionalString `json:"otherPlace"`
	Gender            OptionalString `json:"gender"`
	DateOfBirth       OptionalDate   `json:"dateOfBirth"`
	LeadStatus        *string        `json:"leadStatus"`
	LeadPotential     *string        `json:"leadPotential"`
	Occupation        OptionalString `json:"occupation"`
	EducationLevel    OptionalString `json:"educationLevel"`
	CoursePreferences []string       `json:"coursePreferences"`
	ContactPoint      OptionalString `json:"contactPoint"`
	CampaignID        OptionalUUID   `json:"campaignId"`
	FollowUpDate      OptionalDate   `json:"followUpDate"`
	IsAdmissionTaken  *bool          `json:"isAdmissionTaken"`
	Remarks           string         `json:"remarks" validate:"max=2000"`
}

type AssignLeadRequest struct {
	UserID           uuid.UUID `json:"userId" validate:"required"`
	AssignmentRemark *string   `json:"assignmentRemark" validate:"omitempty,max=500"`
}

type AppendRemarkRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type ListLeadsQuery struct {
	Status       *string `form:"status"`
	Potential    *string `form:"potential"`
	AssignedTo   string  `form:"assignedTo"`
	CampaignID   *string `form:"campaignId"`
	Search       string  `form:"search" validate:"max=100"`
	FollowUpFrom string  `form:"followUpFrom"`
	FollowUpTo   string  `form:"followUpTo"`
	Page         int     `form:"page"`
	PageSize     int     `form:"pageSize"`
	SortBy       string  `form:"sortBy" validate:"omitempty,oneof=createdAt fullName phone leadStatus leadPotential followUpDate assignedTo"`
	SortOrder    string  `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type RemarkResponse struct {
	ID               uuid.UUID  `json:"id"`
	Kind             string     `json:"kind"`
	Text             string     `json:"text"`
	HandledBy        string     `json:"handledBy"`
	LeadStatus       string     `json:"leadStatus"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate,omitempty"`
	AssignedFrom     *uuid.UUID `json:"assignedFrom,omitempty"`
	AssignedTo       *uuid.UUID `json:"assignedTo,omitempty"`
	IsUnread         bool       `json:"isUnread"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	FullName          string     `json:"fullName"`
	Phone             string     `json:"phone"`
	AltPhone          *string    `json:"altPhone,omitempty"`
	Email             *string    `json:"email,omitempty"`
	Place             *string    `json:"place,omitempty"`
	OtherPlace        *string    `json:"otherPlace,omitempty"`
	Gender            *string    `json:"gender,omitempty"`
	DateOfBirth       *time.Time `json:"dateOfBirth,omitempty"`
	LeadStatus        string     `json:"leadStatus"`
	EffectiveStatus   string     `json:"effectiveStatus"`
	StatusLabel       string     `json:"statusLabel"`
	StatusColor       string     `json:"statusColor"`
	LeadPotential     *string    `json:"leadPotential,omitempty"`
	PotentialLabel    string     `json:"potentialLabel,omitempty"`
	PotentialStyle    string     `json:"potentialStyle,omitempty"`
	Occupation        *string    `json:"occupation,omitempty"`
	EducationLevel    *string    `json:"educationLevel,omitempty"`
	CoursePreferences []string   `json:"coursePreferences,omitempty"`
	ContactPoint      *string    `json:"contactPoint,omitempty"`
	CampaignID        *uuid.UUID `json:"campaignId,omitempty"`
	AssignedToID      *uuid.UUID `json:"assignedToId,omitempty"`
	AssignmentRemark  *string    `json:"assignmentRemark,omitempty"`
	HandledBy         *string    `json:"handledBy,omitempty"`
	FollowUpDate      *time.Time `json:"followUpDate,omitempty"`
	Urgency           string     `json:"urgency"`
	IsAdmissionTaken  bool       `json:"isAdmissionTaken"`
	LatestRemark      string     `json:"latestRemark,omitempty"`
	HasUnreadRemarks  bool       `json:"hasUnreadRemarks"`
	UnreadRemarks     int        `json:"unreadRemarks"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type LeadDetailResponse struct {
	LeadResponse
	Remarks []RemarkResponse `json:"remarks"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// ToLeadResponse derives the display fields (labels, colors, urgency) so
// clients never store them.
func ToLeadResponse(lead repository.Lead, now time.Time) LeadResponse {
	effective := domain.EffectiveStatus(lead.LeadStatus, lead.IsAdmissionTaken)

	resp := LeadResponse{
		ID:                lead.ID,
		FullName:          lead.FullName,
		Phone:             lead.Phone,
		AltPhone:          lead.AltPhone,
		Email:             lead.Email,
		Place:             lead.Place,
		OtherPlace:        lead.OtherPlace,
		Gender:            lead.Gender,
		DateOfBirth:       lead.DateOfBirth,
		LeadStatus:        lead.LeadStatus,
		EffectiveStatus:   effective,
		StatusLabel:       domain.StatusLabel(effective),
		StatusColor:       string(domain.StatusColor(effective)),
		LeadPotential:     lead.LeadPotential,
		Occupation:        lead.Occupation,
		EducationLevel:    lead.EducationLevel,
		CoursePreferences: lead.CoursePreferences,
		ContactPoint:      lead.ContactPoint,
		CampaignID:        lead.CampaignID,
		AssignedToID:      lead.AssignedToID,
		AssignmentRemark:  lead.AssignmentRemark,
		HandledBy:         lead.HandledBy,
		FollowUpDate:      lead.FollowUpDate,
		Urgency:           string(domain.UrgencyTier(lead.FollowUpDate, now)),
		IsAdmissionTaken:  lead.IsAdmissionTaken,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
	if lead.LeadPotential != nil {
		resp.PotentialLabel = domain.PotentialLabel(*lead.LeadPotential)
		resp.PotentialStyle = string(domain.PotentialStyleClass(*lead.LeadPotential))
	}
	return resp
}

func ToRemarkResponse(remark domain.Remark) RemarkResponse {
	return RemarkResponse{
		ID:               remark.ID,
		Kind:             remark.Kind,
		Text:             remark.Text,
		HandledBy:        remark.HandledBy,
		LeadStatus:       remark.LeadStatus,
		NextFollowUpDate: remark.NextFollowUpDate,
		AssignedFrom:     remark.AssignedFromUserID,
		AssignedTo:       remark.AssignedToUserID,
		IsUnread:         remark.IsUnread,
		CreatedAt:        remark.CreatedAt,
	}
}

func ToLeadDetailResponse(lead repository.Lead, remarks []domain.Remark, now time.Time) LeadDetailResponse {
	resp := LeadDetailResponse{
		LeadResponse: ToLeadResponse(lead, now),
		Remarks:      make([]RemarkResponse, 0, len(remarks)),
	}
	resp.LatestRemark = domain.LatestRemark(remarks)
	resp.HasUnreadRemarks = domain.HasUnread(remarks)
	resp.UnreadRemarks = domain.CountUnread(remarks)
	for _, remark := range remarks {
		resp.Remarks = append(resp.Remarks, ToRemarkResponse(remark))
	}
	return resp
}
