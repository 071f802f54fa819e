package transport

import (
	"time"

	"enrollhub_backend/internal/calllist/domain"
	"enrollhub_backend/internal/calllist/repository"

	"github.com/google/uuid"
)

type CreateEntryRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=150"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	SocialHandle *string `json:"socialHandle" validate:"omitempty,max=150"`
	Source       *string `json:"source" validate:"omitempty,max=150"`
	Purpose      *string `json:"purpose" validate:"omitempty,max=500"`
	Status       string  `json:"status" validate:"omitempty"`
	AssignedToID *string `json:"assignedToId" validate:"omitempty,uuid"`
}

type UpdateEntryRequest struct {
	Name         OptionalString `json:"name"`
	Phone        OptionalString `json:"phone"`
	SocialHandle OptionalString `json:"socialHandle"`
	Source       OptionalString `json:"source"`
	Purpose      OptionalString `json:"purpose"`
	Status       *string        `json:"status"`
	AssignedToID OptionalUUID   `json:"assignedToId"`
	Remarks      string         `json:"remarks" validate:"max=2000"`
}

type ListEntriesQuery struct {
	Status   *string `form:"status"`
	Search   string  `form:"search" validate:"max=100"`
	Page     int     `form:"page"`
	PageSize int     `form:"pageSize"`
}

type RemarkResponse struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	HandledBy string    `json:"handledBy"`
	Status    string    `json:"status"`
	IsUnread  bool      `json:"isUnread"`
	CreatedAt time.Time `json:"createdAt"`
}

type EntryResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         *string    `json:"name,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	SocialHandle *string    `json:"socialHandle,omitempty"`
	Source       *string    `json:"source,omitempty"`
	Purpose      *string    `json:"purpose,omitempty"`
	Status       string     `json:"status"`
	StatusLabel  string     `json:"statusLabel"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type EntryDetailResponse struct {
	EntryResponse
	Remarks []RemarkResponse `json:"remarks"`
}

type EntryListResponse struct {
	Items    []EntryResponse `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

func ToEntryResponse(entry repository.Entry) EntryResponse {
	return EntryResponse{
		ID:           entry.ID,
		Name:         entry.Name,
		Phone:        entry.Phone,
		SocialHandle: entry.SocialHandle,
		Source:       entry.Source,
		Purpose:      entry.Purpose,
		Status:       entry.Status,
		StatusLabel:  domain.StatusLabel(entry.Status),
		AssignedToID: entry.AssignedToID,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}

func ToEntryDetailResponse(entry repository.Entry, remarks []repository.Remark) EntryDetailResponse {
	resp := EntryDetailResponse{
		EntryResponse: ToEntryResponse(entry),
		Remarks:       make([]RemarkResponse, 0, len(remarks)),
	}
	for _, remark := range remarks {
		resp.Remarks = append(resp.Remarks, RemarkResponse{
			ID:        remark.ID,
			Text:      remark.Text,
			HandledBy: remark.HandledBy,
			Status:    remark.Status,
			IsUnread:  remark.IsUnread,
			CreatedAt: remark.CreatedAt,
		})
	}
	return resp
}
