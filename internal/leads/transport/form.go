package transport

import (
	"time"

	"enrollhub_backend/internal/leads/repository"
)

// FormState is the flat snapshot an edit form is populated from: every
// editable field as a string, empty when unset. Built in one place so the
// UI consumes a single record instead of field-by-field setters.
type FormState struct {
	FullName          string   `json:"fullName"`
	Phone             string   `json:"phone"`
	AltPhone          string   `json:"altPhone"`
	Email             string   `json:"email"`
	Place             string   `json:"place"`
	OtherPlace        string   `json:"otherPlace"`
	Gender            string   `json:"gender"`
	DateOfBirth       string   `json:"dateOfBirth"`
	LeadStatus        string   `json:"leadStatus"`
	LeadPotential     string   `json:"leadPotential"`
	Occupation        string   `json:"occupation"`
	EducationLevel    string   `json:"educationLevel"`
	CoursePreferences []string `json:"coursePreferences"`
	ContactPoint      string   `json:"contactPoint"`
	CampaignID        string   `json:"campaignId"`
	AssignedToID      string   `json:"assignedToId"`
	FollowUpDate      string   `json:"followUpDate"`
	IsAdmissionTaken  bool     `json:"isAdmissionTaken"`
}

// ToFormState maps a stored lead onto its editable form snapshot.
func ToFormState(lead repository.Lead) FormState {
	form := FormState{
		FullName:          lead.FullName,
		Phone:             lead.Phone,
		AltPhone:          derefOrEmpty(lead.AltPhone),
		Email:             derefOrEmpty(lead.Email),
		Place:             derefOrEmpty(lead.Place),
		OtherPlace:        derefOrEmpty(lead.OtherPlace),
		Gender:            derefOrEmpty(lead.Gender),
		DateOfBirth:       formatDate(lead.DateOfBirth),
		LeadStatus:        lead.LeadStatus,
		LeadPotential:     derefOrEmpty(lead.LeadPotential),
		Occupation:        derefOrEmpty(lead.Occupation),
		EducationLevel:    derefOrEmpty(lead.EducationLevel),
		CoursePreferences: lead.CoursePreferences,
		ContactPoint:      derefOrEmpty(lead.ContactPoint),
		FollowUpDate:      formatDate(lead.FollowUpDate),
		IsAdmissionTaken:  lead.IsAdmissionTaken,
	}
	if lead.CampaignID != nil {
		form.CampaignID = lead.CampaignID.String()
	}
	if lead.AssignedToID != nil {
		form.AssignedToID = lead.AssignedToID.String()
	}
	return form
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format("2006-01-02")
}
