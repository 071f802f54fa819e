package exports

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"enrollhub_backend/internal/leads/domain"
	leadsrepo "enrollhub_backend/internal/leads/repository"
	"enrollhub_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Handler streams lead exports as CSV downloads.
type Handler struct {
	repo *leadsrepo.Repository
}

func NewHandler(repo *leadsrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	params := leadsrepo.ListParams{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    "createdAt",
		SortOrder: "asc",
		Limit:     parseLimit(c, 5000, 50000),
	}

	if status := c.Query("status"); status != "" {
		if !domain.IsKnownStatus(status) {
			httpkit.Error(c, http.StatusBadRequest, "unknown lead status", nil)
			return
		}
		params.Status = &status
	}
	if raw := c.Query("assignedTo"); raw != "" {
		if raw == "unassigned" {
			params.Unassigned = true
		} else {
			userID, err := uuid.Parse(raw)
			if err != nil {
				httpkit.Error(c, http.StatusBadRequest, "invalid assignedTo filter", nil)
				return
			}
			params.AssignedToID = &userID
		}
	}
	if raw := c.Query("followUpFrom"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid followUpFrom date", nil)
			return
		}
		params.FollowUpFrom = &from
	}
	if raw := c.Query("followUpTo"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid followUpTo date", nil)
			return
		}
		params.FollowUpTo = &to
	}

	leads, _, err := h.repo.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(csvHeaders()); err != nil {
		return
	}
	for _, lead := range leads {
		if err := writer.Write(leadCSVRow(lead)); err != nil {
			return
		}
	}
	writer.Flush()
}

func csvHeaders() []string {
	return []string{
		"Full Name",
		"Phone",
		"Email",
		"Place",
		"Status",
		"Potential",
		"Courses",
		"Contact Point",
		"Handled By",
		"Follow-up Date",
		"Admission Taken",
		"Created At",
	}
}

func leadCSVRow(lead leadsrepo.Lead) []string {
	return []string{
		lead.FullName,
		lead.Phone,
		derefStr(lead.Email),
		derefStr(lead.Place),
		domain.StatusLabel(domain.EffectiveStatus(lead.LeadStatus, lead.IsAdmissionTaken)),
		domain.PotentialLabel(derefStr(lead.LeadPotential)),
		strings.Join(lead.CoursePreferences, "; "),
		derefStr(lead.ContactPoint),
		derefStr(lead.HandledBy),
		formatDate(lead.FollowUpDate),
		strconv.FormatBool(lead.IsAdmissionTaken),
		lead.CreatedAt.Format(dateLayout),
	}
}

func parseLimit(c *gin.Context, fallback, max int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
