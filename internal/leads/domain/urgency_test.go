package domain

import (
	"testing"
	"time"
)

func TestUrgencyTier(t *testing.T) {
	today := time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)

	date := func(day int) *time.Time {
		d := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	cases := []struct {
		name string
		due  *time.Time
		want ColorTag
	}{
		{"due today", date(10), ColorError},
		{"overdue", date(9), ColorError},
		{"due tomorrow", date(11), ColorWarning},
		{"due in two days", date(12), ColorSuccess},
		{"due later", date(15), ColorLight},
		{"no date", nil, ColorLight},
	}

	for _, tc := range cases {
		if got := UrgencyTier(tc.due, today); got != tc.want {
			t.Errorf("%s: UrgencyTier = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestUrgencyTierComparesCalendarDaysAcrossZones(t *testing.T) {
	// Dates read from the database are midnight UTC; "today" carries the
	// server's zone. Only the printed dates may matter.
	ist := time.FixedZone("IST", 5*3600+1800)
	today := time.Date(2024, 1, 10, 9, 0, 0, 0, ist)

	cases := []struct {
		name string
		due  time.Time
		want ColorTag
	}{
		{"due tomorrow", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), ColorWarning},
		{"due in two days", time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), ColorSuccess},
		{"due today", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), ColorError},
	}

	for _, tc := range cases {
		if got := UrgencyTier(&tc.due, today); got != tc.want {
			t.Errorf("%s: UrgencyTier = %q, want %q", tc.name, got, tc.want)
		}
	}

	west := time.FixedZone("UTC-7", -7*3600)
	today = time.Date(2024, 1, 10, 22, 0, 0, 0, west)
	due := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	if got := UrgencyTier(&due, today); got != ColorWarning {
		t.Errorf("negative-offset zone: UrgencyTier = %q, want %q", got, ColorWarning)
	}
}

func TestUrgencyTierIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)
	due := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)

	if got := UrgencyTier(&due, today); got != ColorWarning {
		t.Errorf("UrgencyTier with late-night times = %q, want %q", got, ColorWarning)
	}
}

func TestRemarkHelpers(t *testing.T) {
	if got := LatestRemark(nil); got != NoRemarksSentinel {
		t.Errorf("LatestRemark(empty) = %q, want sentinel", got)
	}

	remarks := []Remark{
		{Text: "first", IsUnread: false},
		{Text: "second", IsUnread: false},
	}
	if got := LatestRemark(remarks); got != "second" {
		t.Errorf("LatestRemark = %q, want second", got)
	}
	if HasUnread(remarks) {
		t.Error("HasUnread = true, want false")
	}

	remarks[0].IsUnread = true
	if !HasUnread(remarks) {
		t.Error("HasUnread = false, want true")
	}
}

func TestStatusChangeText(t *testing.T) {
	if got := StatusChangeText(StatusContacted); got != "Status changed to Contacted" {
		t.Errorf("StatusChangeText = %q", got)
	}
	if got := StatusChangeText(StatusNew); got != "Status changed to Pending" {
		t.Errorf("StatusChangeText = %q", got)
	}
}
