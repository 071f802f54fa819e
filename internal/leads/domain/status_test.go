package domain

import "testing"

func TestEffectiveStatusAdmissionOverride(t *testing.T) {
	statuses := []string{
		StatusNew, StatusContacted, StatusQualified, StatusNegotiation,
		StatusConverted, StatusCallBackLater, StatusNotInterested, StatusLost,
		"",
	}

	for _, status := range statuses {
		if got := EffectiveStatus(status, true); got != StatusConverted {
			t.Errorf("EffectiveStatus(%q, admission=true) = %q, want %q", status, got, StatusConverted)
		}
	}
}

func TestEffectiveStatusWithoutAdmission(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{StatusContacted, StatusContacted},
		{StatusLost, StatusLost},
		{"", StatusNew},
	}

	for _, tc := range cases {
		if got := EffectiveStatus(tc.status, false); got != tc.want {
			t.Errorf("EffectiveStatus(%q, false) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestStatusColorMapping(t *testing.T) {
	cases := []struct {
		status string
		want   ColorTag
	}{
		{StatusConverted, ColorSuccess},
		{StatusQualified, ColorSuccess},
		{StatusNegotiation, ColorInfo},
		{StatusContacted, ColorInfo},
		{StatusCallBackLater, ColorWarning},
		{StatusNew, ColorWarning},
		{StatusLost, ColorError},
		{StatusNotInterested, ColorError},
		{"somethingElse", ColorLight},
	}

	for _, tc := range cases {
		// Repeated calls must be stable: the mapping depends on the code alone.
		for i := 0; i < 3; i++ {
			if got := StatusColor(tc.status); got != tc.want {
				t.Errorf("StatusColor(%q) = %q, want %q", tc.status, got, tc.want)
			}
		}
	}
}

func TestStatusLabelFailOpen(t *testing.T) {
	if got := StatusLabel(StatusNew); got != "Pending" {
		t.Errorf("StatusLabel(new) = %q, want Pending", got)
	}
	if got := StatusLabel(StatusCallBackLater); got != "Call Back Later" {
		t.Errorf("StatusLabel(callBackLater) = %q, want Call Back Later", got)
	}
	// Unknown codes pass through unchanged.
	if got := StatusLabel("futureStatus"); got != "futureStatus" {
		t.Errorf("StatusLabel(futureStatus) = %q, want futureStatus", got)
	}
}

func TestPotentialLabelsAndStyles(t *testing.T) {
	cases := []struct {
		potential string
		label     string
		style     ColorTag
	}{
		{PotentialStrong, "Strong Prospect", ColorSuccess},
		{PotentialRegular, "Potential Prospect", ColorInfo},
		{PotentialWeak, "Weak Prospect", ColorWarning},
		{PotentialNone, "Not a Prospect", ColorError},
		{"unknown", "unknown", ColorLight},
	}

	for _, tc := range cases {
		if got := PotentialLabel(tc.potential); got != tc.label {
			t.Errorf("PotentialLabel(%q) = %q, want %q", tc.potential, got, tc.label)
		}
		if got := PotentialStyleClass(tc.potential); got != tc.style {
			t.Errorf("PotentialStyleClass(%q) = %q, want %q", tc.potential, got, tc.style)
		}
	}
}

func TestIsClosed(t *testing.T) {
	if !IsClosed(StatusConverted) || !IsClosed(StatusLost) {
		t.Error("converted and lost must be closed statuses")
	}
	if IsClosed(StatusNotInterested) || IsClosed(StatusNew) {
		t.Error("notInterested and new must not be closed statuses")
	}
}
