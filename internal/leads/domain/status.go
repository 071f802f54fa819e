// Package domain provides core business rules for the leads bounded context.
package domain

const (
	StatusNew           = "new"
	StatusContacted     = "contacted"
	StatusQualified     = "qualified"
	StatusNegotiation   = "negotiation"
	StatusConverted     = "converted"
	StatusCallBackLater = "callBackLater"
	StatusNotInterested = "notInterested"
	StatusLost          = "lost"
)

const (
	PotentialStrong  = "strongProspect"
	PotentialRegular = "potentialProspect"
	PotentialWeak    = "weakProspect"
	PotentialNone    = "notAProspect"
)

// ColorTag identifies the badge/tint class the UI applies to a value.
type ColorTag string

const (
	ColorSuccess ColorTag = "success"
	ColorInfo    ColorTag = "info"
	ColorWarning ColorTag = "warning"
	ColorError   ColorTag = "error"
	ColorLight   ColorTag = "light"
)

var knownStatuses = map[string]struct{}{
	StatusNew:           {},
	StatusContacted:     {},
	StatusQualified:     {},
	StatusNegotiation:   {},
	StatusConverted:     {},
	StatusCallBackLater: {},
	StatusNotInterested: {},
	StatusLost:          {},
}

var knownPotentials = map[string]struct{}{
	PotentialStrong:  {},
	PotentialRegular: {},
	PotentialWeak:    {},
	PotentialNone:    {},
}

func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

func IsKnownPotential(potential string) bool {
	_, ok := knownPotentials[potential]
	return ok
}

// EffectiveStatus returns the status shown to users. A confirmed admission
// overrides whatever the stored status says; an absent status reads as new.
func EffectiveStatus(leadStatus string, isAdmissionTaken bool) string {
	if isAdmissionTaken {
		return StatusConverted
	}
	if leadStatus == "" {
		return StatusNew
	}
	return leadStatus
}

// IsClosed reports whether a status ends the follow-up pipeline.
// Closed leads must not keep follow-up dates or calendar reminders.
func IsClosed(status string) bool {
	return status == StatusConverted || status == StatusLost
}

var statusLabels = map[string]string{
	StatusNew:           "Pending",
	StatusContacted:     "Contacted",
	StatusQualified:     "Qualified",
	StatusNegotiation:   "Negotiation",
	StatusConverted:     "Converted",
	StatusCallBackLater: "Call Back Later",
	StatusNotInterested: "Not Interested",
	StatusLost:          "Lost",
}

// StatusLabel maps a status code to its display label. Unknown codes pass
// through unchanged so a taxonomy addition never blanks existing rows.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// StatusColor maps a status code to its badge color.
func StatusColor(status string) ColorTag {
	switch status {
	case StatusConverted, StatusQualified:
		return ColorSuccess
	case StatusNegotiation, StatusContacted:
		return ColorInfo
	case StatusCallBackLater, StatusNew:
		return ColorWarning
	case StatusLost, StatusNotInterested:
		return ColorError
	default:
		return ColorLight
	}
}

var potentialLabels = map[string]string{
	PotentialStrong:  "Strong Prospect",
	PotentialRegular: "Potential Prospect",
	PotentialWeak:    "Weak Prospect",
	PotentialNone:    "Not a Prospect",
}

// PotentialLabel maps a potential tier to its display label, passing
// unknown codes through unchanged.
func PotentialLabel(potential string) string {
	if label, ok := potentialLabels[potential]; ok {
		return label
	}
	return potential
}

// PotentialStyleClass maps a potential tier to its badge color.
func PotentialStyleClass(potential string) ColorTag {
	switch potential {
	case PotentialStrong:
		return ColorSuccess
	case PotentialRegular:
		return ColorInfo
	case PotentialWeak:
		return ColorWarning
	case PotentialNone:
		return ColorError
	default:
		return ColorLight
	}
}
