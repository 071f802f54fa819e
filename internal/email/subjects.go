package email

const (
	subjectLeadAssignedFmt     = "New lead assigned: %s"
	subjectFollowUpReminderFmt = "Follow-up due today: %s"
)
