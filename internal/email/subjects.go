package email

const (
	subjectFollowUpFmt        = "Ons telefoongesprek - vervolg op %s"
	subjectInterestedAlertFmt = "Afspraakverzoek: %s"
	subjectTransferAlertFmt   = "Overdracht gevraagd: %s"
)
