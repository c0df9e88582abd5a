package domain

// A Draft holds the not yet submitted fields of a product card.
// LocalPhoto is a path or file:// URI of a newly chosen photo, empty if none.
type Draft struct {
	Name          string
	Price         string
	Description   string
	CategoryLabel string
	LocalPhoto    string
}

type SubmissionStatus int

const (
	SubmissionIdle SubmissionStatus = iota
	SubmissionPending
	SubmissionSucceeded
	SubmissionFailed
	// SubmissionRejected is returned to a caller that raced a running
	// submission. It is never published.
	SubmissionRejected
)

func (s SubmissionStatus) String() string {
	switch s {
	case SubmissionPending:
		return "pending"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	case SubmissionRejected:
		return "rejected"
	default:
		return "idle"
	}
}

// SubmissionState is the observable outcome of the submission workflow.
type SubmissionState struct {
	Status  SubmissionStatus
	Success bool
	Message string
}

// CardState tracks an in-flight mutation of a single product card.
type CardState int

const (
	CardIdle CardState = iota
	CardPendingDelete
	CardPendingHistoryClear
)

func (s CardState) String() string {
	switch s {
	case CardPendingDelete:
		return "pending_delete"
	case CardPendingHistoryClear:
		return "pending_history_clear"
	default:
		return "idle"
	}
}
