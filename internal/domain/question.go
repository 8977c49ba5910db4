package domain

import "time"

// QuestionStatus enumerates lifecycle states for questions.
type QuestionStatus string

const (
	QuestionStatusNew             QuestionStatus = "NEW"
	QuestionStatusInProgress      QuestionStatus = "IN_PROGRESS"
	QuestionStatusPendingApproval QuestionStatus = "PENDING_APPROVAL"
	QuestionStatusClosed          QuestionStatus = "CLOSED"
)

// AllQuestionStatuses lists every status in lifecycle order.
var AllQuestionStatuses = []QuestionStatus{
	QuestionStatusNew,
	QuestionStatusInProgress,
	QuestionStatusPendingApproval,
	QuestionStatusClosed,
}

// Valid reports whether s is a known status.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusNew, QuestionStatusInProgress, QuestionStatusPendingApproval, QuestionStatusClosed:
		return true
	}
	return false
}

// QuestionPriority enumerates urgency.
type QuestionPriority string

const (
	QuestionPriorityLow    QuestionPriority = "LOW"
	QuestionPriorityMedium QuestionPriority = "MEDIUM"
	QuestionPriorityHigh   QuestionPriority = "HIGH"
)

// Question belongs to exactly one project.
type Question struct {
	ID                 string
	ProjectID          string
	Title              string
	Content            string
	CreatorID          string
	AssigneeID         string
	Status             QuestionStatus
	Priority           QuestionPriority
	Deadline           *time.Time
	IsDeadlineNotified bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
