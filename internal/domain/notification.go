package domain

import "time"

// NotificationType is the kind of event a notification describes.
type NotificationType string

const (
	NotificationQuestionClosed            NotificationType = "QUESTION_CLOSED"
	NotificationAssigneeDeadlineExceeded  NotificationType = "ASSIGNEE_DEADLINE_EXCEEDED"
	NotificationRequesterDeadlineExceeded NotificationType = "REQUESTER_DEADLINE_EXCEEDED"
)

// Notification is a per-user record. Only IsRead changes after creation.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Message   string
	RelatedID *string
	IsRead    bool
	CreatedAt time.Time
}
