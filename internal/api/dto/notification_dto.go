package dto

import (
	"time"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
)

// NotificationListQuery holds inbox query parameters.
type NotificationListQuery struct {
	Unread   bool `query:"unread"`
	Page     int  `query:"page" validate:"omitempty,min=1"`
	PageSize int  `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// NotificationResponse is the serialized notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	RelatedID *string   `json:"related_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NewNotificationResponses maps a slice, never returning nil.
func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}
