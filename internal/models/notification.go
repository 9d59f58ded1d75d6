package models

import "time"

// NotificationType tags the group event that produced a notification.
type NotificationType string

const (
	NotifyTaskCompleted NotificationType = "task_completed"
	NotifyTaskCommented NotificationType = "task_commented"
	NotifyGroupInvite   NotificationType = "group_invite"
)

// Notification is one row of the remote notifications collection. The
// client only ever flips the read flag; notifications are never deleted.
type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"user_id"`
	Type        NotificationType  `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data,omitempty"`
	Read        bool              `json:"read"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NotificationWindow is the display cap of the notification list.
const NotificationWindow = 20
