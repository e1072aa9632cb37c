package types

import "time"

type NotificationType string

const (
	NotificationFoodAvailable   NotificationType = "food_available"
	NotificationTaskAssigned    NotificationType = "task_assigned"
	NotificationPickupScheduled NotificationType = "pickup_scheduled"
)

// Notification is an informational record for one user. After creation
// only the Read flag changes, and only from false to true.
type Notification struct {
	ID        string           `db:"id"`
	UserID    string           `db:"user_id"`
	Message   string           `db:"message"`
	Read      bool             `db:"read"`
	Type      NotificationType `db:"type"`
	ActionURL *string          `db:"action_url"`
	CreatedAt time.Time        `db:"created_at"`
}
