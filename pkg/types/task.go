package types

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusAccepted  TaskStatus = "accepted"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is the pickup assignment paired 1:1 with a FoodItem. It is
// created alongside the item and never deleted. VolunteerID transitions
// exactly once, from nil to set, when the task is accepted.
type Task struct {
	ID                  string     `db:"id"`
	FoodItemID          string     `db:"food_item_id"`
	VolunteerID         *string    `db:"volunteer_id"`
	Status              TaskStatus `db:"status"`
	ScheduledPickupTime *time.Time `db:"scheduled_pickup_time"`
	CreatedAt           time.Time  `db:"created_at"`
}
