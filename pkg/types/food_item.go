package types

import "time"

type FoodStatus string

const (
	FoodStatusAvailable FoodStatus = "available"
	FoodStatusAssigned  FoodStatus = "assigned"
	FoodStatusCompleted FoodStatus = "completed"
)

// FoodItem is a donation listing. Status only moves forward:
// available -> assigned -> completed, always in lockstep with the
// paired Task.
type FoodItem struct {
	ID             string     `db:"id"`
	DonorID        string     `db:"donor_id"`
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	Quantity       string     `db:"quantity"`
	FoodType       string     `db:"food_type"`
	ExpiryDate     time.Time  `db:"expiry_date"`
	PickupLocation string     `db:"pickup_location"`
	PickupTimeFrom time.Time  `db:"pickup_time_from"`
	PickupTimeTo   time.Time  `db:"pickup_time_to"`
	Status         FoodStatus `db:"status"`
	Image          *string    `db:"image"`
	CreatedAt      time.Time  `db:"created_at"`

	// Resolved from profiles, never stored on the row.
	DonorName string `db:"-"`
}
