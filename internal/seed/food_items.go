package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"foodbridge/internal/store"
	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/k0kubun/pp/v3"
)

type fakeListing struct {
	Title          string
	Description    string
	Quantity       string
	FoodType       string
	PickupLocation string
}

var fakeListings = []fakeListing{
	{Title: "Day-old sourdough loaves", Description: "Baked yesterday, still fresh. Great for toast.", Quantity: "12 loaves", FoodType: "Bakery", PickupLocation: "14 Mill Road, West End"},
	{Title: "Mixed vegetable boxes", Description: "Slightly imperfect produce, perfectly edible.", Quantity: "8 boxes", FoodType: "Produce", PickupLocation: "3 Market Square, Old Town"},
	{Title: "Sandwich platters", Description: "Surplus from a catering order, refrigerated.", Quantity: "5 platters", FoodType: "Prepared", PickupLocation: "21 Quay Street, Harbourside"},
	{Title: "Tinned soup cases", Description: "Long-dated stock rotation.", Quantity: "4 cases", FoodType: "Canned", PickupLocation: "3 Market Square, Old Town"},
	{Title: "Fruit crates", Description: "Apples and pears, ripe now.", Quantity: "6 crates", FoodType: "Produce", PickupLocation: "14 Mill Road, West End"},
	{Title: "Pastry assortment", Description: "Croissants and danishes from this morning.", Quantity: "30 pieces", FoodType: "Bakery", PickupLocation: "21 Quay Street, Harbourside"},
}

type weightedFoodStatus struct {
	Status types.FoodStatus
	Weight int
}

var weightedStatuses = []weightedFoodStatus{
	{Status: types.FoodStatusAvailable, Weight: 55},
	{Status: types.FoodStatusAssigned, Weight: 25},
	{Status: types.FoodStatusCompleted, Weight: 20},
}

// SeedFakeDonations creates listings through the donation store so every
// item gets its paired task, then walks a share of them through the
// accept and complete transitions.
func SeedFakeDonations(
	ctx context.Context,
	pool *pgxpool.Pool,
	donations *store.DonationStore,
	count int,
	reset bool,
) error {
	if count <= 0 {
		fmt.Println("Skipping fake donations seed because count <= 0")
		return nil
	}

	if reset {
		result, err := pool.Exec(ctx, `DELETE FROM foodbridge.food_items WHERE title LIKE '[seed] %'`)
		if err != nil {
			return fmt.Errorf("failed to reset seeded fake donations: %w", err)
		}
		fmt.Printf("Reset seeded fake donations: %d deleted\n", result.RowsAffected())
	}

	donorIDs := seedFakeDonorIDs()
	if len(donorIDs) == 0 {
		return fmt.Errorf("no fake donors available; seed fake profiles first")
	}

	volunteerIDs := seedFakeVolunteerIDs()
	if len(volunteerIDs) == 0 {
		return fmt.Errorf("no fake volunteers available; seed fake profiles first")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for i := 0; i < count; i++ {
		listing := fakeListings[rng.Intn(len(fakeListings))]
		now := time.Now()
		expiry := now.Add(time.Duration(rng.Intn(5)+1) * 24 * time.Hour)

		item := &types.FoodItem{
			ID:             utils.NanoID(),
			DonorID:        donorIDs[rng.Intn(len(donorIDs))],
			Title:          fmt.Sprintf("[seed] %s", listing.Title),
			Description:    listing.Description,
			Quantity:       listing.Quantity,
			FoodType:       listing.FoodType,
			ExpiryDate:     expiry,
			PickupLocation: listing.PickupLocation,
			PickupTimeFrom: time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 9, 0, 0, 0, time.UTC),
			PickupTimeTo:   time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 17, 0, 0, 0, time.UTC),
			Status:         types.FoodStatusAvailable,
			CreatedAt:      now,
		}

		task := &types.Task{
			ID:         utils.NanoID(),
			FoodItemID: item.ID,
			Status:     types.TaskStatusPending,
			CreatedAt:  now,
		}

		if err := donations.CreateDonation(ctx, item, task); err != nil {
			return fmt.Errorf("failed to create fake donation %d: %w", i+1, err)
		}

		status := pickWeightedStatus(rng)
		if status == types.FoodStatusAssigned || status == types.FoodStatusCompleted {
			volunteerID := volunteerIDs[rng.Intn(len(volunteerIDs))]
			pickupAt := now.Add(24 * time.Hour)

			if _, err := donations.AcceptTask(ctx, task.ID, volunteerID, pickupAt); err != nil {
				return fmt.Errorf("failed to accept seeded task %s: %w", task.ID, err)
			}

			if status == types.FoodStatusCompleted {
				if _, err := donations.CompleteTask(ctx, task.ID, volunteerID); err != nil {
					return fmt.Errorf("failed to complete seeded task %s: %w", task.ID, err)
				}
			}
		}

		if created == 0 {
			pp.Println(item)
		}
		created++
	}

	fmt.Printf("Fake donations seeded: %d created\n", created)
	return nil
}

func seedFakeVolunteerIDs() []string {
	ids := make([]string, 0, len(fakeProfiles))
	for _, profile := range fakeProfiles {
		if profile.Role == types.RoleVolunteer {
			ids = append(ids, profile.ID)
		}
	}
	return ids
}

func pickWeightedStatus(rng *rand.Rand) types.FoodStatus {
	total := 0
	for _, item := range weightedStatuses {
		total += item.Weight
	}

	roll := rng.Intn(total)
	running := 0
	for _, item := range weightedStatuses {
		running += item.Weight
		if roll < running {
			return item.Status
		}
	}

	return types.FoodStatusAvailable
}
