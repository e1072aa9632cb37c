package query

import (
	"testing"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() []*types.FoodItem {
	return []*types.FoodItem{
		{ID: "i1", DonorID: "d1", Title: "Sourdough loaves", FoodType: "Bakery", PickupLocation: "14 Mill Road, West End", Status: types.FoodStatusAvailable},
		{ID: "i2", DonorID: "d1", Title: "Pastry assortment", FoodType: "Bakery", PickupLocation: "21 Quay Street, Harbourside", Status: types.FoodStatusAvailable},
		{ID: "i3", DonorID: "d2", Title: "Vegetable boxes", FoodType: "Produce", PickupLocation: "3 Market Square, Old Town", Status: types.FoodStatusAssigned},
		{ID: "i4", DonorID: "d2", Title: "Fruit crates", FoodType: "Produce", PickupLocation: "8 Mill Lane, West End", Status: types.FoodStatusAvailable},
		{ID: "i5", DonorID: "d3", Title: "Sandwich platters", FoodType: "Prepared", PickupLocation: "West End", Status: types.FoodStatusCompleted},
	}
}

func ids(items []*types.FoodItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{"i1", "i2", "i4"}, ids(Available(snapshot())))
	assert.Empty(t, Available(nil))
}

func TestFilterByTypeAndLocation(t *testing.T) {
	items := snapshot()

	t.Run("empty filters match everything", func(t *testing.T) {
		assert.Len(t, FilterByTypeAndLocation(items, "", ""), len(items))
	})

	t.Run("by food type", func(t *testing.T) {
		assert.Equal(t, []string{"i1", "i2"}, ids(FilterByTypeAndLocation(items, "Bakery", "")))
	})

	t.Run("by location area", func(t *testing.T) {
		assert.Equal(t, []string{"i1", "i4", "i5"}, ids(FilterByTypeAndLocation(items, "", "West End")))
	})

	t.Run("both filters", func(t *testing.T) {
		assert.Equal(t, []string{"i1"}, ids(FilterByTypeAndLocation(items, "Bakery", "West End")))
	})

	t.Run("comparison is case sensitive", func(t *testing.T) {
		assert.Empty(t, FilterByTypeAndLocation(items, "", "west end"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterByTypeAndLocation(items, "Canned", ""))
	})
}

func TestLocationArea(t *testing.T) {
	assert.Equal(t, "West End", LocationArea("14 Mill Road, West End"))
	assert.Equal(t, "Harbourside", LocationArea("Unit 2, Quay Street, Harbourside"))
	assert.Equal(t, "West End", LocationArea("West End"))
	assert.Equal(t, "", LocationArea(""))
	assert.Equal(t, "", LocationArea("Mill Road,  "))
}

func TestTasksForVolunteer(t *testing.T) {
	tasks := []*types.Task{
		{ID: "t1", VolunteerID: utils.StringPtr("v1"), Status: types.TaskStatusAccepted},
		{ID: "t2", VolunteerID: nil, Status: types.TaskStatusPending},
		{ID: "t3", VolunteerID: utils.StringPtr("v2"), Status: types.TaskStatusCompleted},
		{ID: "t4", VolunteerID: utils.StringPtr("v1"), Status: types.TaskStatusCompleted},
	}

	mine := TasksForVolunteer(tasks, "v1")
	require.Len(t, mine, 2)
	assert.Equal(t, "t1", mine[0].ID)
	assert.Equal(t, "t4", mine[1].ID)

	assert.Empty(t, TasksForVolunteer(tasks, "v9"))
}

func TestDonationsForDonor(t *testing.T) {
	assert.Equal(t, []string{"i3", "i4"}, ids(DonationsForDonor(snapshot(), "d2")))
	assert.Empty(t, DonationsForDonor(snapshot(), "d9"))
}

func TestFoodTypes(t *testing.T) {
	assert.Equal(t, []string{"Bakery", "Prepared", "Produce"}, FoodTypes(snapshot()))
	assert.Empty(t, FoodTypes(nil))
}

func TestLocations(t *testing.T) {
	assert.Equal(t, []string{"Harbourside", "Old Town", "West End"}, Locations(snapshot()))
}

func TestResolveDonorNames(t *testing.T) {
	items := snapshot()
	profiles := []*types.Profile{
		{ID: "d1", Name: "Riverside Bakery"},
		{ID: "d2", Name: "Green Grocer Co"},
	}

	ResolveDonorNames(items, profiles)

	assert.Equal(t, "Riverside Bakery", items[0].DonorName)
	assert.Equal(t, "Green Grocer Co", items[2].DonorName)
	assert.Equal(t, "Unknown Donor", items[4].DonorName)
}

func TestDonorIDs(t *testing.T) {
	assert.Equal(t, []string{"d1", "d2", "d3"}, DonorIDs(snapshot()))
	assert.Empty(t, DonorIDs(nil))
}
