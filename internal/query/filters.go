// Package query derives filtered views from entity snapshots. Every
// function is a pure derivation: deterministic, no side effects, safe
// to re-run on any snapshot.
package query

import (
	"sort"
	"strings"

	"foodbridge/pkg/types"
)

// Available keeps only items still open for pickup.
func Available(items []*types.FoodItem) []*types.FoodItem {
	filtered := make([]*types.FoodItem, 0, len(items))
	for _, item := range items {
		if item.Status == types.FoodStatusAvailable {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// FilterByTypeAndLocation narrows items to an exact food type and a
// location area. Either filter may be empty to match everything. The
// area of an item is the trimmed substring after the last comma of its
// pickup location, compared case-sensitively. A positional heuristic,
// not geocoding.
func FilterByTypeAndLocation(items []*types.FoodItem, foodType, location string) []*types.FoodItem {
	filtered := make([]*types.FoodItem, 0, len(items))
	for _, item := range items {
		if foodType != "" && item.FoodType != foodType {
			continue
		}
		if location != "" && LocationArea(item.PickupLocation) != location {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// LocationArea extracts the trailing comma-segment of a pickup
// location, e.g. "12 Oak St, West End" -> "West End".
func LocationArea(pickupLocation string) string {
	parts := strings.Split(pickupLocation, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

func TasksForVolunteer(tasks []*types.Task, volunteerID string) []*types.Task {
	filtered := make([]*types.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.VolunteerID != nil && *task.VolunteerID == volunteerID {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

func DonationsForDonor(items []*types.FoodItem, donorID string) []*types.FoodItem {
	filtered := make([]*types.FoodItem, 0, len(items))
	for _, item := range items {
		if item.DonorID == donorID {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// FoodTypes aggregates the distinct food types across a snapshot,
// sorted, for filter dropdowns.
func FoodTypes(items []*types.FoodItem) []string {
	return distinct(items, func(item *types.FoodItem) string {
		return item.FoodType
	})
}

// Locations aggregates the distinct location areas across a snapshot,
// sorted, for filter dropdowns.
func Locations(items []*types.FoodItem) []string {
	return distinct(items, func(item *types.FoodItem) string {
		return LocationArea(item.PickupLocation)
	})
}

func distinct(items []*types.FoodItem, key func(*types.FoodItem) string) []string {
	seen := make(map[string]struct{}, len(items))
	values := make([]string, 0, len(items))
	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, k)
	}
	sort.Strings(values)
	return values
}

// ResolveDonorNames fills DonorName on each item from a profile
// snapshot, falling back to "Unknown Donor" for missing profiles.
func ResolveDonorNames(items []*types.FoodItem, profiles []*types.Profile) {
	names := make(map[string]string, len(profiles))
	for _, profile := range profiles {
		names[profile.ID] = profile.Name
	}

	for _, item := range items {
		if name, ok := names[item.DonorID]; ok {
			item.DonorName = name
			continue
		}
		item.DonorName = "Unknown Donor"
	}
}

// DonorIDs collects the distinct donor ids of a snapshot, for batch
// profile resolution.
func DonorIDs(items []*types.FoodItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.DonorID]; ok {
			continue
		}
		seen[item.DonorID] = struct{}{}
		ids = append(ids, item.DonorID)
	}
	return ids
}
