package seed

import (
	"context"
	"errors"
	"fmt"

	"foodbridge/internal/store"
	"foodbridge/internal/utils"
	"foodbridge/pkg/types"
)

type fakeProfileSeed struct {
	ID       string
	Name     string
	Email    string
	Role     types.Role
	Location string
	Phone    string
}

var fakeProfiles = []fakeProfileSeed{
	{ID: "11111111-1111-1111-1111-111111111111", Name: "Riverside Bakery", Email: "riverside.bakery+seed1@example.com", Role: types.RoleDonor, Location: "14 Mill Road, West End", Phone: "+44 7700 900101"},
	{ID: "22222222-2222-2222-2222-222222222222", Name: "Green Grocer Co", Email: "green.grocer+seed2@example.com", Role: types.RoleDonor, Location: "3 Market Square, Old Town", Phone: "+44 7700 900102"},
	{ID: "33333333-3333-3333-3333-333333333333", Name: "Harbour Deli", Email: "harbour.deli+seed3@example.com", Role: types.RoleDonor, Location: "21 Quay Street, Harbourside", Phone: "+44 7700 900103"},
	{ID: "44444444-4444-4444-4444-444444444444", Name: "Priya Shah", Email: "priya.shah+seed4@example.com", Role: types.RoleVolunteer, Location: "West End", Phone: "+44 7700 900104"},
	{ID: "55555555-5555-5555-5555-555555555555", Name: "Marcus Bell", Email: "marcus.bell+seed5@example.com", Role: types.RoleVolunteer, Location: "Old Town", Phone: "+44 7700 900105"},
	{ID: "66666666-6666-6666-6666-666666666666", Name: "Sofia Reyes", Email: "sofia.reyes+seed6@example.com", Role: types.RoleVolunteer, Location: "Harbourside", Phone: "+44 7700 900106"},
	{ID: "77777777-7777-7777-7777-777777777777", Name: "Community Kitchen", Email: "community.kitchen+seed7@example.com", Role: types.RoleBeneficiary, Location: "West End", Phone: "+44 7700 900107"},
	{ID: "88888888-8888-8888-8888-888888888888", Name: "Shelter Trust", Email: "shelter.trust+seed8@example.com", Role: types.RoleBeneficiary, Location: "Old Town", Phone: "+44 7700 900108"},
}

func seedFakeDonorIDs() []string {
	ids := make([]string, 0, len(fakeProfiles))
	for _, profile := range fakeProfiles {
		if profile.Role == types.RoleDonor {
			ids = append(ids, profile.ID)
		}
	}
	return ids
}

func SeedFakeProfiles(ctx context.Context, profileRepo *store.ProfileRepository) error {
	seeded := 0
	for _, fakeProfile := range fakeProfiles {
		_, err := profileRepo.Profile(ctx, fakeProfile.ID)
		if err != nil {
			if !errors.Is(err, types.ErrProfileNotFound) {
				return fmt.Errorf("failed to fetch fake profile %s: %w", fakeProfile.ID, err)
			}

			newProfile := &types.Profile{
				ID:       fakeProfile.ID,
				Name:     fakeProfile.Name,
				Email:    fakeProfile.Email,
				Role:     fakeProfile.Role,
				Location: utils.StringPtr(fakeProfile.Location),
				Phone:    utils.StringPtr(fakeProfile.Phone),
			}

			if err := profileRepo.Create(ctx, newProfile); err != nil {
				return fmt.Errorf("failed to create fake profile %s: %w", fakeProfile.ID, err)
			}
			seeded++
			continue
		}

		if err := profileRepo.UpsertIdentity(ctx, fakeProfile.ID, fakeProfile.Email, fakeProfile.Name, fakeProfile.Role); err != nil {
			return fmt.Errorf("failed to refresh fake profile %s: %w", fakeProfile.ID, err)
		}
		seeded++
	}

	fmt.Printf("Fake profiles seeded: %d upserted\n", seeded)
	return nil
}
