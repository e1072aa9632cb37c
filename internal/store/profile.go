package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileTableName = "foodbridge.profiles"

var profileColumns = utils.StructTagValues(types.Profile{})

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: pool}
}

func (r *ProfileRepository) Profile(ctx context.Context, profileID string) (*types.Profile, error) {

	query, args, err := psql().Select(profileColumns...).From(profileTableName).
		Where(sq.Eq{"id": profileID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.db, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

func (r *ProfileRepository) ProfilesByIDs(ctx context.Context, profileIDs []string) ([]*types.Profile, error) {
	if len(profileIDs) == 0 {
		return []*types.Profile{}, nil
	}

	query, args, err := psql().Select(profileColumns...).From(profileTableName).
		Where(sq.Eq{"id": profileIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles-by-ids query: %w", err)
	}

	var profiles []*types.Profile
	err = pgxscan.Select(ctx, r.db, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles by ids: %w", err)
	}

	return profiles, nil
}

func (r *ProfileRepository) ProfilesByRoles(ctx context.Context, roles []types.Role) ([]*types.Profile, error) {
	if len(roles) == 0 {
		return []*types.Profile{}, nil
	}

	query, args, err := psql().Select(profileColumns...).From(profileTableName).
		Where(sq.Eq{"role": roles}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles-by-roles query: %w", err)
	}

	var profiles = make([]*types.Profile, 0)
	err = pgxscan.Select(ctx, r.db, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles by roles: %w", err)
	}

	return profiles, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *types.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query, args, err := psql().Insert(profileTableName).
		SetMap(utils.StructToMap(profile)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create profile query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// UpsertIdentity refreshes the identity-provider fields on login. The
// role is written only on first insert; it never changes afterwards.
func (r *ProfileRepository) UpsertIdentity(ctx context.Context, profileID, email, name string, role types.Role) error {
	now := time.Now()

	trimmedEmail := strings.TrimSpace(email)
	trimmedName := strings.TrimSpace(name)

	query, args, err := psql().Insert(profileTableName).
		Columns("id", "email", "name", "role", "created_at", "updated_at").
		Values(profileID, trimmedEmail, trimmedName, role, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert identity query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert profile identity fields: %w", err)
	}

	return nil
}
