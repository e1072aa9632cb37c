package store

import (
	"context"
	"fmt"
	"time"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foodItemTableName = "foodbridge.food_items"

var foodItemColumns = utils.StructTagValues(types.FoodItem{})

type FoodItemRepository struct {
	db DBTX
}

func NewFoodItemRepository(pool *pgxpool.Pool) *FoodItemRepository {
	return &FoodItemRepository{db: pool}
}

func (r *FoodItemRepository) WithTx(tx pgx.Tx) *FoodItemRepository {
	return &FoodItemRepository{db: tx}
}

func (r *FoodItemRepository) FoodItem(ctx context.Context, itemID string) (*types.FoodItem, error) {

	query, args, err := psql().Select(foodItemColumns...).From(foodItemTableName).
		Where(sq.Eq{"id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate food item query: %w", err)
	}

	var item = new(types.FoodItem)
	err = pgxscan.Get(ctx, r.db, item, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFoodItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch food item: %w", err)
	}

	return item, nil
}

func (r *FoodItemRepository) FoodItems(ctx context.Context) ([]*types.FoodItem, error) {

	query, args, err := psql().Select(foodItemColumns...).From(foodItemTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate food items query: %w", err)
	}

	var items = make([]*types.FoodItem, 0)
	err = pgxscan.Select(ctx, r.db, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch food items: %w", err)
	}

	return items, nil
}

func (r *FoodItemRepository) FoodItemsByDonor(ctx context.Context, donorID string) ([]*types.FoodItem, error) {

	query, args, err := psql().Select(foodItemColumns...).From(foodItemTableName).
		Where(sq.Eq{"donor_id": donorID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor food items query: %w", err)
	}

	var items = make([]*types.FoodItem, 0)
	err = pgxscan.Select(ctx, r.db, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donor food items: %w", err)
	}

	return items, nil
}

func (r *FoodItemRepository) Create(ctx context.Context, item *types.FoodItem) error {

	if item.ID == "" {
		item.ID = utils.NanoID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	itemMap := utils.StructToMap(item)

	query, args, err := psql().Insert(foodItemTableName).SetMap(itemMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert food item query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create food item")
}

// SetStatusFrom flips the item status only when the current status
// still matches from. Reports whether a row was updated.
func (r *FoodItemRepository) SetStatusFrom(ctx context.Context, itemID string, from, to types.FoodStatus) (bool, error) {

	query, args, err := psql().Update(foodItemTableName).
		Set("status", to).
		Where(sq.Eq{"id": itemID, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate food item status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update food item status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
