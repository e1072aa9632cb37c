package store

import (
	"context"
	"fmt"
	"time"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationTableName = "foodbridge.notifications"

var notificationColumns = utils.StructTagValues(types.Notification{})

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *types.Notification) error {

	if notification.ID == "" {
		notification.ID = utils.NanoID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	notificationMap := utils.StructToMap(notification)

	query, args, err := psql().Insert(notificationTableName).SetMap(notificationMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert notification query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create notification")
}

func (r *NotificationRepository) ByUser(ctx context.Context, userID string) ([]*types.Notification, error) {

	query, args, err := psql().Select(notificationColumns...).From(notificationTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notifications query: %w", err)
	}

	var notifications = make([]*types.Notification, 0)
	err = pgxscan.Select(ctx, r.db, &notifications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead is idempotent: marking an already-read notification affects
// the row again without changing it, which is not an error.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID string) error {

	query, args, err := psql().Update(notificationTableName).
		Set("read", true).
		Where(sq.Eq{"id": notificationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark read query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {

	query, args, err := psql().Select("count(*)").From(notificationTableName).
		Where(sq.Eq{"user_id": userID, "read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unread count query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.db, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}
