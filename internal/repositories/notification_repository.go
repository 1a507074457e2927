package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"factory_crm_backend/internal/models"
)

// NotificationRepository persists per-recipient notifications.
type NotificationRepository interface {
	CreateBatch(notifications []models.Notification) error
	ListForUser(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, int, error)
	CountUnread(userID int64) (int, error)
	MarkRead(userID, notificationID int64) (*models.Notification, error)
	MarkAllRead(userID int64) (int64, error)
}

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateBatch inserts all notifications with one multi-row statement.
func (r *notificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`INSERT INTO notifications (user_id, type, message, related_id, related_type, read, created_at) VALUES `)
	args := make([]interface{}, 0, len(notifications)*6)
	now := time.Now()
	for i, n := range notifications {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		base := i * 6
		queryBuilder.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, FALSE, $%d)", base+1, base+2, base+3, base+4, base+5, base+6))
		createdAt := n.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		args = append(args, n.UserID, n.Type, n.Message, n.RelatedID, n.RelatedType, createdAt)
	}
	if _, err := r.db.Exec(queryBuilder.String(), args...); err != nil {
		return wrapDBError("creating notifications", err)
	}
	return nil
}

func (r *notificationRepository) ListForUser(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, int, error) {
	limit, offset := pageOffset(page, pageSize)
	query := `SELECT id, user_id, type, message, related_id, related_type, read, read_at, created_at,
	                 COUNT(*) OVER() AS total_count
	          FROM notifications
	          WHERE user_id = $1 AND (NOT $2::boolean OR read = FALSE)
	          ORDER BY created_at DESC, id DESC
	          LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(query, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, wrapDBError("listing notifications", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	total := 0
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.RelatedID, &n.RelatedType, &n.Read, &n.ReadAt, &n.CreatedAt, &total); err != nil {
			return nil, 0, wrapDBError("scanning notification", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating notifications", err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(userID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID).Scan(&count); err != nil {
		return 0, wrapDBError("counting unread notifications", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(userID, notificationID int64) (*models.Notification, error) {
	query := `UPDATE notifications SET read = TRUE, read_at = COALESCE(read_at, $1)
	          WHERE id = $2 AND user_id = $3
	          RETURNING id, user_id, type, message, related_id, related_type, read, read_at, created_at`
	var n models.Notification
	err := r.db.QueryRow(query, time.Now(), notificationID, userID).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Message, &n.RelatedID, &n.RelatedType, &n.Read, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, wrapDBError("marking notification read", err)
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(userID int64) (int64, error) {
	result, err := r.db.Exec(`UPDATE notifications SET read = TRUE, read_at = $1 WHERE user_id = $2 AND read = FALSE`, time.Now(), userID)
	if err != nil {
		return 0, wrapDBError("marking all notifications read", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", ErrDatabaseError, err)
	}
	return n, nil
}
