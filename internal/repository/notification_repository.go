package repository

import (
	"context"
	"database/sql"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// NotificationRepo provides access to the `notifications` table. Rows are
// inserted by the notifier and mutated only to flip the read flag.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Insert writes one notification row and populates the generated ID.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	var link, entityType, entityID any
	if n.Link != nil {
		link = *n.Link
	}
	if n.EntityType != nil {
		entityType = *n.EntityType
	}
	if n.EntityID != nil {
		entityID = *n.EntityID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (user_id, kind, subject, body, link, entity_type, entity_id)
		 VALUES (?,?,?,?,?,?,?)`,
		n.UserID, n.Kind, n.Subject, n.Body, link, entityType, entityID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns the user's notifications newest first, capped at 100.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, kind, subject, body, link, entity_type, entity_id, is_read, created_at
		 FROM notifications WHERE user_id=? ORDER BY id DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var link, entityType sql.NullString
		var entityID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Subject, &n.Body,
			&link, &entityType, &entityID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if link.Valid {
			s := link.String
			n.Link = &s
		}
		if entityType.Valid {
			s := entityType.String
			n.EntityType = &s
		}
		if entityID.Valid {
			id := uint64(entityID.Int64)
			n.EntityID = &id
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag on one of the user's notifications. The
// user id in the WHERE clause enforces ownership.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUnread returns the user's unread badge count.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0", userID).Scan(&n)
	return n, err
}
