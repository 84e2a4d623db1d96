package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/utils"
)

// UserRepo provides access to the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, display_name, role, blocked, blocked_reason, blocked_at, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var reason sql.NullString
	var blockedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role,
		&u.Blocked, &reason, &blockedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if reason.Valid {
		r := reason.String
		u.BlockedReason = &r
	}
	if blockedAt.Valid {
		t := blockedAt.Time
		u.BlockedAt = &t
	}
	return u, nil
}

// Create inserts a user and returns its ID. The password is hashed with
// bcrypt at the given cost before it touches the database.
func (r *UserRepo) Create(ctx context.Context, email, password, displayName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, display_name, role) VALUES (?,?,?,?)",
		email, hash, displayName, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetTx fetches a user by id inside a transaction. Used by workflows that
// validate the buyer as part of a larger atomic unit.
func (r *UserRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error) {
	var u model.User
	var reason sql.NullString
	var blockedAt sql.NullTime
	err := tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role,
			&u.Blocked, &reason, &blockedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if reason.Valid {
		s := reason.String
		u.BlockedReason = &s
	}
	if blockedAt.Valid {
		t := blockedAt.Time
		u.BlockedAt = &t
	}
	return u, nil
}

// SetBlocked flips the blocked flag. Reason is stored when blocking and
// cleared when unblocking; blocked_at follows the flag.
func (r *UserRepo) SetBlocked(ctx context.Context, id uint64, blocked bool, reason string) error {
	if blocked {
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET blocked=1, blocked_reason=?, blocked_at=UTC_TIMESTAMP() WHERE id=?",
			reason, id)
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET blocked=0, blocked_reason=NULL, blocked_at=NULL WHERE id=?", id)
	return err
}

// IsBlocked returns only the blocked flag; it backs the block-status cache
// loader and deliberately avoids scanning the full row.
func (r *UserRepo) IsBlocked(ctx context.Context, id uint64) (bool, error) {
	var blocked bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT blocked FROM users WHERE id=? LIMIT 1", id).Scan(&blocked)
	return blocked, err
}

// ListAdmins returns the ids of all admin users, used when a workflow needs
// to notify every administrator.
func (r *UserRepo) ListAdmins(ctx context.Context) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id FROM users WHERE role=?", model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
