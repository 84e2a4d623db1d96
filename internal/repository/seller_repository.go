package repository

import (
	"context"
	"database/sql"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// SellerRepo provides access to the `seller_profiles` table. Profiles are
// keyed by the owning user id; a user has at most one.
type SellerRepo struct{ DB *sql.DB }

func NewSellerRepo(db *sql.DB) *SellerRepo { return &SellerRepo{DB: db} }

const sellerColumns = `user_id, dealership_name, document, status, rejection_reason, created_at, updated_at`

func scanSeller(scan func(dest ...any) error) (model.SellerProfile, error) {
	var p model.SellerProfile
	var reason sql.NullString
	err := scan(&p.UserID, &p.DealershipName, &p.Document, &p.Status,
		&reason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.SellerProfile{}, err
	}
	if reason.Valid {
		s := reason.String
		p.RejectionReason = &s
	}
	return p, nil
}

// Create inserts a new profile in PENDING state. Called in the same
// request as user registration for the SELLER role.
func (r *SellerRepo) Create(ctx context.Context, userID uint64, dealership, document string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO seller_profiles (user_id, dealership_name, document, status) VALUES (?,?,?,?)",
		userID, dealership, document, model.SellerPending)
	return err
}

// GetByUserID fetches the profile for a user. sql.ErrNoRows when absent.
func (r *SellerRepo) GetByUserID(ctx context.Context, userID uint64) (model.SellerProfile, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+sellerColumns+" FROM seller_profiles WHERE user_id=? LIMIT 1", userID)
	return scanSeller(row.Scan)
}

// Update persists the mutable columns after a guarded transition on the
// entity. rejection_reason is written as NULL when the transition cleared it.
func (r *SellerRepo) Update(ctx context.Context, p *model.SellerProfile) error {
	var reason any
	if p.RejectionReason != nil {
		reason = *p.RejectionReason
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE seller_profiles SET dealership_name=?, document=?, status=?, rejection_reason=?, updated_at=UTC_TIMESTAMP() WHERE user_id=?",
		p.DealershipName, p.Document, p.Status, reason, p.UserID)
	return err
}

// ListByStatus returns profiles in the given state ordered oldest first, so
// admins review the queue in submission order.
func (r *SellerRepo) ListByStatus(ctx context.Context, status model.SellerStatus) ([]model.SellerProfile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+sellerColumns+" FROM seller_profiles WHERE status=? ORDER BY created_at ASC", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SellerProfile, 0)
	for rows.Next() {
		p, err := scanSeller(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
