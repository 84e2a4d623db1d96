package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// VisitRepo provides CRUD operations for viewing appointments. Visits are
// written outside reservation transactions except for the cascade
// cancellation applied by the expiration sweep.
type VisitRepo struct{ DB *sql.DB }

func NewVisitRepo(db *sql.DB) *VisitRepo { return &VisitRepo{DB: db} }

const visitColumns = `id, vehicle_id, buyer_id, seller_id, scheduled_at, status, buyer_notes, seller_notes, cancel_reason, created_at, updated_at`

func scanVisit(scan func(dest ...any) error) (model.Visit, error) {
	var v model.Visit
	var bn, sn, cr sql.NullString
	err := scan(&v.ID, &v.VehicleID, &v.BuyerID, &v.SellerID, &v.ScheduledAt,
		&v.Status, &bn, &sn, &cr, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Visit{}, err
	}
	if bn.Valid {
		s := bn.String
		v.BuyerNotes = &s
	}
	if sn.Valid {
		s := sn.String
		v.SellerNotes = &s
	}
	if cr.Valid {
		s := cr.String
		v.CancelReason = &s
	}
	return v, nil
}

// Create inserts a new PENDING visit and populates the generated ID.
func (r *VisitRepo) Create(ctx context.Context, v *model.Visit) error {
	var notes any
	if v.BuyerNotes != nil {
		notes = *v.BuyerNotes
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO visits (vehicle_id, buyer_id, seller_id, scheduled_at, status, buyer_notes)
		 VALUES (?,?,?,?,?,?)`,
		v.VehicleID, v.BuyerID, v.SellerID,
		v.ScheduledAt.UTC().Format("2006-01-02 15:04:05"), model.VisitPending, notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	v.Status = model.VisitPending
	return nil
}

// GetByID fetches a visit. sql.ErrNoRows when absent.
func (r *VisitRepo) GetByID(ctx context.Context, id uint64) (model.Visit, error) {
	return scanVisit(r.DB.QueryRowContext(ctx,
		"SELECT "+visitColumns+" FROM visits WHERE id=? LIMIT 1", id).Scan)
}

// SetStatus persists a status change plus the optional note columns that go
// with it. Nil pointers leave the stored values untouched.
func (r *VisitRepo) SetStatus(ctx context.Context, id uint64, status model.VisitStatus, sellerNotes, cancelReason *string) error {
	var notes, reason any
	if sellerNotes != nil {
		notes = *sellerNotes
	}
	if cancelReason != nil {
		reason = *cancelReason
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE visits SET status=?,
		        seller_notes=COALESCE(?, seller_notes),
		        cancel_reason=COALESCE(?, cancel_reason),
		        updated_at=UTC_TIMESTAMP()
		 WHERE id=?`,
		status, notes, reason, id)
	return err
}

// CountActiveOnDay counts non-cancelled visits for a vehicle on the
// calendar day of the given instant (UTC). Backs the per-day visit cap.
func (r *VisitRepo) CountActiveOnDay(ctx context.Context, vehicleID uint64, day time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits
		 WHERE vehicle_id=? AND DATE(scheduled_at)=? AND status<>?`,
		vehicleID, day.UTC().Format("2006-01-02"), model.VisitCancelled).Scan(&n)
	return n, err
}

// CancelPendingTx cancels every PENDING visit for the vehicle+buyer pair
// inside the caller's transaction, recording the reason. Returns the number
// of visits cancelled. Used by the sweep when the owning reservation
// expires.
func (r *VisitRepo) CancelPendingTx(ctx context.Context, tx *sql.Tx, vehicleID, buyerID uint64, reason string) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE visits SET status=?, cancel_reason=?, updated_at=UTC_TIMESTAMP()
		 WHERE vehicle_id=? AND buyer_id=? AND status=?`,
		model.VisitCancelled, reason, vehicleID, buyerID, model.VisitPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// VisitDetail is the listing row with the vehicle joined in, shared by the
// buyer and seller surfaces.
type VisitDetail struct {
	ID           uint64  `json:"id"`
	VehicleID    uint64  `json:"vehicle_id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	BuyerID      uint64  `json:"buyer_id"`
	SellerID     uint64  `json:"seller_id"`
	ScheduledAt  string  `json:"scheduled_at"`
	Status       string  `json:"status"`
	BuyerNotes   *string `json:"buyer_notes,omitempty"`
	SellerNotes  *string `json:"seller_notes,omitempty"`
	CancelReason *string `json:"cancel_reason,omitempty"`
}

func (r *VisitRepo) listDetails(ctx context.Context, query string, id uint64) ([]VisitDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]VisitDetail, 0)
	for rows.Next() {
		var d VisitDetail
		var bn, sn, cr sql.NullString
		if err := rows.Scan(&d.ID, &d.VehicleID, &d.Make, &d.Model, &d.BuyerID,
			&d.SellerID, &d.ScheduledAt, &d.Status, &bn, &sn, &cr); err != nil {
			return nil, err
		}
		if bn.Valid {
			s := bn.String
			d.BuyerNotes = &s
		}
		if sn.Valid {
			s := sn.String
			d.SellerNotes = &s
		}
		if cr.Valid {
			s := cr.String
			d.CancelReason = &s
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByBuyer returns the buyer's visits, most recent appointment first.
func (r *VisitRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]VisitDetail, error) {
	const q = `SELECT vi.id, vi.vehicle_id, v.make, v.model, vi.buyer_id, vi.seller_id,
	       DATE_FORMAT(vi.scheduled_at, '%Y-%m-%d %T'),
	       vi.status, vi.buyer_notes, vi.seller_notes, vi.cancel_reason
	FROM visits vi
	JOIN vehicles v ON v.id = vi.vehicle_id
	WHERE vi.buyer_id = ?
	ORDER BY vi.scheduled_at DESC`
	return r.listDetails(ctx, q, buyerID)
}

// ListBySeller returns the visits booked against a seller's listings.
func (r *VisitRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]VisitDetail, error) {
	const q = `SELECT vi.id, vi.vehicle_id, v.make, v.model, vi.buyer_id, vi.seller_id,
	       DATE_FORMAT(vi.scheduled_at, '%Y-%m-%d %T'),
	       vi.status, vi.buyer_notes, vi.seller_notes, vi.cancel_reason
	FROM visits vi
	JOIN vehicles v ON v.id = vi.vehicle_id
	WHERE vi.seller_id = ?
	ORDER BY vi.scheduled_at DESC`
	return r.listDetails(ctx, q, sellerID)
}
