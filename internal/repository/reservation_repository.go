package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. A reservation
// is a time-boxed hold one buyer places on one vehicle. The `reservations`
// table carries a generated column that equals vehicle_id while the status
// is PENDING or CONFIRMED and NULL otherwise; a unique index on that column
// is the database-level guarantee that at most one valid reservation exists
// per vehicle. All timestamps are stored in UTC.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationColumns = `id, code, vehicle_id, buyer_id, status, expires_at, buyer_notes, cancel_reason, created_at, updated_at`

func scanReservation(scan func(dest ...any) error) (model.Reservation, error) {
	var res model.Reservation
	var notes, reason sql.NullString
	err := scan(&res.ID, &res.Code, &res.VehicleID, &res.BuyerID, &res.Status,
		&res.ExpiresAt, &notes, &reason, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if notes.Valid {
		s := notes.String
		res.BuyerNotes = &s
	}
	if reason.Valid {
		s := reason.String
		res.CancelReason = &s
	}
	return res, nil
}

// CreateTx inserts a new PENDING reservation within the caller's
// transaction and populates the generated ID. A duplicate-key violation on
// the valid-reservation index is translated to ErrDuplicateReservation so
// a concurrent second buyer gets a business failure, not a driver error.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	var notes any
	if res.BuyerNotes != nil {
		notes = *res.BuyerNotes
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (code, vehicle_id, buyer_id, status, expires_at, buyer_notes)
		 VALUES (?,?,?,?,?,?)`,
		res.Code, res.VehicleID, res.BuyerID, model.ReservationPending,
		res.ExpiresAt.UTC().Format("2006-01-02 15:04:05"), notes)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReservation
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.ReservationPending
	return nil
}

// GetByID fetches a reservation. sql.ErrNoRows when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? LIMIT 1", id).Scan)
}

// GetTx fetches a reservation inside a transaction with a row lock.
func (r *ReservationRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	return scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? LIMIT 1 FOR UPDATE", id).Scan)
}

// SetStatusTx persists a status change inside the caller's transaction.
// cancelReason may be nil; it is only written for cancellations.
func (r *ReservationRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus, cancelReason *string) error {
	var reason any
	if cancelReason != nil {
		reason = *cancelReason
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status=?, cancel_reason=COALESCE(?, cancel_reason), updated_at=UTC_TIMESTAMP() WHERE id=?",
		status, reason, id)
	return err
}

// ExistsValidForBuyerTx reports whether the buyer already holds a valid
// (PENDING or CONFIRMED) reservation on the vehicle.
func (r *ReservationRepo) ExistsValidForBuyerTx(ctx context.Context, tx *sql.Tx, vehicleID, buyerID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE vehicle_id=? AND buyer_id=? AND status IN (?,?)`,
		vehicleID, buyerID, model.ReservationPending, model.ReservationConfirmed).Scan(&n)
	return n > 0, err
}

// CountOtherValidTx counts valid reservations on the vehicle excluding the
// given reservation id. The cancellation path uses it to decide whether the
// vehicle reverts to ACTIVE. This check-then-act sequence is not atomic
// against a concurrent new reservation; see DESIGN.md.
func (r *ReservationRepo) CountOtherValidTx(ctx context.Context, tx *sql.Tx, vehicleID, excludeID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE vehicle_id=? AND id<>? AND status IN (?,?)`,
		vehicleID, excludeID, model.ReservationPending, model.ReservationConfirmed).Scan(&n)
	return n, err
}

// ListExpiredPendingTx returns every PENDING reservation whose expiry has
// passed, locked for update so a concurrently running sweep cannot expire
// the same rows twice.
func (r *ReservationRepo) ListExpiredPendingTx(ctx context.Context, tx *sql.Tx, now time.Time) ([]model.Reservation, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE status=? AND expires_at < ? FOR UPDATE",
		model.ReservationPending, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ReservationDetail is the buyer-facing listing row with the vehicle
// joined in.
type ReservationDetail struct {
	ID           uint64  `json:"id"`
	Code         string  `json:"code"`
	VehicleID    uint64  `json:"vehicle_id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         uint16  `json:"year"`
	PriceCents   uint64  `json:"price_cents"`
	Status       string  `json:"status"`
	ExpiresAt    string  `json:"expires_at"`
	CancelReason *string `json:"cancel_reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ListByBuyer returns the buyer's reservations newest first.
func (r *ReservationRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.code, r.vehicle_id, v.make, v.model, v.year, v.price_cents,
	                  r.status,
	                  DATE_FORMAT(r.expires_at, '%Y-%m-%d %T'),
	                  r.cancel_reason,
	                  DATE_FORMAT(r.created_at, '%Y-%m-%d %T')
	           FROM reservations r
	           JOIN vehicles v ON v.id = r.vehicle_id
	           WHERE r.buyer_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var reason sql.NullString
		if err := rows.Scan(&d.ID, &d.Code, &d.VehicleID, &d.Make, &d.Model, &d.Year,
			&d.PriceCents, &d.Status, &d.ExpiresAt, &reason, &d.CreatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			s := reason.String
			d.CancelReason = &s
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
