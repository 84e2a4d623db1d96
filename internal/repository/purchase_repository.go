package repository

import (
	"context"
	"database/sql"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// PurchaseRepo provides access to the `purchases` table. Rows are created
// only inside the confirm-purchase transaction; payment settlement happens
// in an external system.
type PurchaseRepo struct{ DB *sql.DB }

func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{DB: db} }

// CreateTx inserts a PENDING_PAYMENT purchase within the caller's
// transaction and populates the generated ID.
func (r *PurchaseRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (reservation_id, vehicle_id, buyer_id, price_cents, status)
		 VALUES (?,?,?,?,?)`,
		p.ReservationID, p.VehicleID, p.BuyerID, p.PriceCents, model.PurchasePendingPayment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Status = model.PurchasePendingPayment
	return nil
}

// GetByReservation fetches the purchase created for a reservation.
// sql.ErrNoRows when the reservation never converted.
func (r *PurchaseRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Purchase, error) {
	var p model.Purchase
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, reservation_id, vehicle_id, buyer_id, price_cents, status, created_at
		 FROM purchases WHERE reservation_id=? LIMIT 1`, reservationID).
		Scan(&p.ID, &p.ReservationID, &p.VehicleID, &p.BuyerID, &p.PriceCents, &p.Status, &p.CreatedAt)
	return p, err
}
