package repository

import (
	"context"
	"database/sql"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// VehicleRepo provides CRUD operations for vehicle listings and their
// images. Status transitions that belong to a larger atomic workflow
// (reserve, release, sell) use the Tx variants; the caller owns the
// transaction.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleColumns = `id, seller_id, make, model, year, price_cents, mileage_km, vehicle_condition, description, status, created_at, updated_at`

func scanVehicle(scan func(dest ...any) error) (model.Vehicle, error) {
	var v model.Vehicle
	err := scan(&v.ID, &v.SellerID, &v.Make, &v.Model, &v.Year, &v.PriceCents,
		&v.MileageKM, &v.Condition, &v.Description, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// Create inserts a listing in ACTIVE state together with its image keys.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO vehicles (seller_id, make, model, year, price_cents, mileage_km, vehicle_condition, description, status)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		v.SellerID, v.Make, v.Model, v.Year, v.PriceCents, v.MileageKM, v.Condition, v.Description, model.VehicleActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	v.Status = model.VehicleActive
	for i, key := range v.ImageKeys {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vehicle_images (vehicle_id, object_key, position) VALUES (?,?,?)",
			v.ID, key, i); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a listing with its ordered image keys. sql.ErrNoRows
// when absent.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	v, err := scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1", id).Scan)
	if err != nil {
		return model.Vehicle{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT object_key FROM vehicle_images WHERE vehicle_id=? ORDER BY position", id)
	if err != nil {
		return model.Vehicle{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return model.Vehicle{}, err
		}
		v.ImageKeys = append(v.ImageKeys, key)
	}
	return v, rows.Err()
}

// GetTx fetches a listing inside a transaction with a row lock, so the
// read-validate-write sequence of a reservation workflow observes a stable
// status. Image keys are not loaded here.
func (r *VehicleRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Vehicle, error) {
	return scanVehicle(tx.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1 FOR UPDATE", id).Scan)
}

// Update persists seller-editable fields. Ownership is checked in the WHERE
// clause; zero rows affected means the seller does not own the listing.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE vehicles SET make=?, model=?, year=?, price_cents=?, mileage_km=?, vehicle_condition=?, description=?, updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND seller_id=?`,
		v.Make, v.Model, v.Year, v.PriceCents, v.MileageKM, v.Condition, v.Description, v.ID, v.SellerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}

// SetStatus persists a status change outside any larger transaction, for
// seller-driven moves such as pause, re-list and soft delete.
func (r *VehicleRepo) SetStatus(ctx context.Context, id uint64, status model.VehicleStatus) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=?", status, id)
	return err
}

// SetStatusTx persists a status change inside the caller's transaction.
func (r *VehicleRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.VehicleStatus) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE vehicles SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=?", status, id)
	return err
}

// ListBySeller returns all listings owned by a seller, newest first.
func (r *VehicleRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE seller_id=? ORDER BY created_at DESC", sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
