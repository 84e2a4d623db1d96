package repository

import (
	"context"
	"strings"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// VehicleSearchQuery defines filters & pagination for the public catalog
// search. Zero values mean "no filter". Status defaults to ACTIVE so the
// public surface never leaks paused or removed listings.
type VehicleSearchQuery struct {
	Make       string
	Model      string
	Text       string // free text against make, model and description
	YearMin    int
	YearMax    int
	PriceMin   uint64 // cents
	PriceMax   uint64 // cents
	MileageMax uint32
	Status     model.VehicleStatus
	Sort       string // price_asc | price_desc | year_desc | newest
	Page       int
	PageSize   int
}

// buildVehicleFilter composes the WHERE clause and arguments for a search.
// Kept separate from the query execution so the composition is testable
// without a database.
func buildVehicleFilter(q VehicleSearchQuery) (string, []any) {
	where := []string{}
	args := []any{}

	status := q.Status
	if status == "" {
		status = model.VehicleActive
	}
	where = append(where, "v.status = ?")
	args = append(args, status)

	if q.Make != "" {
		where = append(where, "LOWER(v.make) = ?")
		args = append(args, strings.ToLower(q.Make))
	}
	if q.Model != "" {
		where = append(where, "LOWER(v.model) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Model)+"%")
	}
	if q.Text != "" {
		needle := "%" + strings.ToLower(q.Text) + "%"
		where = append(where, "(LOWER(v.make) LIKE ? OR LOWER(v.model) LIKE ? OR LOWER(v.description) LIKE ?)")
		args = append(args, needle, needle, needle)
	}
	if q.YearMin > 0 {
		where = append(where, "v.year >= ?")
		args = append(args, q.YearMin)
	}
	if q.YearMax > 0 {
		where = append(where, "v.year <= ?")
		args = append(args, q.YearMax)
	}
	if q.PriceMin > 0 {
		where = append(where, "v.price_cents >= ?")
		args = append(args, q.PriceMin)
	}
	if q.PriceMax > 0 {
		where = append(where, "v.price_cents <= ?")
		args = append(args, q.PriceMax)
	}
	if q.MileageMax > 0 {
		where = append(where, "v.mileage_km <= ?")
		args = append(args, q.MileageMax)
	}
	return strings.Join(where, " AND "), args
}

// orderClause maps the public sort keys onto columns. Unknown keys fall
// back to newest first.
func orderClause(sort string) string {
	switch strings.ToLower(sort) {
	case "price_asc":
		return "v.price_cents ASC"
	case "price_desc":
		return "v.price_cents DESC"
	case "year_desc":
		return "v.year DESC"
	default:
		return "v.created_at DESC"
	}
}

// PublicVehicleRow is the shape returned to the public catalog, with the
// seller's display name joined in and the price mirrored in whole currency
// units for convenience.
type PublicVehicleRow struct {
	ID         uint64  `json:"id"`
	Make       string  `json:"make"`
	Model      string  `json:"model"`
	Year       uint16  `json:"year"`
	PriceCents uint64  `json:"price_cents"`
	Price      float64 `json:"price"`
	MileageKM  uint32  `json:"mileage_km"`
	Condition  string  `json:"condition"`
	Status     string  `json:"status"`
	SellerID   uint64  `json:"seller_id"`
	SellerName string  `json:"seller_name"`
	CreatedAt  string  `json:"created_at"`
}

// Search runs a filtered, sorted and paginated catalog query and returns
// the page plus the total row count for that filter.
func (r *VehicleRepo) Search(ctx context.Context, q VehicleSearchQuery) ([]PublicVehicleRow, int64, error) {
	cond, args := buildVehicleFilter(q)

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM vehicles v
		JOIN users u ON u.id = v.seller_id
		WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 || size > 100 {
		size = 20
	}
	limit := size
	offset := (page - 1) * size

	dataSQL := `SELECT
			v.id, v.make, v.model, v.year, v.price_cents, v.mileage_km,
			v.vehicle_condition, v.status, v.seller_id, u.display_name,
			DATE_FORMAT(v.created_at, '%Y-%m-%d %T') AS created_at
		FROM vehicles v
		JOIN users u ON u.id = v.seller_id
		WHERE ` + cond + `
		ORDER BY ` + orderClause(q.Sort) + `
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicVehicleRow, 0, limit)
	for rows.Next() {
		var d PublicVehicleRow
		if err := rows.Scan(
			&d.ID, &d.Make, &d.Model, &d.Year, &d.PriceCents, &d.MileageKM,
			&d.Condition, &d.Status, &d.SellerID, &d.SellerName, &d.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		d.Price = float64(d.PriceCents) / 100.0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
