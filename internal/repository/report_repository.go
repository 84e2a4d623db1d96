package repository

import (
	"context"
	"database/sql"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// ReportRepo provides access to the `reports` table.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

const reportColumns = `id, reporter_id, target_type, target_id, reason, description, status, verdict, decision, reviewed_by, created_at, updated_at`

func scanReport(scan func(dest ...any) error) (model.Report, error) {
	var rep model.Report
	var desc, verdict, decision sql.NullString
	var reviewedBy sql.NullInt64
	err := scan(&rep.ID, &rep.ReporterID, &rep.TargetType, &rep.TargetID, &rep.Reason,
		&desc, &rep.Status, &verdict, &decision, &reviewedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return model.Report{}, err
	}
	if desc.Valid {
		s := desc.String
		rep.Description = &s
	}
	if verdict.Valid {
		s := verdict.String
		rep.Verdict = &s
	}
	if decision.Valid {
		s := decision.String
		rep.Decision = &s
	}
	if reviewedBy.Valid {
		id := uint64(reviewedBy.Int64)
		rep.ReviewedBy = &id
	}
	return rep, nil
}

// Create inserts a new OPEN report and populates the generated ID.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	var desc any
	if rep.Description != nil {
		desc = *rep.Description
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO reports (reporter_id, target_type, target_id, reason, description, status)
		 VALUES (?,?,?,?,?,?)`,
		rep.ReporterID, rep.TargetType, rep.TargetID, rep.Reason, desc, model.ReportOpen)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	rep.Status = model.ReportOpen
	return nil
}

// GetByID fetches a report. sql.ErrNoRows when absent.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.Report, error) {
	return scanReport(r.DB.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id=? LIMIT 1", id).Scan)
}

// Update persists the triage columns after a guarded transition on the
// entity.
func (r *ReportRepo) Update(ctx context.Context, rep *model.Report) error {
	var verdict, decision, reviewedBy any
	if rep.Verdict != nil {
		verdict = *rep.Verdict
	}
	if rep.Decision != nil {
		decision = *rep.Decision
	}
	if rep.ReviewedBy != nil {
		reviewedBy = *rep.ReviewedBy
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reports SET status=?, verdict=?, decision=?, reviewed_by=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
		rep.Status, verdict, decision, reviewedBy, rep.ID)
	return err
}

// ListByStatus returns reports in the given state oldest first, matching
// the admin triage queue order.
func (r *ReportRepo) ListByStatus(ctx context.Context, status model.ReportStatus) ([]model.Report, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE status=? ORDER BY created_at ASC", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
