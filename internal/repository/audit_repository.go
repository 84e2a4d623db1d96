package repository

import (
	"context"
	"database/sql"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// AuditRepo appends to the `audit_logs` table. The table is append-only:
// there is deliberately no update or delete method here.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert writes one audit row and populates the generated ID.
func (r *AuditRepo) Insert(ctx context.Context, a *model.AuditLog) error {
	toArg := func(s *string) any {
		if s != nil {
			return *s
		}
		return nil
	}
	var entityID any
	if a.EntityID != nil {
		entityID = *a.EntityID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, action, description, entity_type, entity_id, before_json, after_json, ip, user_agent)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		a.ActorID, a.Action, a.Description, toArg(a.EntityType), entityID,
		toArg(a.Before), toArg(a.After), toArg(a.IP), toArg(a.UserAgent))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListRecent returns the newest audit rows up to limit, for the admin
// trail view.
func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, actor_id, action, description, entity_type, entity_id, before_json, after_json, ip, user_agent, created_at
		 FROM audit_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AuditLog, 0, limit)
	for rows.Next() {
		var a model.AuditLog
		var entityType, before, after, ip, ua sql.NullString
		var entityID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &a.Description,
			&entityType, &entityID, &before, &after, &ip, &ua, &a.CreatedAt); err != nil {
			return nil, err
		}
		if entityType.Valid {
			s := entityType.String
			a.EntityType = &s
		}
		if entityID.Valid {
			id := uint64(entityID.Int64)
			a.EntityID = &id
		}
		if before.Valid {
			s := before.String
			a.Before = &s
		}
		if after.Valid {
			s := after.String
			a.After = &s
		}
		if ip.Valid {
			s := ip.String
			a.IP = &s
		}
		if ua.Valid {
			s := ua.String
			a.UserAgent = &s
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
