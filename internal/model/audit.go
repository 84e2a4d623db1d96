package model

import "time"

// Audit action tags.  One constant per admin-facing mutation so the trail
// can be filtered without parsing descriptions.
const (
	AuditSellerApproved = "SELLER_APPROVED"
	AuditSellerRejected = "SELLER_REJECTED"
	AuditUserBlocked    = "USER_BLOCKED"
	AuditUserUnblocked  = "USER_UNBLOCKED"
	AuditReportAnalysis = "REPORT_IN_ANALYSIS"
	AuditReportClosed   = "REPORT_CLOSED"
)

// AuditLog mirrors the append-only `audit_logs` table.  Rows are written
// once inside the same transaction as the admin action they record and are
// never updated or deleted.  Before and After hold JSON snapshots of the
// affected entity around the transition.
type AuditLog struct {
	ID          uint64    // audit_logs.id
	ActorID     uint64    // audit_logs.actor_id (admin user id)
	Action      string    // audit_logs.action (one of the Audit* tags)
	Description string    // audit_logs.description
	EntityType  *string   // audit_logs.entity_type (nullable)
	EntityID    *uint64   // audit_logs.entity_id (nullable)
	Before      *string   // audit_logs.before_json (nullable)
	After       *string   // audit_logs.after_json (nullable)
	IP          *string   // audit_logs.ip (nullable)
	UserAgent   *string   // audit_logs.user_agent (nullable)
	CreatedAt   time.Time // audit_logs.created_at
}
