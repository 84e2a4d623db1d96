package model

import (
	"errors"
	"time"
)

// ReportStatus is the triage state of a user-submitted complaint, persisted
// as a string in reports.status.
type ReportStatus string

const (
	ReportOpen       ReportStatus = "OPEN"
	ReportInAnalysis ReportStatus = "IN_ANALYSIS"
	ReportClosed     ReportStatus = "CLOSED"
)

// Verdicts recorded when a report is closed.
const (
	VerdictUpheld    = "UPHELD"
	VerdictDismissed = "DISMISSED"
)

// Report targets.
const (
	ReportTargetVehicle = "VEHICLE"
	ReportTargetUser    = "USER"
)

// reportTransitions is strictly linear: a report is reviewed before it is
// closed, and nothing leaves CLOSED.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportOpen:       {ReportInAnalysis},
	ReportInAnalysis: {ReportClosed},
	ReportClosed:     {},
}

// CanTransition reports whether from -> to is a legal report move.
func (s ReportStatus) CanTransition(to ReportStatus) bool {
	for _, next := range reportTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

var ErrReportTransition = errors.New("illegal report status transition")

// Report mirrors the `reports` table.
type Report struct {
	ID          uint64       // reports.id
	ReporterID  uint64       // reports.reporter_id
	TargetType  string       // reports.target_type (VEHICLE, USER)
	TargetID    uint64       // reports.target_id
	Reason      string       // reports.reason
	Description *string      // reports.description (nullable)
	Status      ReportStatus // reports.status
	Verdict     *string      // reports.verdict (nullable until closed)
	Decision    *string      // reports.decision (nullable free text)
	ReviewedBy  *uint64      // reports.reviewed_by (nullable admin id)
	CreatedAt   time.Time    // reports.created_at
	UpdatedAt   time.Time    // reports.updated_at
}

// StartAnalysis moves an open report under review by the given admin.
func (r *Report) StartAnalysis(adminID uint64) error {
	if !r.Status.CanTransition(ReportInAnalysis) {
		return ErrReportTransition
	}
	r.Status = ReportInAnalysis
	r.ReviewedBy = &adminID
	return nil
}

// Close records the verdict and decision text.  Verdict must be one of
// VerdictUpheld or VerdictDismissed.
func (r *Report) Close(adminID uint64, verdict, decision string) error {
	if verdict != VerdictUpheld && verdict != VerdictDismissed {
		return errors.New("invalid verdict")
	}
	if !r.Status.CanTransition(ReportClosed) {
		return ErrReportTransition
	}
	r.Status = ReportClosed
	r.Verdict = &verdict
	r.Decision = &decision
	r.ReviewedBy = &adminID
	return nil
}
