package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
)

// ActorMeta carries request-level context for the audit trail.
type ActorMeta struct {
	AdminID   uint64
	IP        string
	UserAgent string
}

type moderationSellerStore interface {
	GetByUserID(ctx context.Context, userID uint64) (model.SellerProfile, error)
	Update(ctx context.Context, p *model.SellerProfile) error
}

type moderationUserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetBlocked(ctx context.Context, id uint64, blocked bool, reason string) error
	ListAdmins(ctx context.Context) ([]uint64, error)
}

type moderationReportStore interface {
	GetByID(ctx context.Context, id uint64) (model.Report, error)
	Update(ctx context.Context, rep *model.Report) error
}

type auditStore interface {
	Insert(ctx context.Context, a *model.AuditLog) error
}

// BlockCache invalidates cached block-status entries after an admin
// changes a user's blocked flag.
type BlockCache interface {
	Invalidate(ctx context.Context, userID uint64)
}

// ModerationService implements the admin-only operations: seller
// approval, user blocking and report review. Every mutation writes an
// audit log entry with before/after snapshots of the touched entity.
type ModerationService struct {
	Sellers  moderationSellerStore
	Users    moderationUserStore
	Reports  moderationReportStore
	Audits   auditStore
	Cache    BlockCache
	Notifier Notifier
}

func NewModerationService(sellers *repository.SellerRepo, users *repository.UserRepo, reports *repository.ReportRepo,
	audits *repository.AuditRepo, cache BlockCache, notifier Notifier) *ModerationService {
	return &ModerationService{
		Sellers:  sellers,
		Users:    users,
		Reports:  reports,
		Audits:   audits,
		Cache:    cache,
		Notifier: notifier,
	}
}

// ApproveSeller moves a pending seller profile to APPROVED.
func (s *ModerationService) ApproveSeller(ctx context.Context, meta ActorMeta, sellerUserID uint64) error {
	profile, err := s.loadSeller(ctx, sellerUserID)
	if err != nil {
		return err
	}
	before := snapshot(profile)
	if err := profile.Approve(); err != nil {
		return ErrInvalidTransition
	}
	if err := s.Sellers.Update(ctx, &profile); err != nil {
		return fmt.Errorf("update seller profile: %w", err)
	}
	s.audit(ctx, meta, model.AuditSellerApproved,
		fmt.Sprintf("approved seller %d", sellerUserID), "SELLER", sellerUserID, before, snapshot(profile))
	s.notify(ctx, sellerUserID, model.NotifySellerApproved,
		"Seller account approved", "Your seller account was approved. You can now publish vehicles.")
	return nil
}

// RejectSeller moves a pending seller profile to REJECTED with the given
// reason. The seller may later fix the profile and resubmit.
func (s *ModerationService) RejectSeller(ctx context.Context, meta ActorMeta, sellerUserID uint64, reason string) error {
	profile, err := s.loadSeller(ctx, sellerUserID)
	if err != nil {
		return err
	}
	before := snapshot(profile)
	if err := profile.Reject(reason); err != nil {
		return ErrInvalidTransition
	}
	if err := s.Sellers.Update(ctx, &profile); err != nil {
		return fmt.Errorf("update seller profile: %w", err)
	}
	s.audit(ctx, meta, model.AuditSellerRejected,
		fmt.Sprintf("rejected seller %d: %s", sellerUserID, reason), "SELLER", sellerUserID, before, snapshot(profile))
	s.notify(ctx, sellerUserID, model.NotifySellerRejected,
		"Seller account rejected", fmt.Sprintf("Your seller application was rejected: %s", reason))
	return nil
}

// BlockUser flags the account as blocked. Blocked users keep their data
// but can no longer authenticate or act on the marketplace.
func (s *ModerationService) BlockUser(ctx context.Context, meta ActorMeta, userID uint64, reason string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Blocked {
		return ErrInvalidTransition
	}
	before := snapshot(user)
	if err := s.Users.SetBlocked(ctx, userID, true, reason); err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	user.Blocked = true
	user.BlockedReason = &reason
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, userID)
	}
	s.audit(ctx, meta, model.AuditUserBlocked,
		fmt.Sprintf("blocked user %d: %s", userID, reason), "USER", userID, before, snapshot(user))
	s.notify(ctx, userID, model.NotifyAccountBlocked,
		"Account blocked", fmt.Sprintf("Your account was blocked: %s", reason))
	return nil
}

// UnblockUser lifts a block.
func (s *ModerationService) UnblockUser(ctx context.Context, meta ActorMeta, userID uint64) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Blocked {
		return ErrInvalidTransition
	}
	before := snapshot(user)
	if err := s.Users.SetBlocked(ctx, userID, false, ""); err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	user.Blocked = false
	user.BlockedReason = nil
	user.BlockedAt = nil
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, userID)
	}
	s.audit(ctx, meta, model.AuditUserUnblocked,
		fmt.Sprintf("unblocked user %d", userID), "USER", userID, before, snapshot(user))
	s.notify(ctx, userID, model.NotifyAccountUnblocked,
		"Account unblocked", "Your account was unblocked. Welcome back.")
	return nil
}

// StartReportAnalysis claims an open report for review by the acting admin.
func (s *ModerationService) StartReportAnalysis(ctx context.Context, meta ActorMeta, reportID uint64) error {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return err
	}
	before := snapshot(report)
	if err := report.StartAnalysis(meta.AdminID); err != nil {
		return ErrInvalidTransition
	}
	if err := s.Reports.Update(ctx, &report); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	s.audit(ctx, meta, model.AuditReportAnalysis,
		fmt.Sprintf("started analysis of report %d", reportID), "REPORT", reportID, before, snapshot(report))
	return nil
}

// CloseReport records the admin's verdict and decision on a report under
// analysis and notifies the reporter.
func (s *ModerationService) CloseReport(ctx context.Context, meta ActorMeta, reportID uint64, verdict, decision string) error {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return err
	}
	before := snapshot(report)
	if err := report.Close(meta.AdminID, verdict, decision); err != nil {
		return ErrInvalidTransition
	}
	if err := s.Reports.Update(ctx, &report); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	s.audit(ctx, meta, model.AuditReportClosed,
		fmt.Sprintf("closed report %d as %s", reportID, verdict), "REPORT", reportID, before, snapshot(report))
	s.notify(ctx, report.ReporterID, model.NotifyReportClosed,
		"Report reviewed", fmt.Sprintf("Your report was reviewed: %s. %s", verdict, decision))
	return nil
}

func (s *ModerationService) loadSeller(ctx context.Context, userID uint64) (model.SellerProfile, error) {
	p, err := s.Sellers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SellerProfile{}, ErrSellerNotFound
		}
		return model.SellerProfile{}, fmt.Errorf("load seller profile: %w", err)
	}
	return p, nil
}

func (s *ModerationService) loadUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *ModerationService) loadReport(ctx context.Context, id uint64) (model.Report, error) {
	r, err := s.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, ErrReportNotFound
		}
		return model.Report{}, fmt.Errorf("load report: %w", err)
	}
	return r, nil
}

// audit must not undo the admin action it describes, so a failed insert
// is logged here rather than returned.
func (s *ModerationService) audit(ctx context.Context, meta ActorMeta, action, description, entityType string, entityID uint64, before, after *string) {
	entry := model.AuditLog{
		ActorID:     meta.AdminID,
		Action:      action,
		Description: description,
		EntityType:  &entityType,
		EntityID:    &entityID,
		Before:      before,
		After:       after,
	}
	if meta.IP != "" {
		entry.IP = &meta.IP
	}
	if meta.UserAgent != "" {
		entry.UserAgent = &meta.UserAgent
	}
	if err := s.Audits.Insert(ctx, &entry); err != nil {
		log.Printf("audit: insert failed for action %s by admin %d: %v", action, meta.AdminID, err)
	}
}

func (s *ModerationService) notify(ctx context.Context, userID uint64, kind, subject, body string) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, model.Notification{
		UserID:  userID,
		Kind:    kind,
		Subject: subject,
		Body:    body,
	})
}

// snapshot serializes an entity for the audit before/after columns.
func snapshot(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
