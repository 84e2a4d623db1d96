package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

type fakeSellerStore struct {
	profiles map[uint64]*model.SellerProfile
}

func newFakeSellerStore(ps ...model.SellerProfile) *fakeSellerStore {
	s := &fakeSellerStore{profiles: map[uint64]*model.SellerProfile{}}
	for i := range ps {
		p := ps[i]
		s.profiles[p.UserID] = &p
	}
	return s
}

func (s *fakeSellerStore) GetByUserID(_ context.Context, userID uint64) (model.SellerProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.SellerProfile{}, sql.ErrNoRows
	}
	return *p, nil
}

func (s *fakeSellerStore) Update(_ context.Context, p *model.SellerProfile) error {
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

type fakeReportStore struct {
	reports map[uint64]*model.Report
}

func newFakeReportStore(rs ...model.Report) *fakeReportStore {
	s := &fakeReportStore{reports: map[uint64]*model.Report{}}
	for i := range rs {
		r := rs[i]
		s.reports[r.ID] = &r
	}
	return s
}

func (s *fakeReportStore) GetByID(_ context.Context, id uint64) (model.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return model.Report{}, sql.ErrNoRows
	}
	return *r, nil
}

func (s *fakeReportStore) Update(_ context.Context, rep *model.Report) error {
	cp := *rep
	s.reports[rep.ID] = &cp
	return nil
}

type fakeAuditStore struct {
	entries []model.AuditLog
	err     error
}

func (s *fakeAuditStore) Insert(_ context.Context, a *model.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *a)
	return nil
}

type fakeBlockCache struct {
	invalidated []uint64
}

func (c *fakeBlockCache) Invalidate(_ context.Context, userID uint64) {
	c.invalidated = append(c.invalidated, userID)
}

var adminMeta = ActorMeta{AdminID: 1, IP: "203.0.113.7", UserAgent: "test-agent"}

func newModerationService(sellers *fakeSellerStore, users *fakeUserStore, reports *fakeReportStore,
	audits *fakeAuditStore, cache *fakeBlockCache, notifier *fakeNotifier) *ModerationService {
	return &ModerationService{
		Sellers:  sellers,
		Users:    users,
		Reports:  reports,
		Audits:   audits,
		Cache:    cache,
		Notifier: notifier,
	}
}

func TestApproveSeller(t *testing.T) {
	sellers := newFakeSellerStore(model.SellerProfile{UserID: 5, DealershipName: "Autohaus", Status: model.SellerPending})
	audits := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	svc := newModerationService(sellers, newFakeUserStore(), newFakeReportStore(), audits, &fakeBlockCache{}, notifier)

	require.NoError(t, svc.ApproveSeller(context.Background(), adminMeta, 5))

	profile, _ := sellers.GetByUserID(context.Background(), 5)
	assert.Equal(t, model.SellerApproved, profile.Status)

	require.Len(t, audits.entries, 1)
	entry := audits.entries[0]
	assert.Equal(t, model.AuditSellerApproved, entry.Action)
	assert.Equal(t, uint64(1), entry.ActorID)
	require.NotNil(t, entry.Before)
	assert.Contains(t, *entry.Before, `"PENDING"`)
	require.NotNil(t, entry.After)
	assert.Contains(t, *entry.After, `"APPROVED"`)
	require.NotNil(t, entry.IP)
	assert.Equal(t, "203.0.113.7", *entry.IP)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifySellerApproved, notifier.sent[0].Kind)
	assert.Equal(t, uint64(5), notifier.sent[0].UserID)

	t.Run("approving twice fails", func(t *testing.T) {
		err := svc.ApproveSeller(context.Background(), adminMeta, 5)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown seller", func(t *testing.T) {
		err := svc.ApproveSeller(context.Background(), adminMeta, 99)
		assert.ErrorIs(t, err, ErrSellerNotFound)
	})
}

func TestRejectSeller(t *testing.T) {
	sellers := newFakeSellerStore(model.SellerProfile{UserID: 5, Status: model.SellerPending})
	notifier := &fakeNotifier{}
	svc := newModerationService(sellers, newFakeUserStore(), newFakeReportStore(), &fakeAuditStore{}, &fakeBlockCache{}, notifier)

	require.NoError(t, svc.RejectSeller(context.Background(), adminMeta, 5, "document unreadable"))

	profile, _ := sellers.GetByUserID(context.Background(), 5)
	assert.Equal(t, model.SellerRejected, profile.Status)
	require.NotNil(t, profile.RejectionReason)
	assert.Equal(t, "document unreadable", *profile.RejectionReason)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifySellerRejected, notifier.sent[0].Kind)
	assert.True(t, strings.Contains(notifier.sent[0].Body, "document unreadable"))
}

func TestBlockAndUnblockUser(t *testing.T) {
	users := newFakeUserStore(model.User{ID: 7, Role: model.RoleCustomer})
	audits := &fakeAuditStore{}
	cache := &fakeBlockCache{}
	notifier := &fakeNotifier{}
	svc := newModerationService(newFakeSellerStore(), users, newFakeReportStore(), audits, cache, notifier)

	require.NoError(t, svc.BlockUser(context.Background(), adminMeta, 7, "fraudulent listings"))

	u, _ := users.GetByID(context.Background(), 7)
	assert.True(t, u.Blocked)
	require.NotNil(t, u.BlockedReason)
	assert.Equal(t, "fraudulent listings", *u.BlockedReason)
	assert.Equal(t, []uint64{7}, cache.invalidated)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, model.AuditUserBlocked, audits.entries[0].Action)

	t.Run("blocking twice fails", func(t *testing.T) {
		err := svc.BlockUser(context.Background(), adminMeta, 7, "again")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	require.NoError(t, svc.UnblockUser(context.Background(), adminMeta, 7))

	u, _ = users.GetByID(context.Background(), 7)
	assert.False(t, u.Blocked)
	assert.Nil(t, u.BlockedReason)
	assert.Equal(t, []uint64{7, 7}, cache.invalidated)

	t.Run("unblocking an unblocked user fails", func(t *testing.T) {
		err := svc.UnblockUser(context.Background(), adminMeta, 7)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.BlockUser(context.Background(), adminMeta, 99, "x")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestBlockUserAuditFailureIsLogged(t *testing.T) {
	users := newFakeUserStore(model.User{ID: 7, Role: model.RoleCustomer})
	audits := &fakeAuditStore{err: errors.New("audit store down")}
	svc := newModerationService(newFakeSellerStore(), users, newFakeReportStore(), audits, &fakeBlockCache{}, &fakeNotifier{})

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	require.NoError(t, svc.BlockUser(context.Background(), adminMeta, 7, "fraudulent listings"))

	u, _ := users.GetByID(context.Background(), 7)
	assert.True(t, u.Blocked, "the block itself still applies")
	assert.Empty(t, audits.entries)
	assert.Contains(t, buf.String(), "audit: insert failed",
		"a lost audit row must leave a trace in the log")
}

func TestReportReview(t *testing.T) {
	reports := newFakeReportStore(model.Report{
		ID: 3, ReporterID: 20, TargetType: model.ReportTargetVehicle, TargetID: 1,
		Reason: "odometer tampering", Status: model.ReportOpen,
	})
	audits := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	svc := newModerationService(newFakeSellerStore(), newFakeUserStore(), reports, audits, &fakeBlockCache{}, notifier)

	t.Run("cannot close an open report", func(t *testing.T) {
		err := svc.CloseReport(context.Background(), adminMeta, 3, model.VerdictUpheld, "listing removed")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	require.NoError(t, svc.StartReportAnalysis(context.Background(), adminMeta, 3))

	r, _ := reports.GetByID(context.Background(), 3)
	assert.Equal(t, model.ReportInAnalysis, r.Status)
	require.NotNil(t, r.ReviewedBy)
	assert.Equal(t, uint64(1), *r.ReviewedBy)

	t.Run("cannot claim a report twice", func(t *testing.T) {
		err := svc.StartReportAnalysis(context.Background(), adminMeta, 3)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	require.NoError(t, svc.CloseReport(context.Background(), adminMeta, 3, model.VerdictUpheld, "listing removed"))

	r, _ = reports.GetByID(context.Background(), 3)
	assert.Equal(t, model.ReportClosed, r.Status)
	require.NotNil(t, r.Verdict)
	assert.Equal(t, model.VerdictUpheld, *r.Verdict)

	// The reporter learns the outcome.
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifyReportClosed, notifier.sent[0].Kind)
	assert.Equal(t, uint64(20), notifier.sent[0].UserID)

	assert.Len(t, audits.entries, 2)

	t.Run("closing twice fails", func(t *testing.T) {
		err := svc.CloseReport(context.Background(), adminMeta, 3, model.VerdictDismissed, "x")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
