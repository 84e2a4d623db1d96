package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
	"github.com/Gabinights/AutoMarket-sub000/internal/service"
)

// AdminHandler exposes the moderation surface: seller approval, account
// blocking and report review.  Every mutation is audited with the acting
// admin's identity, IP and user agent.
type AdminHandler struct {
	Moderation *service.ModerationService
	Sellers    *repository.SellerRepo
	Reports    *repository.ReportRepo
	Audits     *repository.AuditRepo
}

func NewAdminHandler(moderation *service.ModerationService, sellers *repository.SellerRepo,
	reports *repository.ReportRepo, audits *repository.AuditRepo) *AdminHandler {
	if moderation == nil || sellers == nil || reports == nil || audits == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Moderation: moderation, Sellers: sellers, Reports: reports, Audits: audits}
}

// actorMeta captures the request context for the audit trail.
func actorMeta(c echo.Context) (service.ActorMeta, error) {
	adminID, err := getUserID(c)
	if err != nil {
		return service.ActorMeta{}, err
	}
	return service.ActorMeta{
		AdminID:   adminID,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, nil
}

// ListPendingSellers handles GET /v1/admin/sellers/pending, oldest first.
func (h *AdminHandler) ListPendingSellers(c echo.Context) error {
	items, err := h.Sellers.ListByStatus(c.Request().Context(), model.SellerPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// ApproveSeller handles POST /v1/admin/sellers/:id/approve.
func (h *AdminHandler) ApproveSeller(c echo.Context) error {
	meta, err := actorMeta(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sellerID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seller id"})
	}
	if err := h.Moderation.ApproveSeller(c.Request().Context(), meta, sellerID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RejectSeller handles POST /v1/admin/sellers/:id/reject.  A reason is
// mandatory so the seller knows what to fix.
func (h *AdminHandler) RejectSeller(c echo.Context) error {
	meta, err := actorMeta(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sellerID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seller id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}
	if err := h.Moderation.RejectSeller(c.Request().Context(), meta, sellerID, strings.TrimSpace(body.Reason)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BlockUser handles POST /v1/admin/users/:id/block.
func (h *AdminHandler) BlockUser(c echo.Context) error {
	meta, err := actorMeta(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if userID == meta.AdminID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot block yourself"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}
	if err := h.Moderation.BlockUser(c.Request().Context(), meta, userID, strings.TrimSpace(body.Reason)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnblockUser handles POST /v1/admin/users/:id/unblock.
func (h *AdminHandler) UnblockUser(c echo.Context) error {
	meta, err := actorMeta(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if err := h.Moderation.UnblockUser(c.Request().Context(), meta, userID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReports handles GET /v1/admin/reports?status=OPEN.
func (h *AdminHandler) ListReports(c echo.Context) error {
	status := model.ReportStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))
	if status == "" {
		status = model.ReportOpen
	}
	items, err := h.Reports.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// StartReportAnalysis handles POST /v1/admin/reports/:id/analyze.
func (h *AdminHandler) StartReportAnalysis(c echo.Context) error {
	meta, err := actorMeta(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reportID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	if err := h.Moderation.StartReportAnalysis(c.Request().Context(), meta, reportID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CloseReport handles POST /v1/admin/reports/:id/close with a verdict of
// UPHELD or DISMISSED and a free-text decision.
func (h *AdminHandler) CloseReport(c echo.Context) error {
	meta, err := actorMeta(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reportID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	var body struct {
		Verdict  string `json:"verdict"`
		Decision string `json:"decision"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	verdict := strings.ToUpper(strings.TrimSpace(body.Verdict))
	if verdict != model.VerdictUpheld && verdict != model.VerdictDismissed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "verdict must be UPHELD or DISMISSED"})
	}
	if err := h.Moderation.CloseReport(c.Request().Context(), meta, reportID, verdict, strings.TrimSpace(body.Decision)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAudit handles GET /v1/admin/audit?limit=100.
func (h *AdminHandler) ListAudit(c echo.Context) error {
	limit := 0
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		limit = n
	}
	items, err := h.Audits.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
