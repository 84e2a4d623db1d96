// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/cache"
	"github.com/Gabinights/AutoMarket-sub000/internal/handler"
	"github.com/Gabinights/AutoMarket-sub000/internal/middleware"
	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Auth          *handler.AuthHandler
	Public        *handler.PublicHandler
	Customer      *handler.CustomerHandler
	Seller        *handler.SellerHandler
	Admin         *handler.AdminHandler
	Notifications *handler.NotificationHandler
	JWTSecret     string
	Blocks        *cache.BlockStatusCache
}

// Register installs the whole route table.  Public browsing needs no
// token; everything else runs behind JWT auth, role gating and the
// blocked-account check.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Auth: no session required.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/refresh-access", d.Auth.RefreshAccess)
	auth.POST("/logout", d.Auth.Logout)

	// Public catalog: guests browse without a token.
	e.GET("/v1/vehicles", d.Public.SearchVehicles)
	e.GET("/v1/vehicles/:id", d.Public.GetVehicle)

	// Everything below requires a valid access token and an unblocked
	// account.
	authed := e.Group("/v1")
	authed.Use(middleware.JWTAuth(d.JWTSecret))
	authed.Use(middleware.RequireNotBlocked(d.Blocks))

	authed.GET("/me", d.Auth.Me)
	authed.GET("/notifications", d.Notifications.List)
	authed.POST("/notifications/:id/read", d.Notifications.MarkRead)
	authed.POST("/reports", d.Customer.CreateReport)

	// Buyer surface.  Sellers can buy too, so CUSTOMER and SELLER both
	// pass.
	buyer := authed.Group("")
	buyer.Use(middleware.RequireRole(model.RoleCustomer, model.RoleSeller))
	buyer.POST("/vehicles/:id/reservations", d.Customer.CreateReservation)
	buyer.GET("/reservations", d.Customer.ListReservations)
	buyer.POST("/reservations/:id/cancel", d.Customer.CancelReservation)
	buyer.POST("/reservations/:id/purchase", d.Customer.ConfirmPurchase)
	buyer.POST("/vehicles/:id/visits", d.Customer.ScheduleVisit)
	buyer.GET("/visits", d.Customer.ListVisits)
	buyer.POST("/visits/:id/cancel", d.Customer.CancelVisit)

	// Seller surface.
	seller := authed.Group("/seller")
	seller.Use(middleware.RequireRole(model.RoleSeller))
	seller.GET("/profile", d.Seller.Profile)
	seller.POST("/profile/resubmit", d.Seller.Resubmit)
	seller.GET("/vehicles", d.Seller.ListVehicles)
	seller.POST("/vehicles", d.Seller.CreateVehicle)
	seller.PUT("/vehicles/:id", d.Seller.UpdateVehicle)
	seller.POST("/vehicles/:id/pause", d.Seller.PauseVehicle)
	seller.POST("/vehicles/:id/relist", d.Seller.RelistVehicle)
	seller.DELETE("/vehicles/:id", d.Seller.RemoveVehicle)
	seller.POST("/reservations/:id/confirm", d.Seller.ConfirmReservation)
	seller.POST("/reservations/:id/cancel", d.Seller.CancelReservation)
	seller.GET("/visits", d.Seller.ListVisits)
	seller.POST("/visits/:id/confirm", d.Seller.ConfirmVisit)
	seller.POST("/visits/:id/realized", d.Seller.VisitRealized)
	seller.POST("/visits/:id/not-realized", d.Seller.VisitNotRealized)

	// Admin surface.
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/sellers/pending", d.Admin.ListPendingSellers)
	admin.POST("/sellers/:id/approve", d.Admin.ApproveSeller)
	admin.POST("/sellers/:id/reject", d.Admin.RejectSeller)
	admin.POST("/users/:id/block", d.Admin.BlockUser)
	admin.POST("/users/:id/unblock", d.Admin.UnblockUser)
	admin.GET("/reports", d.Admin.ListReports)
	admin.POST("/reports/:id/analyze", d.Admin.StartReportAnalysis)
	admin.POST("/reports/:id/close", d.Admin.CloseReport)
	admin.GET("/audit", d.Admin.ListAudit)
}
