package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Gabinights/AutoMarket-sub000/internal/cache"
	"github.com/Gabinights/AutoMarket-sub000/internal/config"
	"github.com/Gabinights/AutoMarket-sub000/internal/database"
	"github.com/Gabinights/AutoMarket-sub000/internal/handler"
	"github.com/Gabinights/AutoMarket-sub000/internal/middleware"
	"github.com/Gabinights/AutoMarket-sub000/internal/queue"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
	"github.com/Gabinights/AutoMarket-sub000/internal/router"
	"github.com/Gabinights/AutoMarket-sub000/internal/service"
	"github.com/Gabinights/AutoMarket-sub000/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	sellerRepo := repository.NewSellerRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	vehicleRepo := repository.NewVehicleRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	visitRepo := repository.NewVisitRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	reportRepo := repository.NewReportRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	tx := repository.TxRunner{DB: db}

	blocks := cache.NewBlockStatusCache(rdb, cfg.BlockCacheTTL, userRepo.IsBlocked)

	// Services.
	notifier := service.NewNotificationService(notificationRepo)
	reservationSvc := service.NewReservationService(tx, vehicleRepo, reservationRepo, userRepo, visitRepo, purchaseRepo, notifier)
	visitSvc := service.NewVisitService(visitRepo, vehicleRepo, userRepo, notifier)
	moderationSvc := service.NewModerationService(sellerRepo, userRepo, reportRepo, auditRepo, blocks, notifier)

	// Background loops: the expiration sweep and the notification
	// consumer both run for the life of the process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go worker.NewSweeper(reservationSvc, cfg.SweepInterval).Run(ctx)
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.Register(e, router.Deps{
		Auth:          handler.NewAuthHandler(cfg, userRepo, sellerRepo, tokenRepo),
		Public:        handler.NewPublicHandler(vehicleRepo),
		Customer:      handler.NewCustomerHandler(reservationSvc, visitSvc, reservationRepo, visitRepo, reportRepo),
		Seller:        handler.NewSellerHandler(vehicleRepo, sellerRepo, reservationSvc, visitSvc, visitRepo),
		Admin:         handler.NewAdminHandler(moderationSvc, sellerRepo, reportRepo, auditRepo),
		Notifications: handler.NewNotificationHandler(notifier),
		JWTSecret:     cfg.JWTSecret,
		Blocks:        blocks,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}
