package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dtnhan205/showbillBE/internal/pkg/cache"
	"github.com/dtnhan205/showbillBE/internal/pkg/database"
	"github.com/dtnhan205/showbillBE/internal/pkg/env"
	"github.com/dtnhan205/showbillBE/internal/pkg/reconcile"
	"github.com/dtnhan205/showbillBE/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Background bank reconciliation
	manager := reconcile.NewManager(reconcile.NewEngineFromDB(database.GetDB()))
	manager.Start()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		manager.Stop()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	database.EnsureSuperAdmin()
	cache.SetupCache()

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics, dev only
	if env.IsDev() {
		app.Get("/metrics", monitor.New())
	}

	// static bill files
	app.Static("/uploads/bills", env.GetEnv("UPLOAD_DIR", "./uploads/bills"))

	// ROUTER
	router.InstallRouter(app)

	return app
}
