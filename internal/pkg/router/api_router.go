package router

import (
	"github.com/dtnhan205/showbillBE/app/controllers"
	"github.com/dtnhan205/showbillBE/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(), middleware.IdentityFromHeaders())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "showbill api",
		})
	})

	admin := api.Group("/admin", middleware.RequireAdmin)

	// Package catalog and entitlements
	admin.Get("/payment/packages", controllers.HandleGetPackages)
	admin.Get("/payment/my-package", controllers.HandleGetMyPackage)
	admin.Post("/payment/switch-package", controllers.HandleSwitchPackage)

	// Payment ledger
	admin.Post("/payment/create", controllers.HandleCreatePayment)
	admin.Get("/payment/history", controllers.HandleGetPaymentHistory)
	admin.Get("/payment/:id", controllers.HandleGetPaymentDetail)
	admin.Delete("/payment/:id", controllers.HandleDeletePayment)

	// Bill uploads, gated by the monthly quota
	admin.Post("/bills/upload", controllers.HandleUploadBill)
	admin.Post("/bills/upload-multiple", controllers.HandleUploadBills)
	admin.Get("/bills", controllers.HandleGetMyBills)

	super := admin.Group("/super", middleware.RequireSuperAdmin)

	// Catalog management
	super.Post("/packages/config", controllers.HandleCreatePackageConfig)
	super.Put("/packages/config/:type", controllers.HandleUpsertPackageConfig)
	super.Delete("/packages/config/:type", controllers.HandleDeletePackageConfig)

	// Bank account registry
	super.Get("/bank-accounts", controllers.HandleGetBankAccounts)
	super.Post("/bank-accounts", controllers.HandleCreateBankAccount)
	super.Put("/bank-accounts/:id", controllers.HandleUpdateBankAccount)
	super.Delete("/bank-accounts/:id", controllers.HandleDeleteBankAccount)

	// Payment oversight
	super.Post("/payments/verify", controllers.HandleVerifyPayment)
	super.Get("/payments/history", controllers.HandleGetAllPayments)
	super.Get("/payments/stats", controllers.HandleGetPaymentStats)
}
