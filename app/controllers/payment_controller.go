package controllers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dtnhan205/showbillBE/internal/pkg/admincontext"
	"github.com/dtnhan205/showbillBE/internal/pkg/cache"
	"github.com/dtnhan205/showbillBE/internal/pkg/catalog"
	"github.com/dtnhan205/showbillBE/internal/pkg/database"
	"github.com/dtnhan205/showbillBE/internal/pkg/entitlement"
	"github.com/dtnhan205/showbillBE/internal/pkg/payments"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const (
	catalogCacheKey = "catalog:packages"
	catalogCacheTTL = 5 * time.Minute
)

// HandleGetPackages returns the package catalog. The listing is cached in
// Redis with a short TTL and invalidated whenever the catalog changes.
func HandleGetPackages(c *fiber.Ctx) error {
	cached, err := cache.Get(catalogCacheKey)
	if err != nil && !cache.IsNotFound(err) {
		fiberlog.Warnf("[Catalog] cache read failed: %v", err)
	}
	if err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	svc := catalog.NewServiceFromDB(database.GetDB())
	configs, err := svc.List()
	if err != nil {
		return serverError(c, err)
	}

	if body, err := json.Marshal(configs); err == nil {
		if cacheErr := cache.Set(catalogCacheKey, string(body), catalogCacheTTL); cacheErr != nil {
			fiberlog.Warnf("[Catalog] caching package list failed: %v", cacheErr)
		}
	}
	return c.JSON(configs)
}

// HandleGetMyPackage returns the admin's reconciled entitlement plus the
// current month's upload usage.
func HandleGetMyPackage(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	svc := entitlement.NewServiceFromDB(database.GetDB())
	overview, err := svc.Overview(adminID)
	if err != nil {
		if errors.Is(err, entitlement.ErrAdminNotFound) {
			return notFound(c, "admin not found")
		}
		return serverError(c, err)
	}
	return c.JSON(overview)
}

// HandleSwitchPackage selects one of the admin's owned packages as active.
func HandleSwitchPackage(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	var body struct {
		PackageType string `json:"package_type"`
	}
	if err := c.BodyParser(&body); err != nil || body.PackageType == "" {
		return badRequest(c, "package_type is required")
	}

	svc := entitlement.NewServiceFromDB(database.GetDB())
	if err := svc.Switch(adminID, body.PackageType); err != nil {
		switch {
		case errors.Is(err, entitlement.ErrUnknownPackage):
			return badRequest(c, err.Error())
		case errors.Is(err, entitlement.ErrNotOwned):
			return badRequest(c, err.Error())
		case errors.Is(err, entitlement.ErrAdminNotFound):
			return notFound(c, "admin not found")
		default:
			return serverError(c, err)
		}
	}

	overview, err := svc.Overview(adminID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(overview)
}

// HandleCreatePayment records a new purchase attempt for a package.
func HandleCreatePayment(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	var body struct {
		PackageType string `json:"package_type"`
		Amount      int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	payment, err := svc.Create(adminID, body.PackageType, body.Amount)
	if err != nil {
		return respondPaymentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleGetPaymentHistory returns the admin's own payments, newest first.
func HandleGetPaymentHistory(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	svc := payments.NewServiceFromDB(database.GetDB())
	history, err := svc.History(adminID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(history)
}

// HandleGetPaymentDetail returns one of the admin's payments by id.
func HandleGetPaymentDetail(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	payment, err := svc.Detail(adminID, id)
	if err != nil {
		return respondPaymentError(c, err)
	}
	return c.JSON(payment)
}

// HandleDeletePayment removes one of the admin's payments while it is still
// pending or expired. Completed payments are immutable.
func HandleDeletePayment(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid payment id")
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	if err := svc.Delete(adminID, id); err != nil {
		return respondPaymentError(c, err)
	}
	return c.JSON(fiber.Map{"message": "payment deleted"})
}

// HandleVerifyPayment is the super-admin escape hatch that completes a
// payment without a matching bank transaction.
func HandleVerifyPayment(c *fiber.Ctx) error {
	var body struct {
		PaymentID uint `json:"payment_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.PaymentID == 0 {
		return badRequest(c, "payment_id is required")
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	payment, err := svc.VerifyManually(body.PaymentID)
	if err != nil {
		return respondPaymentError(c, err)
	}
	return c.JSON(fiber.Map{"message": "payment verified", "payment": payment})
}

// HandleGetAllPayments returns every payment for super-admin review.
func HandleGetAllPayments(c *fiber.Ctx) error {
	svc := payments.NewServiceFromDB(database.GetDB())
	history, err := svc.AllHistory()
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(history)
}

// HandleGetPaymentStats aggregates completed payments over a date range
// (query params start/end, YYYY-MM-DD, defaulting to the last 12 months).
func HandleGetPaymentStats(c *fiber.Ctx) error {
	now := time.Now()
	start := now.AddDate(-1, 0, 0)
	end := now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return badRequest(c, "invalid start date, expected YYYY-MM-DD")
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return badRequest(c, "invalid end date, expected YYYY-MM-DD")
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	svc := payments.NewServiceFromDB(database.GetDB())
	stats, err := svc.Stats(start, end)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(stats)
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func respondPaymentError(c *fiber.Ctx, err error) error {
	var tooMany *payments.TooManyPendingError
	var cooldown *payments.CooldownError
	var wrongAmount *payments.WrongAmountError

	switch {
	case errors.As(err, &tooMany):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":       err.Error(),
			"pending_count": tooMany.Count,
		})
	case errors.As(err, &cooldown):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"message":        err.Error(),
			"time_remaining": cooldown.MinutesRemaining,
		})
	case errors.As(err, &wrongAmount):
		return badRequest(c, err.Error())
	case errors.Is(err, payments.ErrUnknownPackage), errors.Is(err, payments.ErrFreePackage):
		return badRequest(c, err.Error())
	case errors.Is(err, payments.ErrPaymentCompleted):
		return badRequest(c, err.Error())
	case errors.Is(err, payments.ErrPaymentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, payments.ErrNoActiveBankAccount):
		return notFound(c, err.Error())
	default:
		return serverError(c, err)
	}
}
