package controllers

import (
	"errors"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/cache"
	"github.com/dtnhan205/showbillBE/internal/pkg/catalog"
	"github.com/dtnhan205/showbillBE/internal/pkg/database"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func invalidateCatalogCache() {
	if err := cache.Delete(catalogCacheKey); err != nil {
		fiberlog.Warnf("[Catalog] cache invalidation failed: %v", err)
	}
}

// HandleUpsertPackageConfig lets a super admin change a package's price,
// monthly bill limit and description lines, creating the entry when it does
// not exist yet.
func HandleUpsertPackageConfig(c *fiber.Ctx) error {
	packageType := c.Params("type")

	var body struct {
		Price        int64    `json:"price"`
		BillLimit    *int     `json:"bill_limit"`
		Descriptions []string `json:"descriptions"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := catalog.NewServiceFromDB(database.GetDB())
	cfg, err := svc.Upsert(packageType, body.Price, body.BillLimit, body.Descriptions)
	if err != nil {
		return respondCatalogError(c, err)
	}

	invalidateCatalogCache()
	return c.JSON(cfg)
}

// HandleCreatePackageConfig adds a brand-new package type to the catalog.
func HandleCreatePackageConfig(c *fiber.Ctx) error {
	var body struct {
		PackageType  string   `json:"package_type"`
		Price        int64    `json:"price"`
		BillLimit    *int     `json:"bill_limit"`
		Descriptions []string `json:"descriptions"`
	}
	if err := c.BodyParser(&body); err != nil || body.PackageType == "" {
		return badRequest(c, "package_type is required")
	}

	limit := models.DefaultBillLimit(body.PackageType)
	if body.BillLimit != nil {
		limit = *body.BillLimit
	}

	svc := catalog.NewServiceFromDB(database.GetDB())
	cfg, err := svc.Create(body.PackageType, body.Price, limit, body.Descriptions)
	if err != nil {
		return respondCatalogError(c, err)
	}

	invalidateCatalogCache()
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// HandleDeletePackageConfig removes a package type from the catalog.
func HandleDeletePackageConfig(c *fiber.Ctx) error {
	svc := catalog.NewServiceFromDB(database.GetDB())
	if err := svc.Delete(c.Params("type")); err != nil {
		return respondCatalogError(c, err)
	}

	invalidateCatalogCache()
	return c.JSON(fiber.Map{"message": "package deleted"})
}

func respondCatalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrUnknownType):
		return notFound(c, err.Error())
	case errors.Is(err, catalog.ErrDuplicateType),
		errors.Is(err, catalog.ErrBasicPrice),
		errors.Is(err, catalog.ErrBasicUndeletable),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidBillLimit):
		return badRequest(c, err.Error())
	default:
		return serverError(c, err)
	}
}

// HandleGetBankAccounts lists all configured receiving accounts.
func HandleGetBankAccounts(c *fiber.Ctx) error {
	var accounts []models.BankAccount
	if err := database.GetDB().Order("id asc").Find(&accounts).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(accounts)
}

// HandleCreateBankAccount registers a new receiving account.
func HandleCreateBankAccount(c *fiber.Ctx) error {
	account := models.BankAccount{IsActive: true}
	if err := c.BodyParser(&account); err != nil {
		return badRequest(c, "invalid request body")
	}
	account.ID = 0
	if err := account.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := database.GetDB().Create(&account).Error; err != nil {
		return serverError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

// HandleUpdateBankAccount changes a receiving account. Only the fields
// present in the request body are written.
func HandleUpdateBankAccount(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid bank account id")
	}

	db := database.GetDB()
	var account models.BankAccount
	if err := db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "bank account not found")
		}
		return serverError(c, err)
	}

	var body struct {
		BankName      *string `json:"bank_name"`
		AccountNumber *string `json:"account_number"`
		AccountHolder *string `json:"account_holder"`
		APIURL        *string `json:"api_url"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	fields := map[string]interface{}{}
	if body.BankName != nil {
		account.BankName = *body.BankName
		fields["bank_name"] = *body.BankName
	}
	if body.AccountNumber != nil {
		account.AccountNumber = *body.AccountNumber
		fields["account_number"] = *body.AccountNumber
	}
	if body.AccountHolder != nil {
		account.AccountHolder = *body.AccountHolder
		fields["account_holder"] = *body.AccountHolder
	}
	if body.APIURL != nil {
		account.APIURL = *body.APIURL
		fields["api_url"] = *body.APIURL
	}
	if body.IsActive != nil {
		account.IsActive = *body.IsActive
		fields["is_active"] = *body.IsActive
	}
	if len(fields) == 0 {
		return c.JSON(account)
	}
	if err := account.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := db.Model(&models.BankAccount{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return serverError(c, err)
	}
	return c.JSON(account)
}

// HandleDeleteBankAccount removes a receiving account. Payments keep their
// bank account id for history; new payments simply can no longer pick it.
func HandleDeleteBankAccount(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid bank account id")
	}

	result := database.GetDB().Delete(&models.BankAccount{}, id)
	if result.Error != nil {
		return serverError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "bank account not found")
	}
	return c.JSON(fiber.Map{"message": "bank account deleted"})
}
