package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/admincontext"
	"github.com/dtnhan205/showbillBE/internal/pkg/database"
	"github.com/dtnhan205/showbillBE/internal/pkg/env"
	"github.com/dtnhan205/showbillBE/internal/pkg/quota"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxBillFileSize = 10 * 1024 * 1024

var allowedBillTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

func billUploadDir() string {
	return env.GetEnv("UPLOAD_DIR", "./uploads/bills")
}

// HandleUploadBill stores a single bill image for the authenticated admin,
// after the quota gate confirms it fits into this month's limit.
func HandleUploadBill(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "a file is required")
	}

	gate := quota.NewGateFromDB(database.GetDB())
	if err := gate.Check(adminID, 1); err != nil {
		return respondQuotaError(c, err)
	}

	bill, err := saveBillFile(c, adminID, file)
	if err != nil {
		return respondUploadError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bill)
}

// HandleUploadBills stores a batch of bill images. The quota check covers the
// whole batch up front: either every file fits or none is stored.
func HandleUploadBills(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "multipart form data is required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return badRequest(c, "at least one file is required")
	}

	gate := quota.NewGateFromDB(database.GetDB())
	if err := gate.Check(adminID, len(files)); err != nil {
		return respondQuotaError(c, err)
	}

	for _, file := range files {
		if err := validateBillFile(file); err != nil {
			return respondUploadError(c, err)
		}
	}

	bills := make([]models.Bill, 0, len(files))
	for _, file := range files {
		bill, err := saveBillFile(c, adminID, file)
		if err != nil {
			return respondUploadError(c, err)
		}
		bills = append(bills, *bill)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("%d bills uploaded", len(bills)),
		"bills":   bills,
	})
}

// HandleGetMyBills lists the admin's bills, newest first.
func HandleGetMyBills(c *fiber.Ctx) error {
	adminID := admincontext.Get(c).AdminID

	var bills []models.Bill
	err := database.GetDB().
		Where("admin_id = ?", adminID).
		Order("created_at desc").
		Find(&bills).Error
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(bills)
}

var errBadBillFile = errors.New("bad bill file")

func validateBillFile(file *multipart.FileHeader) error {
	if file.Size > maxBillFileSize {
		return fmt.Errorf("%w: %s is larger than 10 MB", errBadBillFile, file.Filename)
	}
	contentType := file.Header.Get(fiber.HeaderContentType)
	if !allowedBillTypes[contentType] {
		return fmt.Errorf("%w: %s has unsupported type %s", errBadBillFile, file.Filename, contentType)
	}
	return nil
}

func saveBillFile(c *fiber.Ctx, adminID uint, file *multipart.FileHeader) (*models.Bill, error) {
	if err := validateBillFile(file); err != nil {
		return nil, err
	}

	dir := billUploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	fileName := uuid.New().String() + ext
	filePath := filepath.Join(dir, fileName)
	if err := c.SaveFile(file, filePath); err != nil {
		return nil, err
	}

	bill := &models.Bill{
		AdminID:  adminID,
		Title:    strings.TrimSuffix(file.Filename, ext),
		FileName: fileName,
		FilePath: filePath,
		FileSize: file.Size,
		FileType: file.Header.Get(fiber.HeaderContentType),
	}
	if err := database.GetDB().Create(bill).Error; err != nil {
		os.Remove(filePath)
		return nil, err
	}
	return bill, nil
}

func respondQuotaError(c *fiber.Ctx, err error) error {
	var limitReached *quota.LimitReachedError
	var batchTooLarge *quota.BatchTooLargeError

	switch {
	case errors.As(err, &limitReached):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":         err.Error(),
			"current_package": limitReached.PackageType,
			"bills_uploaded":  limitReached.Uploaded,
			"bill_limit":      limitReached.Limit,
		})
	case errors.As(err, &batchTooLarge):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":         err.Error(),
			"current_package": batchTooLarge.PackageType,
			"bills_uploaded":  batchTooLarge.Uploaded,
			"bill_limit":      batchTooLarge.Limit,
			"remaining":       batchTooLarge.Remaining,
		})
	default:
		return serverError(c, err)
	}
}

func respondUploadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errBadBillFile) {
		return badRequest(c, err.Error())
	}
	return serverError(c, err)
}
