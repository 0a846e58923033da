package database

import (
	"log"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/env"
)

// EnsureSuperAdmin creates the initial super admin from SUPER_ADMIN_* env
// variables when no admin row exists yet. A fresh install has no other way
// to reach the super-admin routes.
func EnsureSuperAdmin() {
	var count int64
	if err := DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		log.Printf("Could not check for existing admins: %v", err)
		return
	}
	if count > 0 {
		return
	}

	username := env.GetEnv("SUPER_ADMIN_USERNAME", "")
	email := env.GetEnv("SUPER_ADMIN_EMAIL", "")
	password := env.GetEnv("SUPER_ADMIN_PASSWORD", "")
	if username == "" || email == "" || password == "" {
		log.Println("No admins exist and SUPER_ADMIN_* is not set, skipping bootstrap")
		return
	}

	admin, err := models.CreateAdmin(username, email, password)
	if err != nil {
		log.Printf("Could not bootstrap super admin: %v", err)
		return
	}
	admin.Role = models.ROLE_SUPER

	if err := DB.Create(admin).Error; err != nil {
		log.Printf("Could not bootstrap super admin: %v", err)
		return
	}
	log.Printf("Bootstrapped super admin %q", username)
}
