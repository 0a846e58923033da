package entitlement

import (
	"strings"

	"github.com/dtnhan205/showbillBE/app/models"
)

// FrameAllowed reports whether an avatar frame asset (namespaced as
// "<tier>/<file>") is usable under the given active package. Basic admins
// only get basic frames, premium unlocks everything, and every other tier
// gets the basic namespace plus its own.
func FrameAllowed(activePackage, frame string) bool {
	if strings.TrimSpace(frame) == "" {
		return true
	}

	tier := strings.ToLower(strings.TrimSpace(activePackage))
	if tier == "" {
		tier = models.PackageBasic
	}
	if tier == models.PackagePremium {
		return true
	}

	ns, _, found := strings.Cut(frame, "/")
	if !found {
		ns = frame
	}
	ns = strings.ToLower(strings.TrimSpace(ns))

	return ns == models.PackageBasic || ns == tier
}
