package model

import "time"

// LicenseStatus describes redemption lifecycle.
type LicenseStatus string

const (
	LicenseStatusActive LicenseStatus = "ACTIVE"
	LicenseStatusUsed   LicenseStatus = "USED"
)

// License describes a time-bounded entitlement minted for a paid order.
// DeviceHash holds a one-way hash of the bound device identifier; raw
// identifiers are never stored.
type License struct {
	Key         string
	OrderCode   int64
	Status      LicenseStatus
	DeviceHash  string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// Valid reports whether the license is inside its validity window at the
// given instant. Expiry is evaluated, never mutated: a license past its
// expiry is invalid regardless of status.
func (l *License) Valid(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}

// Bound reports whether the license is tied to a device.
func (l *License) Bound() bool {
	return l.DeviceHash != ""
}

// BoundTo reports whether the license is tied to the given device hash.
func (l *License) BoundTo(deviceHash string) bool {
	return l.DeviceHash == deviceHash
}
