package dto

import "time"

// ActivateRequest describes license redemption payload.
type ActivateRequest struct {
	LicenseKey string `json:"licenseKey"`
	DeviceID   string `json:"deviceId,omitempty"`
}

// BindDeviceRequest describes explicit device binding payload.
type BindDeviceRequest struct {
	LicenseKey string `json:"licenseKey"`
	DeviceID   string `json:"deviceId"`
}

// CheckLicenseRequest describes validity lookup by key.
type CheckLicenseRequest struct {
	LicenseKey string `json:"licenseKey"`
}

// CheckDeviceRequest describes recovery lookup by device.
type CheckDeviceRequest struct {
	DeviceID string `json:"deviceId"`
}

// ActivateResponse confirms redemption.
type ActivateResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CheckResponse reports validity details for a license.
type CheckResponse struct {
	LicenseKey string    `json:"licenseKey"`
	Valid      bool      `json:"valid"`
	ExpiresAt  time.Time `json:"expiresAt"`
	DaysLeft   int       `json:"daysLeft"`
}

// ErrorResponse carries a human-readable failure reason.
type ErrorResponse struct {
	Error string `json:"error"`
}
