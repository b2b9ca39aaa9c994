package dto

import "time"

// AdminLoginRequest describes admin password payload.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse carries an admin session token.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// AdminOrder is the introspection view of a ledger entry.
type AdminOrder struct {
	Code        int64      `json:"code"`
	Status      string     `json:"status"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	LicenseKey  *string    `json:"licenseKey,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AdminLicense is the introspection view of a registry entry. Device is a
// truncated hash prefix; full hashes never leave the registry.
type AdminLicense struct {
	Key         string     `json:"key"`
	OrderCode   int64      `json:"orderCode"`
	Status      string     `json:"status"`
	Device      string     `json:"device,omitempty"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
}
