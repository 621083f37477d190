package auth

import "time"

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"

	keyUsername = "deliveryUsername"
	keyPassword = "deliveryPassword"

	issuer     = "delivery-panel"
	defaultTTL = 24 * time.Hour

	usernameKey = "username"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

type CredentialsInput struct {
	Username        string `json:"username" binding:"required,notblank,max=64"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

type Options struct {
	Secret []byte
	TTL    time.Duration
	// Username and PasswordHash replace the built-in admin/admin123 pair.
	Username     string
	PasswordHash string
	Cost         int
}
