package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account mapped to one client household.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ClientID     int64      `json:"client_id" db:"client_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"` // user, admin
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	ClientID    int64     `json:"client_id"`
	ClientName  string    `json:"client_name,omitempty"`
}

// Insight is a persisted AI-generated narrative over one client's metrics.
type Insight struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ClientID    int64     `json:"client_id" db:"client_id"`
	Narrative   string    `json:"narrative" db:"narrative"`
	Model       string    `json:"model" db:"model"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}

// ErrorResponse is the standardized error shape emitted by the HTTP layer.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
