package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Staff        bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the contact details kept on file for an account.
type Profile struct {
	UserID     string `json:"user_id"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// RegisterRequest payload for POST /auth/register.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" example:"ana"`
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
	Phone    string `json:"phone"    example:"+34600000000"`
}

// LoginRequest payload for POST /auth/login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

// TokenResponse is returned by register and login.
// swagger:model TokenResponse
type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
