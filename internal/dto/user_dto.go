package dto

import "time"

// LoginKeyResponse reports a freshly issued or refreshed login key.
type LoginKeyResponse struct {
	UserID     uint      `json:"user_id"`
	LoginKey   int       `json:"login_key"`
	ValidUntil time.Time `json:"valid_until"`
}
