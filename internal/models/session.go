package models

import "time"

// Session is one entry in a user's active token list. A token is valid only
// while its row exists; logout deletes the row.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Access    string    `json:"access"` // scope tag, currently always "auth"
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
