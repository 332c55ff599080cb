package models

import "time"

// Card represents a single todo item owned by a user.
type Card struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completedAt"` // epoch milliseconds, null while not completed
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"createdAt"`
}
