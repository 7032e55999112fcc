package models

import "time"

// User is the account record. PasswordHash is a bcrypt hash; it is stored
// with the record but must never be rendered by the HTTP layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
