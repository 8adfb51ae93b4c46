// Package models defines the user account entity.
package models

import (
	"time"

	id "playfinder/pkg/domain"
)

// User is a registered account. PasswordHash and AccessToken never serialize;
// the handler layer decides what to expose.
type User struct {
	ID           id.UserID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	AccessToken  string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
