package handler

import (
	"strings"

	dErrors "playfinder/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 120 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 120 characters")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	if len(r.Password) > 72 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at most 72 characters")
	}
	return nil
}

// LoginRequest is the HTTP request body for POST /sessions.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || len(email) > 254 {
		return dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
	}
	return nil
}
