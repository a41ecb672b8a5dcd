package auth

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"message-feed/domain"
	"message-feed/errors"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=32,alphanum"`
	Password string `validate:"required,min=12,max=72"`
}

type PostMessageRequest struct {
	Text string `validate:"required"`
}

// ValidateRegister checks registration input before any cryptographic work.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// ValidateMessage enforces the feed's text rules: non-empty, bounded length.
func ValidateMessage(req PostMessageRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.ErrValidation
	}
	if utf8.RuneCountInString(req.Text) > domain.MaxMessageLength {
		return errors.ErrValidation
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
