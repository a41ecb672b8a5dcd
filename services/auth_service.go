package services

import (
	"fmt"
	"time"

	"message-feed/auth"
	"message-feed/domain"
	"message-feed/errors"
	"message-feed/repositories"
)

type IAuthService interface {
	Register(email, username, password string) (Token, error)
	Login(email, password string) (Token, error)
	VerifyIdentity(token string) (*domain.Identity, error)
}

type Token string

type AuthService struct {
	users    repositories.IUserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repositories.IUserRepository, secret []byte, tokenTTL time.Duration) IAuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(email, username, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	}

	// Validate before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// Hashing happens in the service layer so the repository never sees a
	// plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(email, username, hashedPassword)
	if err != nil {
		return "", err // propagates ErrUserAlreadyExists when the email is taken
	}

	token, err := auth.GenerateToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

// VerifyIdentity resolves a raw token to the caller identity. An empty
// token is simply anonymous, not an error.
func (s *AuthService) VerifyIdentity(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	return auth.VerifyToken(token, s.secret)
}
