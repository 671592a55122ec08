package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"docqa/internal/auth"
	"docqa/internal/model"
	"docqa/internal/repository"
)

var (
	ErrCredentialsRequired = errors.New("Please provide username and password")
	ErrUserExists          = errors.New("User already exists")
	ErrInvalidCredentials  = errors.New("no active account found with the given credentials")
	ErrPasswordTooLong     = errors.New("password must be at most 72 bytes")
)

// maxPasswordLen is the bcrypt input limit.
const maxPasswordLen = 72

// UserService covers registration and the token exchange.
type UserService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)

	// Login exchanges credentials for an access/refresh pair.
	Login(ctx context.Context, username, password string) (auth.TokenPair, error)

	// Refresh returns a new access token for a valid refresh token whose user still exists.
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type userService struct {
	repo   repository.UserRepository
	issuer *auth.Issuer
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository, issuer *auth.Issuer) UserService {
	return &userService{repo: repo, issuer: issuer}
}

func (s *userService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if len(password) > maxPasswordLen {
		return nil, ErrPasswordTooLong
	}

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// Lost a race against a concurrent registration.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	if username == "" || password == "" {
		return auth.TokenPair{}, ErrCredentialsRequired
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	return s.issuer.IssuePair(u.ID)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}
	return s.issuer.IssueAccess(userID)
}
