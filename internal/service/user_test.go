package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/auth"
	"docqa/internal/config"
	"docqa/internal/model"
	"docqa/internal/repository"
	repoMocks "docqa/internal/repository/mocks"
)

func testIssuer() *auth.Issuer {
	return auth.NewIssuer(config.AuthConfig{JWTSecret: "test-secret", AccessTTLSec: 300, RefreshTTLSec: 86400})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(mRepo *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:     "happy path stores a bcrypt hash",
			username: "alice",
			password: "s3cret",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("FindByUsername", ctx, "alice").Return(nil, sql.ErrNoRows)
				mRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Username == "alice" && u.ID != "" &&
						u.PasswordHash != "s3cret" && auth.CheckPassword(u.PasswordHash, "s3cret")
				})).Return(&model.User{ID: "u-1", Username: "alice"}, nil)
			},
		},
		{
			name:       "missing username",
			password:   "s3cret",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrCredentialsRequired,
		},
		{
			name:       "missing password",
			username:   "alice",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrCredentialsRequired,
		},
		{
			name:       "password beyond bcrypt limit",
			username:   "alice",
			password:   strings.Repeat("p", 73),
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrPasswordTooLong,
		},
		{
			name:     "username taken",
			username: "alice",
			password: "s3cret",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("FindByUsername", ctx, "alice").Return(&model.User{ID: "u-0"}, nil)
			},
			wantErr: ErrUserExists,
		},
		{
			name:     "concurrent registration wins the insert",
			username: "alice",
			password: "s3cret",
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("FindByUsername", ctx, "alice").Return(nil, sql.ErrNoRows)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantErr: ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			tt.setupMocks(mRepo)

			u, err := NewUserService(mRepo, testIssuer()).Register(ctx, tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", u.Username)
			}
			mRepo.AssertExpectations(t)
		})
	}

	t.Run("lookup failure is passed through", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByUsername", ctx, "alice").Return(nil, errors.New("conn reset"))

		_, err := NewUserService(mRepo, testIssuer()).Register(ctx, "alice", "pw")

		assert.EqualError(t, err, "conn reset")
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	alice := &model.User{ID: "u-1", Username: "alice", PasswordHash: hash}

	t.Run("valid credentials", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByUsername", ctx, "alice").Return(alice, nil)
		iss := testIssuer()

		pair, err := NewUserService(mRepo, iss).Login(ctx, "alice", "s3cret")

		require.NoError(t, err)
		sub, err := iss.ParseAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, "u-1", sub)
		sub, err = iss.ParseRefresh(pair.Refresh)
		require.NoError(t, err)
		assert.Equal(t, "u-1", sub)
	})

	t.Run("wrong password", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByUsername", ctx, "alice").Return(alice, nil)

		_, err := NewUserService(mRepo, testIssuer()).Login(ctx, "alice", "nope")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByUsername", ctx, "bob").Return(nil, sql.ErrNoRows)

		_, err := NewUserService(mRepo, testIssuer()).Login(ctx, "bob", "s3cret")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := NewUserService(new(repoMocks.MockUserRepository), testIssuer()).Login(ctx, "", "")

		assert.ErrorIs(t, err, ErrCredentialsRequired)
	})
}

func TestUserService_Refresh(t *testing.T) {
	ctx := context.Background()
	iss := testIssuer()
	pair, err := iss.IssuePair("u-1")
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1"}, nil)

		access, err := NewUserService(mRepo, iss).Refresh(ctx, pair.Refresh)

		require.NoError(t, err)
		sub, err := iss.ParseAccess(access)
		require.NoError(t, err)
		assert.Equal(t, "u-1", sub)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)

		_, err := NewUserService(mRepo, iss).Refresh(ctx, pair.Access)

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		mRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("user deleted since issue", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByID", ctx, "u-1").Return(nil, sql.ErrNoRows)

		_, err := NewUserService(mRepo, iss).Refresh(ctx, pair.Refresh)

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
