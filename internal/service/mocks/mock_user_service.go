package mocks

import (
	"context"

	"docqa/internal/auth"
	"docqa/internal/model"
	"docqa/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockUserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}
