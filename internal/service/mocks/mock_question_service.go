package mocks

import (
	"context"

	"docqa/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockQuestionService struct {
	mock.Mock
}

var _ service.QuestionService = (*MockQuestionService)(nil)

func (m *MockQuestionService) Ask(ctx context.Context, ownerID, documentID, question string) (string, error) {
	args := m.Called(ctx, ownerID, documentID, question)
	return args.String(0), args.Error(1)
}
