package mocks

import (
	"context"
	"io"

	"docqa/internal/model"
	"docqa/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	args := m.Called(ctx, ownerID, r, originalFilename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, ownerID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, ownerID, id string) (*model.Document, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Replace(ctx context.Context, ownerID, id string, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	args := m.Called(ctx, ownerID, id, r, originalFilename, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, ownerID, id string) (string, error) {
	args := m.Called(ctx, ownerID, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Content(ctx context.Context, ownerID, id string) (*model.Document, []byte, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Document), args.Get(1).([]byte), args.Error(2)
}
