package handlers

import (
	"context"
	"io"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Ask(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) List(ctx context.Context) ([]*domain.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

type MockUploadService struct {
	mock.Mock
	body string
}

func (m *MockUploadService) Upload(ctx context.Context, filename string, r io.Reader) (*service.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.body = string(data)

	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}
