package service

import (
	"context"

	"github.com/cloo-solutions/finrag/internal/domain"
)

// ConversationService reads the conversation log.
type ConversationService struct {
	repo ConversationRepositoryInterface
}

func NewConversationService(repo ConversationRepositoryInterface) *ConversationService {
	return &ConversationService{repo: repo}
}

// List returns every logged exchange in insertion order, never nil.
func (s *ConversationService) List(ctx context.Context) ([]*domain.Conversation, error) {
	conversations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if conversations == nil {
		conversations = []*domain.Conversation{}
	}
	return conversations, nil
}
