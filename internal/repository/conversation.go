package repository

import (
	"context"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository is the append-only conversation log.
type ConversationRepository struct {
	db dbtx
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

// Save appends one entry. The id and timestamp are assigned by the database.
func (r *ConversationRepository) Save(ctx context.Context, query, response string) (*domain.Conversation, error) {
	c := &domain.Conversation{Query: query, Response: response}
	if err := domain.ValidateConversation(c); err != nil {
		return nil, err
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO conversations (query, response)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		query, response,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every entry in insertion order.
func (r *ConversationRepository) List(ctx context.Context) ([]*domain.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, query, response, created_at
		 FROM conversations
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]*domain.Conversation, 0)
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.Query, &c.Response, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, &c)
	}

	return conversations, rows.Err()
}
