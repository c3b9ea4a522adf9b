package domain

import (
	"fmt"
	"time"
)

// Conversation is one served question and the answer returned for it.
type Conversation struct {
	ID        int64
	Query     string
	Response  string
	CreatedAt time.Time
}

// ValidateConversation validates a Conversation before it is persisted
func ValidateConversation(c *Conversation) error {
	if c == nil {
		return fmt.Errorf("conversation cannot be nil")
	}

	if c.Query == "" {
		return fmt.Errorf("conversation Query is required")
	}

	return nil
}
