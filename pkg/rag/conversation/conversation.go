package conversation

import (
	"sync"
	"time"

	"legal-rag-be/pkg/rag"
)

const DefaultHistoryLimit = 10

// Conversation is the in-memory shape of an append-only turn sequence.
// It is safe for concurrent use.
type Conversation struct {
	ID        string
	OwnerID   string
	CreatedAt time.Time

	mu    sync.RWMutex
	name  string
	turns []rag.Turn
}

// New builds a conversation. Turns are copied; callers may reuse the slice.
func New(id, ownerID, name string, createdAt time.Time, turns []rag.Turn) *Conversation {
	c := &Conversation{
		ID:        id,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		name:      name,
		turns:     make([]rag.Turn, len(turns)),
	}
	copy(c.turns, turns)
	return c
}

func (c *Conversation) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetNameOnce names the conversation if it has no name yet. It reports
// whether the name was applied.
func (c *Conversation) SetNameOnce(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.name != "" || name == "" {
		return false
	}
	c.name = name
	return true
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Turns returns a copy of every turn, oldest first.
func (c *Conversation) Turns() []rag.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]rag.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) append(turn rag.Turn) {
	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()
}

func (c *Conversation) recent(limit int) []rag.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start := 0
	if limit >= 0 && len(c.turns) > limit {
		start = len(c.turns) - limit
	}
	out := make([]rag.Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}
