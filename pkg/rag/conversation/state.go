package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"legal-rag-be/pkg/rag"

	"github.com/patrickmn/go-cache"
)

var ErrNotFound = errors.New("conversation not found")

// Loader rehydrates a conversation from persistent storage. It returns
// ErrNotFound (possibly wrapped) when the id is unknown.
type Loader func(ctx context.Context, id string) (*Conversation, error)

// Counter reports how many turns the store holds for a conversation.
type Counter func(ctx context.Context, id string) (int, error)

// State keeps recently used conversations in process so a follow-up turn does
// not reload the whole history from the database. The store stays the source
// of truth: a cached conversation is only used while it holds as many turns
// as the store does.
type State struct {
	mu           sync.Mutex
	cache        *cache.Cache
	historyLimit int
}

func NewState(ttl time.Duration, historyLimit int) *State {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	// Purge expired items every 10 minutes
	return &State{
		cache:        cache.New(ttl, 10*time.Minute),
		historyLimit: historyLimit,
	}
}

func (s *State) HistoryLimit() int {
	return s.historyLimit
}

// Get returns the cached conversation when it is still current, otherwise
// it loads and caches it. Turns appended elsewhere, e.g. by another instance,
// make the cached copy stale.
func (s *State) Get(ctx context.Context, id string, load Loader, count Counter) (*Conversation, error) {
	if x, found := s.cache.Get(id); found {
		cached := x.(*Conversation)
		stored, err := count(ctx, id)
		if err != nil {
			return nil, err
		}
		if cached.Len() == stored {
			return cached, nil
		}
	}

	conv, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Put(conv), nil
}

// Put caches conv unless an entry with at least as many turns is already
// cached, and returns the entry that is cached afterwards. Two concurrent
// loads of one conversation therefore end up sharing one object.
func (s *State) Put(conv *Conversation) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if x, found := s.cache.Get(conv.ID); found {
		if current := x.(*Conversation); current.Len() >= conv.Len() {
			return current
		}
	}
	s.cache.Set(conv.ID, conv, cache.DefaultExpiration)
	return conv
}

func (s *State) Forget(id string) {
	s.cache.Delete(id)
}

// AppendTurn adds turn at the end of conv.
func (s *State) AppendTurn(conv *Conversation, turn rag.Turn) {
	conv.append(turn)
}

// RecentHistory returns the last limit turns of conv, oldest first. A
// non-positive limit uses the configured history limit.
func (s *State) RecentHistory(conv *Conversation, limit int) []rag.Turn {
	if limit <= 0 {
		limit = s.historyLimit
	}
	return conv.recent(limit)
}
