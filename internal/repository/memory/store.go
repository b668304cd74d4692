package memory

import (
	"sync"

	"github.com/patrickmn/go-cache"
)

// Store holds every in-process table. Entries never expire; the store lives
// as long as the process and is used when no database is configured.
type Store struct {
	mu            sync.Mutex
	conversations *cache.Cache
	turns         *cache.Cache
	documents     *cache.Cache
	chunks        *cache.Cache
}

func NewStore() *Store {
	return &Store{
		conversations: cache.New(cache.NoExpiration, 0),
		turns:         cache.New(cache.NoExpiration, 0),
		documents:     cache.New(cache.NoExpiration, 0),
		chunks:        cache.New(cache.NoExpiration, 0),
	}
}

func documentKey(title, year string) string {
	return title + "\x00" + year
}
