package auth

import (
	"strings"
	"sync"
	"time"
)

const maxPendingStates = 10000

// pendingLogin is what a sign-in remembers between start and callback.
type pendingLogin struct {
	expires time.Time
	next    string
}

// stateStore holds single-use OAuth states in memory.
type stateStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]pendingLogin
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]pendingLogin),
	}
}

// put records state. Expired entries are pruned first; when the store is still
// full the new state is refused.
func (s *stateStore) put(state, next string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.items) >= maxPendingStates {
		for k, v := range s.items {
			if now.After(v.expires) {
				delete(s.items, k)
			}
		}
		if len(s.items) >= maxPendingStates {
			return false
		}
	}
	s.items[state] = pendingLogin{expires: now.Add(s.ttl), next: next}
	return true
}

// consume returns the stored login and removes it. Expired states are not found.
func (s *stateStore) consume(state string) (pendingLogin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	login, ok := s.items[state]
	if !ok {
		return pendingLogin{}, false
	}
	delete(s.items, state)
	if s.now().After(login.expires) {
		return pendingLogin{}, false
	}
	return login, true
}

// safeNext keeps only app-relative paths so the UI cannot be sent off-site.
func safeNext(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 512 || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return ""
	}
	return raw
}
