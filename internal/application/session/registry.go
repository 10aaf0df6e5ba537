package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an idle session keeps its history.
const DefaultTTL = 2 * time.Hour

// Registry keeps session states in memory with a sliding idle TTL.
type Registry struct {
	ttl   time.Duration
	items *cache.Cache
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := cache.New(ttl, ttl/2)
	// session habis → history dibersihkan
	c.OnEvicted(func(_ string, v interface{}) {
		if st, ok := v.(*State); ok {
			st.Clear()
		}
	})
	return &Registry{ttl: ttl, items: c}
}

// Start opens a new session with a fresh id.
func (r *Registry) Start() *State {
	st := NewState(uuid.NewString())
	r.items.Set(st.ID, st, r.ttl)
	return st
}

// Get returns the live session for id and extends its TTL.
func (r *Registry) Get(id string) (*State, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := r.items.Get(id)
	if !ok {
		return nil, false
	}
	st := v.(*State)
	r.items.Set(id, st, r.ttl)
	return st, true
}

// Resolve returns the session for id, starting a new one when unknown.
// The bool is true when a new session was started.
func (r *Registry) Resolve(id string) (*State, bool) {
	if st, ok := r.Get(id); ok {
		return st, false
	}
	return r.Start(), true
}

// End closes the session and clears its history.
func (r *Registry) End(id string) bool {
	if _, ok := r.items.Get(id); !ok {
		return false
	}
	r.items.Delete(id)
	return true
}

// Active is the number of live sessions.
func (r *Registry) Active() int {
	return r.items.ItemCount()
}
