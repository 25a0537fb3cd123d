// internal/app/system/console/hub.go
package console

import (
	"sync"
	"time"

	"github.com/scanmenu/admindesk/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Hub holds the live consoles, keyed by console id (stored in the admin's
// session cookie).
type Hub struct {
	mu       sync.Mutex
	consoles map[string]*Console
	log      *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{consoles: map[string]*Console{}, log: log}
}

// Get returns the console with id and marks it used.
func (h *Hub) Get(id string) (*Console, bool) {
	h.mu.Lock()
	c, ok := h.consoles[id]
	h.mu.Unlock()
	if ok {
		c.Touch()
	}
	return c, ok
}

// GetOrCreate returns the console with id, creating it with create when
// there is none.
func (h *Hub) GetOrCreate(id string, create func() (*Console, error)) (*Console, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.consoles[id]; ok {
		c.Touch()
		return c, nil
	}
	c, err := create()
	if err != nil {
		return nil, err
	}
	h.consoles[c.ID()] = c
	metrics.ConsolesActive.Set(float64(len(h.consoles)))
	return c, nil
}

// Drop closes and removes the console with id.
func (h *Hub) Drop(id string) {
	h.mu.Lock()
	c, ok := h.consoles[id]
	delete(h.consoles, id)
	metrics.ConsolesActive.Set(float64(len(h.consoles)))
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}

// EvictIdle drops consoles not used for ttl, and consoles whose session
// the API rejected. Idleness is measured on each console's own clock, the
// one that stamps its activity. It returns how many were dropped.
func (h *Hub) EvictIdle(ttl time.Duration) int {
	h.mu.Lock()
	var stale []*Console
	for id, c := range h.consoles {
		if c.Expired() || c.IdleLongerThan(ttl) {
			stale = append(stale, c)
			delete(h.consoles, id)
		}
	}
	metrics.ConsolesActive.Set(float64(len(h.consoles)))
	h.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	if len(stale) > 0 {
		h.log.Info("evicted idle consoles", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Len returns the number of live consoles.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.consoles)
}

// CloseAll drops every console.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	all := h.consoles
	h.consoles = map[string]*Console{}
	metrics.ConsolesActive.Set(0)
	h.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
}
