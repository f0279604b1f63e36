package view

import (
	"sync"
	"time"

	"taskdeck/domain/task"
	"taskdeck/internal/metrics"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 12 * time.Hour
)

// Registry keeps one View per browser session. Idle sessions expire and the
// least recently used ones are evicted past capacity.
type Registry struct {
	gateway task.Gateway

	mu    sync.Mutex
	views *expirable.LRU[string, *View]
}

func NewRegistry(gateway task.Gateway, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	onEvict := func(sessionID string, _ *View) {
		metrics.Sessions.Dec()
		log.WithField("session_id", sessionID).Debug("task view evicted")
	}

	return &Registry{
		gateway: gateway,
		views:   expirable.NewLRU[string, *View](size, onEvict, ttl),
	}
}

// NewSessionID returns a fresh opaque session identifier.
func (r *Registry) NewSessionID() string {
	return uuid.NewString()
}

// Get returns the view of sessionID, creating an empty one when the session
// is unknown or expired. Every access extends the session's lifetime.
func (r *Registry) Get(sessionID string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.views.Get(sessionID)
	if !ok {
		// Drop an expired entry so its eviction is accounted for.
		r.views.Remove(sessionID)
		v = New(r.gateway, WithLogger(log.WithFields(log.Fields{
			"component":  "view",
			"session_id": sessionID,
		})))
		metrics.Sessions.Inc()
	}
	r.views.Add(sessionID, v)
	return v
}

func (r *Registry) Len() int {
	return r.views.Len()
}
