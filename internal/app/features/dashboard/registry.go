// internal/app/features/dashboard/registry.go
package dashboard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrViewNotFound is returned for unknown, expired or foreign view ids.
var ErrViewNotFound = errors.New("dashboard view not found")

// DefaultMaxPerOwner bounds how many live views one user may hold.
const DefaultMaxPerOwner = 8

// Registry holds the live views so polls and navigation can find them.
type Registry struct {
	// MaxPerOwner caps the views per user; creating one more evicts that
	// user's least recently used view. Zero or less means no cap.
	MaxPerOwner int

	mu    sync.Mutex
	views map[string]*View
}

func NewRegistry() *Registry {
	return &Registry{
		MaxPerOwner: DefaultMaxPerOwner,
		views:       make(map[string]*View),
	}
}

// Create builds a view with a fresh id and registers it.
func (reg *Registry) Create(owner primitive.ObjectID, deps Deps) *View {
	v := NewView(uuid.NewString(), owner, deps)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.MaxPerOwner > 0 {
		for reg.ownedLocked(owner) >= reg.MaxPerOwner {
			reg.evictOldestLocked(owner)
		}
	}
	reg.views[v.ID] = v
	return v
}

func (reg *Registry) ownedLocked(owner primitive.ObjectID) int {
	n := 0
	for _, v := range reg.views {
		if v.OwnerID == owner {
			n++
		}
	}
	return n
}

func (reg *Registry) evictOldestLocked(owner primitive.ObjectID) {
	var oldest *View
	var oldestSeen time.Time
	for _, v := range reg.views {
		if v.OwnerID != owner {
			continue
		}
		seen := v.LastSeen()
		if oldest == nil || seen.Before(oldestSeen) {
			oldest, oldestSeen = v, seen
		}
	}
	if oldest != nil {
		delete(reg.views, oldest.ID)
	}
}

// Get returns the view with id if it belongs to owner. A view owned by
// someone else is reported as not found.
func (reg *Registry) Get(id string, owner primitive.ObjectID) (*View, error) {
	reg.mu.Lock()
	v, ok := reg.views[id]
	reg.mu.Unlock()
	if !ok || v.OwnerID != owner {
		return nil, ErrViewNotFound
	}
	v.Touch()
	return v, nil
}

// Len returns the number of live views.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.views)
}

// SweepIdle drops views unused for longer than idle and returns how many
// were removed. In-flight fetches of a dropped view finish harmlessly.
func (reg *Registry) SweepIdle(idle time.Duration) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	n := 0
	for id, v := range reg.views {
		if v.IdleFor() > idle {
			delete(reg.views, id)
			n++
		}
	}
	return n
}
