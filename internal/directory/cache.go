package directory

import (
	"sync"

	"github.com/craftfolio/backend/internal/models"
)

// ProfileCache is a bounded profile lookup cache with caller-controlled
// lifetime. It replaces the module-level map the old author-lookup path
// kept for the life of the process: owners construct one per server (or per
// request fan-out) and let it go when done. Eviction is FIFO by insertion
// order, which is enough for render-time author resolution.
type ProfileCache struct {
	mu       sync.Mutex
	dir      Directory
	capacity int
	entries  map[string]models.Profile
	order    []string
}

// NewProfileCache creates a cache over dir holding at most capacity
// profiles.
func NewProfileCache(dir Directory, capacity int) *ProfileCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ProfileCache{
		dir:      dir,
		capacity: capacity,
		entries:  make(map[string]models.Profile, capacity),
	}
}

// Resolve returns the live profile for uid, consulting the directory on a
// miss. The second return is false when the user is unknown.
func (c *ProfileCache) Resolve(uid string) (models.Profile, bool) {
	c.mu.Lock()
	if p, ok := c.entries[uid]; ok {
		c.mu.Unlock()
		return p, true
	}
	c.mu.Unlock()

	user, err := c.dir.GetByUID(uid)
	if err != nil {
		return models.Profile{}, false
	}
	p := user.ToProfile()

	c.mu.Lock()
	if _, ok := c.entries[uid]; !ok {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[uid] = p
		c.order = append(c.order, uid)
	}
	c.mu.Unlock()
	return p, true
}

// Len returns the number of cached profiles.
func (c *ProfileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
