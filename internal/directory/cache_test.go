package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/backend/errs"
	"github.com/craftfolio/backend/internal/models"
)

// stubDirectory serves profiles from a map and counts lookups.
type stubDirectory struct {
	users   map[string]*models.User
	lookups int
}

func (s *stubDirectory) Create(user *models.User) error { return nil }
func (s *stubDirectory) Update(user *models.User) error { return nil }

func (s *stubDirectory) GetByUID(uid string) (*models.User, error) {
	s.lookups++
	if u, ok := s.users[uid]; ok {
		return u, nil
	}
	return nil, errs.UserNotFound
}

func (s *stubDirectory) GetByFirebaseUID(firebaseUID string) (*models.User, error) {
	return nil, errs.UserNotFound
}

func (s *stubDirectory) Search(query string) ([]models.User, error) { return nil, nil }

func TestProfileCacheHitAvoidsLookup(t *testing.T) {
	dir := &stubDirectory{users: map[string]*models.User{
		"u1": {UID: "u1", DisplayName: "Ada", Username: "ada"},
	}}
	cache := NewProfileCache(dir, 4)

	p, ok := cache.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, 1, dir.lookups)

	_, ok = cache.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, 1, dir.lookups)
}

func TestProfileCacheMiss(t *testing.T) {
	dir := &stubDirectory{users: map[string]*models.User{}}
	cache := NewProfileCache(dir, 4)

	_, ok := cache.Resolve("ghost")
	assert.False(t, ok)
	// Unknown users are not cached; a later lookup tries again.
	_, ok = cache.Resolve("ghost")
	assert.False(t, ok)
	assert.Equal(t, 2, dir.lookups)
}

func TestProfileCacheBounded(t *testing.T) {
	dir := &stubDirectory{users: map[string]*models.User{
		"u1": {UID: "u1", DisplayName: "A"},
		"u2": {UID: "u2", DisplayName: "B"},
		"u3": {UID: "u3", DisplayName: "C"},
	}}
	cache := NewProfileCache(dir, 2)

	cache.Resolve("u1")
	cache.Resolve("u2")
	assert.Equal(t, 2, cache.Len())

	// Third insert evicts the oldest entry.
	cache.Resolve("u3")
	assert.Equal(t, 2, cache.Len())

	dir.lookups = 0
	cache.Resolve("u1")
	assert.Equal(t, 1, dir.lookups)
}

func TestProfileCacheMinimumCapacity(t *testing.T) {
	dir := &stubDirectory{users: map[string]*models.User{
		"u1": {UID: "u1", DisplayName: "A"},
	}}
	cache := NewProfileCache(dir, 0)
	_, ok := cache.Resolve("u1")
	require.True(t, ok)
	assert.Equal(t, 1, cache.Len())
}
