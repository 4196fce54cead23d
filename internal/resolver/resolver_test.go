package resolver

import (
	"testing"

	"api-contract-validator/internal/contextstore"

	"github.com/stretchr/testify/assert"
)

func TestResolveNoPlaceholders(t *testing.T) {
	store := contextstore.New()
	got := Resolve("/health", store, 0)
	assert.Equal(t, []string{"/health"}, got)
}

func TestResolveFallsBackToPlaceholder(t *testing.T) {
	store := contextstore.New()
	got := Resolve("/items/{id}", store, 0)
	assert.Equal(t, []string{"/items/dummy-id"}, got)
}

func TestResolveCardinality(t *testing.T) {
	store := contextstore.New()
	store.Record("userId", "u1")
	store.Record("userId", "u2")
	store.Record("postId", "p1")
	store.Record("postId", "p2")
	store.Record("postId", "p3")

	got := Resolve("/users/{userId}/posts/{postId}", store, 0)
	assert.Len(t, got, 6)
}

func TestResolveRowMajorOrder(t *testing.T) {
	store := contextstore.New()
	store.Record("a", "1")
	store.Record("a", "2")
	store.Record("b", "x")
	store.Record("b", "y")

	got := Resolve("/{a}/{b}", store, 0)
	// First placeholder varies slowest.
	assert.Equal(t, []string{"/1/x", "/1/y", "/2/x", "/2/y"}, got)
}

func TestResolveFanoutCapTruncates(t *testing.T) {
	store := contextstore.New()
	for _, v := range []string{"1", "2", "3", "4", "5"} {
		store.Record("a", v)
		store.Record("b", v)
	}

	got := Resolve("/{a}/{b}", store, 7)
	assert.Len(t, got, 7)
	assert.Equal(t, "/1/1", got[0])
}

func TestResolveRepeatedPlaceholder(t *testing.T) {
	store := contextstore.New()
	store.Record("id", "a")
	store.Record("id", "b")

	got := Resolve("/{id}/copy/{id}", store, 0)
	assert.Len(t, got, 4)
	assert.Contains(t, got, "/a/copy/b")
}

func TestPlaceholders(t *testing.T) {
	assert.Empty(t, Placeholders("/plain"))
	assert.Equal(t, []string{"id", "postId"}, Placeholders("/users/{id}/posts/{postId}"))
}
