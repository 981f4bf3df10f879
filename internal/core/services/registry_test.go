// internal/core/services/registry_test.go
package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-be/internal/adapters/memory"
	"github.com/ammerola/storefront-be/internal/core/domain"
	"github.com/ammerola/storefront-be/internal/core/services"
	"github.com/ammerola/storefront-be/test/helpers"
)

func TestCartRegistry_SlotKey(t *testing.T) {
	r := services.NewCartRegistry(memory.NewSlotStore(), "default", nil, helpers.TestLogger())

	tests := []struct {
		name    string
		session string
		want    string
	}{
		{name: "empty_session_uses_plain_slot", session: "", want: "cart"},
		{name: "default_session_uses_plain_slot", session: "default", want: "cart"},
		{name: "other_session_is_namespaced", session: "abc123", want: "cart:abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.SlotKey(tt.session))
		})
	}
}

func TestCartRegistry_Store(t *testing.T) {
	ctx := context.Background()
	slot := memory.NewSlotStore()
	recorder := newCountingRecorder()
	r := services.NewCartRegistry(slot, "", recorder, helpers.TestLogger())

	a := r.Store(ctx, "a")
	assert.Same(t, a, r.Store(ctx, "a"))
	assert.Equal(t, "cart:a", a.Key())

	b := r.Store(ctx, "b")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, recorder.active)

	a.Add(ctx, helpers.CreateTestSnapshot("1", "10"), 1, "", "")
	assert.Equal(t, 1, a.ItemCount())
	assert.Zero(t, b.ItemCount())
	assert.Equal(t, 1, recorder.mutations[services.OpAdd])

	keys := slot.Keys()
	assert.Equal(t, []string{"cart:a"}, keys)
}

func TestCartRegistry_EvictRehydrates(t *testing.T) {
	ctx := context.Background()
	r := services.NewCartRegistry(memory.NewSlotStore(), "", nil, helpers.TestLogger())

	first := r.Store(ctx, "s1")
	first.Add(ctx, helpers.CreateTestSnapshot("1", "10"), 3, "", "")

	r.Evict("s1")
	assert.Zero(t, r.Len())

	second := r.Store(ctx, "s1")
	assert.NotSame(t, first, second)
	assert.Equal(t, 3, second.ItemCount())
}

func TestCartRegistry_EvictIdle(t *testing.T) {
	ctx := context.Background()
	r := services.NewCartRegistry(memory.NewSlotStore(), "", nil, helpers.TestLogger())

	r.Store(ctx, "idle")
	watched := r.Store(ctx, "watched")
	unsubscribe := watched.Subscribe(func(domain.CartSnapshot) {})

	evicted := r.EvictIdle(0)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, r.Len())
	assert.Same(t, watched, r.Store(ctx, "watched"))

	unsubscribe()
	assert.Equal(t, 1, r.EvictIdle(0))
	assert.Zero(t, r.Len())
}

func TestCartRegistry_ConcurrentFirstUse(t *testing.T) {
	ctx := context.Background()
	r := services.NewCartRegistry(memory.NewSlotStore(), "", nil, helpers.TestLogger())

	stores := make([]*services.CartStore, 16)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = r.Store(ctx, "shared")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, r.Len())
	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
}

func TestCartRegistry_CartPort(t *testing.T) {
	ctx := context.Background()
	r := services.NewCartRegistry(memory.NewSlotStore(), "", nil, helpers.TestLogger())

	cart := r.Cart(ctx, "")
	cart.Add(ctx, helpers.CreateTestSnapshot("1", "10"), 2, "", "")

	assert.Equal(t, 2, r.Store(ctx, "").ItemCount())
	assert.Equal(t, "cart", r.Store(ctx, "").Key())
}
