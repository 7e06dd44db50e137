package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

func completion(rev int64) domain.Completion {
	return domain.Completion{
		RevisionID: rev,
		Target:     domain.NewTarget(0, "Page"),
		AuthorName: "Alice",
		Kind:       domain.KindEdit,
	}
}

func TestHub_NotifyStampsIncreasingSeq(t *testing.T) {
	t.Parallel()

	hub := NewHub(NewClockAt(100))
	var got []domain.Completion
	unsub := hub.Subscribe(func(_ context.Context, c domain.Completion) {
		got = append(got, c)
	})
	defer unsub()

	hub.Notify(context.Background(), completion(1))
	hub.Notify(context.Background(), completion(2))

	require.Len(t, got, 2)
	assert.Equal(t, int64(101), got[0].Seq)
	assert.Equal(t, int64(102), got[1].Seq)
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	calls := 0
	unsub := hub.Subscribe(func(context.Context, domain.Completion) { calls++ })

	hub.Notify(context.Background(), completion(1))
	unsub()
	unsub() // idempotent
	hub.Notify(context.Background(), completion(2))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_DeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	var order []string
	u1 := hub.Subscribe(func(context.Context, domain.Completion) { order = append(order, "first") })
	u2 := hub.Subscribe(func(context.Context, domain.Completion) { order = append(order, "second") })
	defer u1()
	defer u2()

	hub.Notify(context.Background(), completion(1))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestScope_DefersUntilRunDeferred(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	var got []int64
	unsub := hub.Subscribe(func(_ context.Context, c domain.Completion) {
		got = append(got, c.RevisionID)
	})
	defer unsub()

	ctx, scope := hub.BeginScope(context.Background())
	hub.NotifyDeferred(ctx, completion(10))
	hub.Notify(ctx, completion(11))
	hub.NotifyDeferred(ctx, completion(12))

	assert.Equal(t, []int64{11}, got)
	assert.Equal(t, 2, scope.Pending())

	n := scope.RunDeferred(ctx)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{11, 10, 12}, got)
	assert.Equal(t, 0, scope.Pending())
}

func TestHub_NotifyDeferredWithoutScopeIsImmediate(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	calls := 0
	unsub := hub.Subscribe(func(context.Context, domain.Completion) { calls++ })
	defer unsub()

	hub.NotifyDeferred(context.Background(), completion(1))

	assert.Equal(t, 1, calls)
}

func TestClock_Monotonic(t *testing.T) {
	t.Parallel()

	c := NewClock()
	prev := c.Current()
	for range 100 {
		next := c.Next()
		require.Greater(t, next, prev)
		prev = next
	}
}
