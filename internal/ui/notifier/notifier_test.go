package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/pkg/core"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestNotifier_SubscribeClose(t *testing.T) {
	n := New()

	sub := n.Subscribe()
	require.NotNil(t, sub.C)
	assert.Equal(t, 1, n.Len())

	sub.Close()
	assert.Equal(t, 0, n.Len())

	_, open := <-sub.C
	assert.False(t, open, "channel is closed")

	// Closing twice is safe.
	sub.Close()
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	s1 := n.Subscribe()
	s2 := n.Subscribe()
	defer s1.Close()
	defer s2.Close()

	n.Broadcast(Event{Kind: KindReloaded})

	assert.Equal(t, KindReloaded, receive(t, s1).Kind)
	assert.Equal(t, KindReloaded, receive(t, s2).Kind)
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := New()

	sub := n.Subscribe()
	defer sub.Close()

	n.Broadcast(Event{Kind: KindModelSaved, ModelID: "1"})

	done := make(chan struct{})
	go func() {
		n.Broadcast(Event{Kind: KindModelSaved, ModelID: "2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on full channel")
	}
	assert.Equal(t, "1", receive(t, sub).ModelID)
}

func TestNotifier_ConcurrentAccess(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := n.Subscribe()
			n.Broadcast(Event{Kind: KindReloaded})
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			n.Broadcast(Event{Kind: KindSettings})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, n.Len())
}

func TestEvent_ChangesModels(t *testing.T) {
	assert.True(t, Event{Kind: KindReloaded}.ChangesModels())
	assert.True(t, Event{Kind: KindModelSaved, ModelID: "1"}.ChangesModels())
	assert.True(t, Event{Kind: KindModelDeleted, ModelID: "1"}.ChangesModels())
	assert.False(t, Event{Kind: KindSettings}.ChangesModels())
}

func TestStore_BroadcastsMutations(t *testing.T) {
	n := New()
	sub := n.Subscribe()
	defer sub.Close()

	s := WrapStore(store.NewMemoryStore(store.SampleModels()...), n)
	ctx := context.Background()

	m, err := s.CreateModel(ctx, core.ModelInput{Name: "Orders", ScheduleInterval: "0 0 * * *"})
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: KindModelSaved, ModelID: m.ID}, receive(t, sub))

	_, err = s.UpdateModel(ctx, "1", core.ModelInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: KindModelSaved, ModelID: "1"}, receive(t, sub))

	require.NoError(t, s.DeleteModel(ctx, "2"))
	assert.Equal(t, Event{Kind: KindModelDeleted, ModelID: "2"}, receive(t, sub))

	require.NoError(t, s.SaveSettings(ctx, core.DefaultSettings()))
	assert.Equal(t, KindSettings, receive(t, sub).Kind)

	// Failed mutations stay silent.
	require.Error(t, s.DeleteModel(ctx, "missing"))
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}
