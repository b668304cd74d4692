package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/rag/progress"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(nil, logger.NewNopLogger())
}

func drain(c *Client) []progress.Event {
	var out []progress.Event
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var e progress.Event
			_ = json.Unmarshal(data, &e)
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestHub_SendToRegisteredClient(t *testing.T) {
	hub := newTestHub()
	c := NewClient(hub, nil, "client-1")
	hub.Register(c)

	hub.Send("client-1", progress.Event{Step: progress.StepStart, Message: "Processing"})
	hub.Send("client-2", progress.Event{Step: progress.StepStart, Message: "nobody listens"})

	events := drain(c)
	require.Len(t, events, 1)
	assert.Equal(t, progress.StepStart, events[0].Step)
	assert.Equal(t, "Processing", events[0].Message)
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := newTestHub()
	c := NewClient(hub, nil, "client-1")
	hub.Register(c)
	hub.Unregister(c)

	hub.Send("client-1", progress.Event{Step: progress.StepStart})

	_, ok := hub.Lookup("client-1")
	assert.False(t, ok)
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_ReRegisterReplacesAndClosesPrevious(t *testing.T) {
	hub := newTestHub()
	old := NewClient(hub, nil, "client-1")
	fresh := NewClient(hub, nil, "client-1")
	hub.Register(old)
	hub.Register(fresh)

	// late unregister of the old socket must not evict the new one
	hub.Unregister(old)

	current, ok := hub.Lookup("client-1")
	require.True(t, ok)
	assert.Same(t, fresh, current)
	_, open := <-old.send
	assert.False(t, open)
}

func TestHub_SlowClientIsDroppedWithoutBlocking(t *testing.T) {
	hub := newTestHub()
	c := NewClient(hub, nil, "slow")
	hub.Register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize+10; i++ {
			hub.Send("slow", progress.Event{Step: progress.StepSearch})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a slow client")
	}

	_, ok := hub.Lookup("slow")
	assert.False(t, ok)
	assert.Len(t, drain(c), sendBufferSize)
}

func TestHub_ConcurrentRegisterSend(t *testing.T) {
	hub := newTestHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			c := NewClient(hub, nil, id)
			hub.Register(c)
			hub.Send(id, progress.Event{Step: progress.StepStart})
			hub.Unregister(c)
		}(i)
	}
	wg.Wait()

	count := 0
	hub.clients.Range(func(_, _ any) bool { count++; return true })
	assert.Equal(t, 0, count)
}

func TestHub_ImplementsReporterSink(t *testing.T) {
	hub := newTestHub()
	c := NewClient(hub, nil, "client-1")
	hub.Register(c)

	r := progress.NewReporter(hub, "client-1", logger.NewNopLogger())
	r.Emit(progress.StepStart, "a")
	r.Emit(progress.StepIntent, "b")
	r.Complete("c")

	events := drain(c)
	require.Len(t, events, 3)
	assert.Equal(t, progress.StepComplete, events[2].Step)
}

func TestHub_RelaysAcrossInstancesInOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	newClusterHub := func() *Hub {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return NewHub(rdb, logger.NewNopLogger())
	}
	origin, holder := newClusterHub(), newClusterHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go origin.Run(ctx)
	go holder.Run(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(redisChannel)[redisChannel] == 2
	}, 2*time.Second, 10*time.Millisecond)

	c := NewClient(holder, nil, "remote")
	holder.Register(c)

	steps := []progress.Step{
		progress.StepStart, progress.StepIntent, progress.StepSearch,
		progress.StepEmbedding, progress.StepFiltering, progress.StepRanking,
		progress.StepSummary, progress.StepFinalizing, progress.StepComplete,
	}
	for turn := 0; turn < 10; turn++ {
		for _, step := range steps {
			origin.Send("remote", progress.Event{Step: step})
		}

		var got []progress.Step
		require.Eventually(t, func() bool {
			for _, e := range drain(c) {
				got = append(got, e.Step)
			}
			return len(got) >= len(steps)
		}, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, steps, got, "turn %d", turn)
	}
}

func TestHub_RelayQueueFullDropsWithoutBlocking(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	// Run is not started, so nothing drains the queue
	hub := NewHub(rdb, logger.NewNopLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < outboundBufferSize+10; i++ {
			hub.Send("elsewhere", progress.Event{Step: progress.StepSearch})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full relay queue")
	}
	assert.Len(t, hub.outbound, outboundBufferSize)
}
