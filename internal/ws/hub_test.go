package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(Event{Type: TypeStockUpdate, Action: "stock_out_created"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

func TestPublishStampsEvent(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	hub.Publish(Event{Type: TypeOrderUpdate, Action: "order_confirmed", User: &EventUser{ID: "u1", Name: "Ann"}})

	var ev Event
	require.NoError(t, json.Unmarshal(<-hub.broadcast, &ev))
	assert.Equal(t, TypeOrderUpdate, ev.Type)
	assert.Equal(t, "Ann", ev.User.Name)
	assert.False(t, ev.At.IsZero())
}

func TestRunStopsWithContext(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, hub.ClientCount())

	// no receiver left; must not hang
	hub.Unregister(nil)
}
