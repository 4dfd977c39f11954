package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := New[int](4)
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(1)
	b.Publish(2)

	assert.Equal(t, 1, <-a)
	assert.Equal(t, 2, <-a)
	assert.Equal(t, 1, <-c)
	assert.Equal(t, 2, <-c)
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	b := New[int](1)
	ch := b.Subscribe()

	b.Publish(1)
	b.Publish(2) // buffer full, dropped

	assert.Equal(t, 1, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %d", v)
	default:
	}
}

func TestBusPublishNeverBlocksWithoutSubscribers(t *testing.T) {
	b := New[string](1)
	b.Publish("nobody listening")
}

func TestBusCloseClosesChannels(t *testing.T) {
	b := New[int](1)
	ch := b.Subscribe()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing and re-closing after close are no-ops.
	b.Publish(1)
	b.Close()
}

func TestBusSubscribeAfterClose(t *testing.T) {
	b := New[int](1)
	b.Close()
	ch := b.Subscribe()
	_, ok := <-ch
	require.False(t, ok)
}
