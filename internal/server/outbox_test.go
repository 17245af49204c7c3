package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxFIFO(t *testing.T) {
	o := newOutbox(4)
	require.NoError(t, o.Push([]byte("one")))
	require.NoError(t, o.Push([]byte("two")))
	assert.Equal(t, 2, o.Len())

	ctx := context.Background()
	got, ok := o.Next(ctx)
	require.True(t, ok)
	assert.Equal(t, "one", string(got))
	got, ok = o.Next(ctx)
	require.True(t, ok)
	assert.Equal(t, "two", string(got))
}

func TestOutboxFull(t *testing.T) {
	o := newOutbox(2)
	require.NoError(t, o.Push([]byte("a")))
	require.NoError(t, o.Push([]byte("b")))
	assert.ErrorIs(t, o.Push([]byte("c")), ErrOutboxFull)
	assert.Equal(t, 2, o.Len())
}

func TestOutboxNoticeUsesHeadroom(t *testing.T) {
	o := newOutbox(1)
	require.NoError(t, o.Push([]byte("bob: hi")))
	assert.ErrorIs(t, o.Push([]byte("bob: again")), ErrOutboxFull)

	require.NoError(t, o.PushNotice([]byte(">>> carol left the chat.")))
	assert.ErrorIs(t, o.PushNotice([]byte(">>> dave left the chat.")), ErrOutboxFull)
	assert.ErrorIs(t, o.Push([]byte("bob: still full")), ErrOutboxFull)
	assert.Equal(t, 2, o.Len())
}

func TestOutboxCloseDrainsThenStops(t *testing.T) {
	o := newOutbox(4)
	require.NoError(t, o.Push([]byte("last")))
	o.Close()
	o.Close()

	assert.ErrorIs(t, o.Push([]byte("late")), ErrOutboxClosed)

	got, ok := o.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "last", string(got))

	_, ok = o.Next(context.Background())
	assert.False(t, ok)
}

func TestOutboxNextWaitsForPush(t *testing.T) {
	o := newOutbox(4)
	result := make(chan string, 1)
	go func() {
		got, _ := o.Next(context.Background())
		result <- string(got)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, o.Push([]byte("wake")))

	select {
	case got := <-result:
		assert.Equal(t, "wake", got)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Push")
	}
}

func TestOutboxNextStopsOnCancel(t *testing.T) {
	o := newOutbox(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		_, ok := o.Next(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next ignored cancellation")
	}
}
