package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"emr-auth/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannel struct {
	name string
	err  error

	mu    sync.Mutex
	sends []string
}

func (c *stubChannel) Name() string { return c.name }

func (c *stubChannel) Send(_ context.Context, mobileNumber, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, mobileNumber)
	return c.err
}

func (c *stubChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

func testDispatcherLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("error", "development")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return log
}

func TestDispatcherDeliversThroughPrimary(t *testing.T) {
	primary := &stubChannel{name: "whatsapp"}
	fallback := &stubChannel{name: "sms"}

	d := NewDispatcher([]Channel{primary, fallback}, 8, time.Second, testDispatcherLogger(t))
	d.Send("+919812345678", "code 482193")
	d.Close()

	assert.Equal(t, 1, primary.count())
	assert.Equal(t, 0, fallback.count(), "fallback must not fire when primary succeeds")
}

func TestDispatcherFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &stubChannel{name: "whatsapp", err: errors.New("provider unreachable")}
	fallback := &stubChannel{name: "sms"}

	d := NewDispatcher([]Channel{primary, fallback}, 8, time.Second, testDispatcherLogger(t))
	d.Send("+919812345678", "code 482193")
	d.Close()

	assert.Equal(t, 1, primary.count())
	assert.Equal(t, 1, fallback.count())
}

func TestDispatcherAbsorbsTotalFailure(t *testing.T) {
	primary := &stubChannel{name: "whatsapp", err: errors.New("provider unreachable")}
	fallback := &stubChannel{name: "sms", err: errors.New("provider unreachable")}

	d := NewDispatcher([]Channel{primary, fallback}, 8, time.Second, testDispatcherLogger(t))

	// Must not panic or surface anything to the caller.
	d.Send("+919812345678", "code 482193")
	d.Close()

	assert.Equal(t, 1, primary.count())
	assert.Equal(t, 1, fallback.count())
}

func TestDispatcherLogOnlyWithoutChannels(t *testing.T) {
	d := NewDispatcher(nil, 8, time.Second, testDispatcherLogger(t))

	d.Send("+919812345678", "code 482193")
	d.Close()
}

func TestDispatcherSendNeverBlocks(t *testing.T) {
	// A queue of one with no consumer progress: overflow sends must drop
	// instead of blocking the caller.
	slow := &stubChannel{name: "sms"}
	d := NewDispatcher([]Channel{slow}, 1, time.Second, testDispatcherLogger(t))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			d.Send("+919812345678", fmt.Sprintf("message %d", i))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked the caller")
	}
	d.Close()
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	ch := &stubChannel{name: "sms"}
	d := NewDispatcher([]Channel{ch}, 16, time.Second, testDispatcherLogger(t))

	for i := 0; i < 10; i++ {
		d.Send("+919812345678", fmt.Sprintf("message %d", i))
	}
	d.Close()

	// Every enqueued message was delivered before shutdown completed.
	assert.Equal(t, 10, ch.count())
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(nil, 8, time.Second, testDispatcherLogger(t))
	d.Close()
	d.Close()
}
