package hooks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/soyeahso/meshbuilder/internal/logging"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_OnAndEmit(t *testing.T) {
	m := testManager()

	var got Payload
	m.On(EventMeshConfirmed, "test", func(_ context.Context, p Payload) error {
		got = p
		return nil
	})

	m.Emit(context.Background(), EventMeshConfirmed, map[string]any{"platforms": 6})
	assert.Equal(t, EventMeshConfirmed, got.Event)
	assert.Equal(t, "6", got.String("platforms"))
	assert.Equal(t, "", got.String("missing"))
	assert.False(t, got.At.IsZero())
}

func TestManager_EmitOrderAndErrors(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventAgentResolved, "first", func(context.Context, Payload) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	m.On(EventAgentResolved, "second", func(context.Context, Payload) error {
		order = append(order, "second")
		panic("handler bug")
	})
	m.On(EventAgentResolved, "third", func(context.Context, Payload) error {
		order = append(order, "third")
		return nil
	})

	m.Emit(context.Background(), EventAgentResolved, nil)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestManager_Off(t *testing.T) {
	m := testManager()
	noop := func(context.Context, Payload) error { return nil }

	m.On(EventAgentFailed, "a", noop)
	m.On(EventAgentFailed, "b", noop)
	m.OnAll([]string{EventAgentPending, EventAgentFailed}, "c", noop)
	require.Equal(t, 3, m.Count(EventAgentFailed))

	m.Off(EventAgentFailed, "a")
	assert.Equal(t, 2, m.Count(EventAgentFailed))

	m.OffAll("c")
	assert.Equal(t, 1, m.Count(EventAgentFailed))
	assert.Equal(t, 0, m.Count(EventAgentPending))
	assert.Equal(t, []string{EventAgentFailed}, m.Events())
}

func TestManager_EmitAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	m := testManager()

	var calls atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		m.On(EventDiscoveryComplete, name, func(context.Context, Payload) error {
			calls.Add(1)
			return nil
		})
	}

	m.EmitAsync(context.Background(), EventDiscoveryComplete, nil)
	m.Wait()
	assert.Equal(t, int32(3), calls.Load())
}

func TestManager_EmitWithoutHandlers(t *testing.T) {
	m := testManager()
	m.Emit(context.Background(), EventServerStart, nil)
	m.EmitAsync(context.Background(), EventServerStop, nil)
	m.Wait()
	assert.Empty(t, m.Events())
}
