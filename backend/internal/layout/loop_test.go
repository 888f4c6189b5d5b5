package layout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsFramesAndAppliesInput(t *testing.T) {
	sim := newTestSimulator(t)
	frames := make(chan FrameState, 256)

	loop := NewLoop(sim, 200, func(s *Simulator) error {
		select {
		case frames <- s.State():
		default:
		}
		return nil
	})
	loop.Start(context.Background())

	require.True(t, loop.Do(func(s *Simulator) { s.SetSearchQuery("avery") }))

	deadline := time.After(2 * time.Second)
	for matched := false; !matched; {
		select {
		case f := <-frames:
			for _, n := range f.Nodes {
				if n.ID == "a" && n.Match {
					matched = true
				}
			}
		case <-deadline:
			t.Fatal("input never reached a frame")
		}
	}

	require.NoError(t, loop.Stop())
	assert.False(t, loop.Do(func(*Simulator) {}))
}

func TestLoop_StopsOnFrameError(t *testing.T) {
	sim := newTestSimulator(t)
	boom := errors.New("connection closed")

	loop := NewLoop(sim, 100, func(*Simulator) error { return boom })
	loop.Start(context.Background())

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.ErrorIs(t, loop.Stop(), boom)
}

func TestLoop_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(newTestSimulator(t), 50, nil)
	loop.Start(ctx)
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.NoError(t, loop.Stop())
}
