package layout

import (
	"context"
	"sync"

	"graphite/backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FrameFunc is called after every simulated frame on the loop goroutine
type FrameFunc func(sim *Simulator) error

// Loop drives a Simulator from a single goroutine at a fixed frame rate.
// Input is queued with Do and applied between frames, so the simulator
// itself needs no locking.
type Loop struct {
	sim     *Simulator
	limiter *rate.Limiter
	inputs  chan func(*Simulator)
	onFrame FrameFunc
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	frames uint64
}

// NewLoop creates a stopped loop. fps below 1 is treated as 1.
func NewLoop(sim *Simulator, fps int, onFrame FrameFunc) *Loop {
	if fps < 1 {
		fps = 1
	}
	return &Loop{
		sim:     sim,
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
		inputs:  make(chan func(*Simulator), 64),
		onFrame: onFrame,
		logger:  logger.Named("layout_loop"),
		done:    make(chan struct{}),
	}
}

// Start launches the loop. It runs until ctx is cancelled, Stop is called
// or the frame callback fails.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	go l.run(ctx)
}

// Stop ends the loop and waits for it. It returns the error that ended the
// loop, if any.
func (l *Loop) Stop() error {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-l.done
	return l.err
}

// Done is closed once the loop has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do queues fn to run on the loop goroutine before the next frame. It
// reports false if the loop has already exited.
func (l *Loop) Do(fn func(*Simulator)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inputs <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer func() {
		l.logger.Debug("Layout loop stopped", zap.Uint64("frames", l.frames), zap.Error(l.err))
	}()

	for {
		if err := l.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				l.err = err
			}
			return
		}

	drain:
		for {
			select {
			case fn := <-l.inputs:
				fn(l.sim)
			default:
				break drain
			}
		}

		l.sim.Tick()
		l.frames++
		if l.onFrame != nil {
			if err := l.onFrame(l.sim); err != nil {
				l.err = err
				return
			}
		}
	}
}
