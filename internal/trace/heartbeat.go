package trace

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Heartbeat periodically emits liveness events while a long-running command
// (watch mode) is idle, so a stalled process can be told from a quiet one.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// StartHeartbeat starts the heartbeat goroutine. It returns nil when the
// tracer is disabled or interval is not positive; Stop accepts nil.
func StartHeartbeat(ctx context.Context, tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		cancel:   cancel,
	}
	h.wg.Add(1)
	go h.run(ctx)
	return h
}

func (h *Heartbeat) run(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var beats uint64
	for {
		select {
		case <-ticker.C:
			beats++
			h.tracer.Emit(&Event{
				Time:   time.Now(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: "#" + strconv.FormatUint(beats, 10),
			})
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the heartbeat goroutine and waits for it.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	h.wg.Wait()
}
