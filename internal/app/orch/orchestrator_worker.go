package orch

import (
	"context"
	"time"

	"github.com/dkeye/rtcengine/internal/domain"
)

type worker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (o *Orchestrator) startWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{cancel: cancel, done: make(chan struct{})}

	o.mu.Lock()
	o.worker = w
	o.mu.Unlock()

	go o.runWorker(ctx, w)
	o.logger.Debug().Dur("poll", o.cfg.PollInterval).Msg("worker started")
}

// stopWorker cancels the worker and waits for it to exit. A sink must not
// call LeaveChannel synchronously from OnRtcStats.
func (o *Orchestrator) stopWorker() {
	o.mu.Lock()
	w := o.worker
	o.worker = nil
	o.mu.Unlock()
	if w == nil {
		return
	}
	w.cancel()
	<-w.done
	o.logger.Debug().Msg("worker stopped")
}

// statsWindow turns cumulative byte counters into bitrates.
type statsWindow struct {
	at      time.Time
	txBytes uint64
	rxBytes uint64
}

func (sw *statsWindow) apply(now time.Time, s *domain.RtcStats) {
	if !sw.at.IsZero() {
		if secs := now.Sub(sw.at).Seconds(); secs > 0 {
			s.TxKBitrate = uint64(float64(delta(s.TxBytes, sw.txBytes)) * 8 / 1000 / secs)
			s.RxKBitrate = uint64(float64(delta(s.RxBytes, sw.rxBytes)) * 8 / 1000 / secs)
		}
	}
	sw.at, sw.txBytes, sw.rxBytes = now, s.TxBytes, s.RxBytes
}

func delta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func (o *Orchestrator) runWorker(ctx context.Context, w *worker) {
	defer close(w.done)

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	var (
		window    statsWindow
		lastStats = time.Now()
	)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !o.cfg.EnableStats || o.ConnectionState() != domain.StateConnected {
				continue
			}
			if now.Sub(lastStats) < o.cfg.StatsInterval {
				continue
			}
			lastStats = now
			o.collectStats(ctx, &window)
		}
	}
}

func (o *Orchestrator) collectStats(ctx context.Context, window *statsWindow) {
	sctx, cancel := context.WithTimeout(ctx, o.cfg.StatsInterval)
	defer cancel()

	stats, err := o.neg.GetStats().Wait(sctx)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn().Err(err).Msg("collect stats")
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	o.mu.Lock()
	joinedAt := o.joinedAt
	o.mu.Unlock()

	now := time.Now()
	if !joinedAt.IsZero() {
		stats.Duration = now.Sub(joinedAt)
		stats.DurationS = int64(stats.Duration / time.Second)
	}
	window.apply(now, &stats)
	o.logger.Trace().
		Uint64("tx_bytes", stats.TxBytes).
		Uint64("rx_bytes", stats.RxBytes).
		Int64("rtt_ms", stats.RTTMs).
		Msg("stats")
	o.emit(rtcStats(stats))
}
