// Package dispatch delivers engine events into the host runtime.
//
// Every delivery is bracketed by Runtime.Enter and Runtime.Exit, runs on the
// goroutine that raised the event, and never lets a sink panic escape.
package dispatch

import (
	"sync/atomic"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// Notification is one pending "call this sink method with these arguments".
type Notification struct {
	Name   string
	Invoke func(core.EventSink)
}

// Bridge executes notifications against a sink. It is safe for concurrent use;
// notifications raised by one goroutine are delivered in the order raised.
type Bridge struct {
	rt     Runtime
	logger zerolog.Logger

	delivered atomic.Int64
	faults    atomic.Int64
	dropped   atomic.Int64
}

func NewBridge(rt Runtime) *Bridge {
	if rt == nil {
		rt = NopRuntime{}
	}
	return &Bridge{
		rt:     rt,
		logger: log.With().Str("module", "dispatch").Logger(),
	}
}

// Deliver runs n against sink on the calling goroutine.
func (b *Bridge) Deliver(sink core.EventSink, n Notification) {
	if sink == nil || n.Invoke == nil {
		b.dropped.Add(1)
		b.logger.Debug().Str("event", n.Name).Msg("no sink bound, event dropped")
		return
	}

	fresh, err := b.rt.Enter()
	if err != nil {
		b.dropped.Add(1)
		b.logger.Error().Err(err).Str("event", n.Name).Msg("attach to host runtime")
		return
	}
	defer b.rt.Exit(fresh)

	var pc panics.Catcher
	pc.Try(func() { n.Invoke(sink) })
	if r := pc.Recovered(); r != nil {
		b.faults.Add(1)
		b.logger.Error().
			Err(r.AsError()).
			Str("event", n.Name).
			Bool("fresh_attach", fresh).
			Msg("sink raised during delivery")
		return
	}
	b.delivered.Add(1)
}

// DeliverAll delivers ns in order.
func (b *Bridge) DeliverAll(sink core.EventSink, ns []Notification) {
	for _, n := range ns {
		b.Deliver(sink, n)
	}
}

// Stats is a snapshot of the bridge counters.
type Stats struct {
	Delivered int64
	Faults    int64
	Dropped   int64
}

func (b *Bridge) Stats() Stats {
	return Stats{
		Delivered: b.delivered.Load(),
		Faults:    b.faults.Load(),
		Dropped:   b.dropped.Load(),
	}
}
