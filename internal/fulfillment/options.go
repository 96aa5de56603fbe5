package fulfillment

import (
	"runtime"
	"time"

	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/pkg/logger"
)

// Option configures Handlers.
type Option func(*Handlers)

// WithClock sets the source of "now". Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLocation sets the zone used for "today" and for rendering dates.
func WithLocation(loc *time.Location) Option {
	return func(h *Handlers) {
		if loc != nil {
			h.loc = loc
		}
	}
}

// WithContextLifespan sets the lifespan of established contexts.
func WithContextLifespan(turns int) Option {
	return func(h *Handlers) {
		if turns > 0 {
			h.lifespan = turns
		}
	}
}

// WithFanoutLimit bounds concurrent participant lookups within one turn.
func WithFanoutLimit(n int) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.fanout = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handlers) {
		if l != nil {
			h.log = l
		}
	}
}

func defaults() *Handlers {
	return &Handlers{
		now:      time.Now,
		loc:      time.UTC,
		lifespan: model.DefaultContextLifespan,
		fanout:   runtime.NumCPU() * 2,
	}
}
