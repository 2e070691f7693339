// Package strategies holds the entry/exit rules. A Strategy only
// decides; edge gating and execution belong to the position tracker and
// the executor.
package strategies

import (
	"github.com/rustyeddy/dogebot/executor"
	"github.com/rustyeddy/dogebot/indicators"
	"github.com/rustyeddy/dogebot/market"
)

type Strategy interface {
	Name() string

	// ShouldOpen reports whether the strategy wants a position right now.
	// Level-triggered: it may stay true across many cycles.
	ShouldOpen(snap indicators.Snapshot, pos market.Position) bool

	// ShouldClose reports whether the held position should be exited.
	ShouldClose(snap indicators.Snapshot, pos market.Position) bool

	// Signal produces the entry request when ShouldOpen is true. A
	// Signal with side None means the conditions decayed between the
	// open check and signal generation; callers must skip it.
	Signal(snap indicators.Snapshot, pos market.Position) executor.Signal
}

var registry = make(map[string]Strategy)

func Register(s Strategy) {
	registry[s.Name()] = s
}

func Get(name string) Strategy {
	return registry[name]
}
