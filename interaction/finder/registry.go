package finder

import (
	"fmt"
	"sort"

	"github.com/example/faultloc-lite/interaction/domain"
)

// NewRandom creates the Random strategy: each probe covers about half of
// the candidates, with a verification budget derived from their number.
func NewRandom() *Finder {
	return newFinder("random", true, func() prober { return randomProber{} })
}

// NewNaiveRandom creates a strategy that tests random valid configurations.
func NewNaiveRandom() *Finder {
	return newFinder("naive-random", true, func() prober { return naiveProber{} })
}

// NewSingle creates a strategy that toggles one literal of a failing
// configuration per probe.
func NewSingle() *Finder {
	return newFinder("single", false, func() prober { return newSingleProber() })
}

// NewForward creates a strategy that grows the interaction literal by literal.
func NewForward() *Finder {
	return newFinder("forward", false, func() prober { return newForwardProber() })
}

// NewBackward creates a strategy that shrinks a failing configuration
// literal by literal.
func NewBackward() *Finder {
	return newFinder("backward", false, func() prober { return newBackwardProber() })
}

// NewForwardBackward creates a strategy alternating forward and backward probes.
func NewForwardBackward() *Finder {
	return newFinder("forward-backward", false, func() prober { return newForwardBackwardProber() })
}

var registry = map[string]func() InteractionFinder{
	"random":           func() InteractionFinder { return NewRandom() },
	"naive-random":     func() InteractionFinder { return NewNaiveRandom() },
	"single":           func() InteractionFinder { return NewSingle() },
	"forward":          func() InteractionFinder { return NewForward() },
	"backward":         func() InteractionFinder { return NewBackward() },
	"forward-backward": func() InteractionFinder { return NewForwardBackward() },
	"repeat":           func() InteractionFinder { return NewRepeat(NewRandom()) },
	"iterative-random": func() InteractionFinder {
		return NewIterative("iterative-random", NewRandom())
	},
	"iterative-naive-random": func() InteractionFinder {
		return NewIterative("iterative-naive-random", NewNaiveRandom())
	},
	"iterative-single": func() InteractionFinder {
		return NewIterative("iterative-single", NewSingle())
	},
	"incremental": func() InteractionFinder {
		return NewIterative("incremental", NewRandom())
	},
}

// New creates the strategy registered under name, configured with cfg.
func New(name string, cfg domain.FinderConfig) (InteractionFinder, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, name)
	}
	f := ctor()
	f.SetConfig(cfg)
	return f, nil
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
