package agent

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
)

// Kinds lists the agent kinds Build understands.
var Kinds = []string{"random", "first", "bot", "lua"}

// Spec names an agent kind and its settings, as read from configuration
// or command line flags.
type Spec struct {
	Kind   string
	Script string
}

// Build creates a fresh agent for one seat. Every engine gets its own
// agents, since Lua interpreters cannot be shared between goroutines.
func Build(spec Spec, rng *rand.Rand, logger *log.Logger) (Agent, error) {
	switch spec.Kind {
	case "random", "":
		return NewRandBot(rng, logger), nil
	case "first":
		return FirstBot{}, nil
	case "bot":
		return NewBot(logger), nil
	case "lua":
		if spec.Script == "" {
			return nil, fmt.Errorf("lua agent requires a script")
		}
		return NewLuaBotFromFile(spec.Script, rng, WithLuaLogger(logger))
	}
	return nil, fmt.Errorf("unknown agent kind %q (want one of %v)", spec.Kind, Kinds)
}

// ValidKind reports whether Build understands kind.
func ValidKind(kind string) bool {
	return kind == "" || slices.Contains(Kinds, kind)
}
