package game

import (
	"math/rand/v2"
	"testing"

	"github.com/lox/twentynine/cards"
	"github.com/stretchr/testify/require"
)

// stackedOrder returns a deck order dealing, with dealer 0, these hands:
//
//	seat 1: HJ H9 HA H10 | HK HQ D8 D7
//	seat 2: SJ S9 SA S10 | CK CQ C8 C7
//	seat 3: DJ D9 DA D10 | SK SQ S8 S7
//	seat 0: CJ C9 CA C10 | H8 H7 DK DQ
func stackedOrder() []cards.Card {
	return cards.MustParseAll(
		"HJ H9 HA H10 SJ S9 SA S10 DJ D9 DA D10 CJ C9 CA C10 " +
			"HK HQ D8 D7 CK CQ C8 C7 SK SQ S8 S7 H8 H7 DK DQ")
}

func apply(t *testing.T, e *Engine, actions ...Action) {
	t.Helper()
	for _, a := range actions {
		_, _, err := e.ApplyAction(a)
		require.NoError(t, err, "applying %s for player %d", a, e.CurrentPlayer())
	}
}

// playRandomRound drives the current round to its end with uniformly
// random legal actions, calling check after every step.
func playRandomRound(t *testing.T, e *Engine, rng *rand.Rand, check func()) {
	t.Helper()
	for steps := 0; !e.IsRoundOver(); steps++ {
		require.Less(t, steps, 500, "round did not terminate")
		legal := e.LegalActions()
		require.NotEmpty(t, legal)
		apply(t, e, legal[rng.IntN(len(legal))])
		if check != nil {
			check()
		}
	}
}

func firstLegal(t *testing.T, e *Engine) {
	t.Helper()
	for steps := 0; !e.IsRoundOver(); steps++ {
		require.Less(t, steps, 500, "round did not terminate")
		apply(t, e, e.LegalActions()[0])
	}
}
