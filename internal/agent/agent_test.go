package agent

import (
	"testing"

	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRound(t *testing.T, seed int64) *game.Engine {
	t.Helper()
	e := game.New(game.WithSeed(seed))
	_, _, err := e.InitRound()
	require.NoError(t, err)
	return e
}

func playRound(t *testing.T, e *game.Engine, agents [game.NumPlayers]Agent) {
	t.Helper()
	for steps := 0; !e.IsRoundOver(); steps++ {
		require.Less(t, steps, 1000, "round did not terminate")
		seat := e.CurrentPlayer()
		d, err := agents[seat].MakeDecision(e.StateFor(seat))
		require.NoError(t, err, "%s at seat %d", agents[seat].Name(), seat)
		_, _, err = e.ApplyAction(d.Action)
		require.NoError(t, err)
	}
}

func TestRandBot(t *testing.T) {
	t.Parallel()

	bot := NewRandBot(randutil.New(2), nil)
	for seed := int64(0); seed < 10; seed++ {
		e := newRound(t, seed)
		playRound(t, e, [game.NumPlayers]Agent{bot, bot, bot, bot})
		assert.True(t, e.IsRoundOver())
	}

	assert.Panics(t, func() { NewRandBot(nil, nil) })
}

func TestFirstBot(t *testing.T) {
	t.Parallel()

	e := newRound(t, 3)
	d, err := FirstBot{}.MakeDecision(e.StateFor(e.CurrentPlayer()))
	require.NoError(t, err)
	assert.Equal(t, game.Bid(game.MinBid), d.Action)

	var bot FirstBot
	playRound(t, e, [game.NumPlayers]Agent{bot, bot, bot, bot})
	assert.Equal(t, game.MaxBid, e.RoundSummary().BidValue)
}

func TestNotToAct(t *testing.T) {
	t.Parallel()

	e := newRound(t, 4)
	other := game.NextSeat(e.CurrentPlayer())
	state := e.StateFor(other)

	agents := []Agent{NewRandBot(randutil.New(1), nil), FirstBot{}, NewBot(nil)}
	for _, a := range agents {
		_, err := a.MakeDecision(state)
		assert.ErrorIs(t, err, ErrNotToAct, a.Name())
	}
}

func TestBidLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand string
		want int
	}{
		{"S7 H8 DQ CK", 15},
		{"SJ S9 HA D10", 15 + 7 + 1},
		{"SJ S9 SA S10", 15 + 7 + 3},
		{"SJ HJ DJ CJ", 15 + 12},
		{"H7 H8 HQ HK", 15 + 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bidLimit(cards.MustParseAll(tt.hand)), tt.hand)
	}
}

func TestBotBidding(t *testing.T) {
	t.Parallel()

	bot := NewBot(nil)
	state := game.State{
		Seat:          1,
		CurrentPlayer: 1,
		Phase:         game.PhaseBidding,
		Hand:          cards.MustParseAll("SJ S9 SA S10"),
		BidValue:      game.InitialBidValue,
		BidWinner:     game.NoSeat,
		LegalActions:  bidActions(game.InitialBidValue),
	}

	d, err := bot.MakeDecision(state)
	require.NoError(t, err)
	assert.Equal(t, game.Bid(16), d.Action)
	assert.Contains(t, d.Reasoning, "Hand supports bidding to 25")

	t.Run("passes over partner", func(t *testing.T) {
		s := state
		s.BidValue, s.BidWinner = 18, 3
		s.LegalActions = bidActions(18)
		d, err := bot.MakeDecision(s)
		require.NoError(t, err)
		assert.Equal(t, game.Pass(), d.Action)
	})

	t.Run("passes above its limit", func(t *testing.T) {
		s := state
		s.BidValue, s.BidWinner = 25, 0
		s.LegalActions = bidActions(25)
		d, err := bot.MakeDecision(s)
		require.NoError(t, err)
		assert.Equal(t, game.Pass(), d.Action)
	})
}

func bidActions(current int) []game.Action {
	var out []game.Action
	for v := current + 1; v <= game.MaxBid; v++ {
		out = append(out, game.Bid(v))
	}
	return append(out, game.Pass())
}

func TestBotTrump(t *testing.T) {
	t.Parallel()

	bot := NewBot(nil)
	thinking := &ThinkingContext{}
	assert.Equal(t, cards.Hearts, bot.trumpSuit(cards.MustParseAll("SJ H7 H8 HQ D9 CA C10"), thinking))
	// Equal length: more points wins.
	assert.Equal(t, cards.Clubs, bot.trumpSuit(cards.MustParseAll("S7 S8 CJ C7"), thinking))
}

func TestBotPlay(t *testing.T) {
	t.Parallel()

	bot := NewBot(nil)
	spades := cards.Spades
	base := game.State{
		Seat:          2,
		CurrentPlayer: 2,
		Phase:         game.PhasePlay,
		TrumpSuit:     &spades,
		TrumpRevealed: true,
	}
	withLegal := func(s game.State, hand string) game.State {
		s.Hand = cards.MustParseAll(hand)
		for _, c := range s.Hand {
			s.LegalActions = append(s.LegalActions, game.Play(c))
		}
		return s
	}

	t.Run("wins cheaply", func(t *testing.T) {
		s := withLegal(base, "HJ H9 H7")
		s.Trick = []game.PlayedCard{{Seat: 1, Card: cards.MustParse("HA")}}
		d, err := bot.MakeDecision(s)
		require.NoError(t, err)
		assert.Equal(t, game.Play(cards.MustParse("H9")), d.Action)
	})

	t.Run("feeds a winning partner", func(t *testing.T) {
		s := withLegal(base, "H10 H7 HQ")
		s.Trick = []game.PlayedCard{
			{Seat: 0, Card: cards.MustParse("HJ")},
			{Seat: 1, Card: cards.MustParse("H8")},
		}
		d, err := bot.MakeDecision(s)
		require.NoError(t, err)
		assert.Equal(t, game.Play(cards.MustParse("H10")), d.Action)
	})

	t.Run("discards low when beaten", func(t *testing.T) {
		s := withLegal(base, "D9 DK D7")
		s.Trick = []game.PlayedCard{
			{Seat: 0, Card: cards.MustParse("H7")},
			{Seat: 1, Card: cards.MustParse("S7")},
		}
		d, err := bot.MakeDecision(s)
		require.NoError(t, err)
		assert.Equal(t, game.Play(cards.MustParse("D7")), d.Action)
	})

	t.Run("leads a jack", func(t *testing.T) {
		s := withLegal(base, "C7 DJ D8")
		d, err := bot.MakeDecision(s)
		require.NoError(t, err)
		assert.Equal(t, game.Play(cards.MustParse("DJ")), d.Action)
	})
}

func TestBotPlaysFullRounds(t *testing.T) {
	t.Parallel()

	bot := NewBot(nil)
	for seed := int64(0); seed < 10; seed++ {
		e := newRound(t, seed)
		playRound(t, e, [game.NumPlayers]Agent{bot, bot, bot, bot})
		summary := e.RoundSummary()
		assert.True(t, summary.Complete)
		assert.Equal(t, 28, summary.TeamPoints[0]+summary.TeamPoints[1])
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"random", "first", "bot", ""} {
		a, err := Build(Spec{Kind: kind}, randutil.New(1), nil)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, a.Name())
	}

	a, err := Build(Spec{Kind: "lua", Script: "../../bots/random.lua"}, randutil.New(1), nil)
	require.NoError(t, err)
	assert.Equal(t, "lua:random", a.Name())
	assert.NoError(t, Close(a))

	_, err = Build(Spec{Kind: "lua"}, randutil.New(1), nil)
	assert.Error(t, err)
	_, err = Build(Spec{Kind: "oracle"}, randutil.New(1), nil)
	assert.Error(t, err)

	assert.True(t, ValidKind("lua"))
	assert.False(t, ValidKind("oracle"))
}
