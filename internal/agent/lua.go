package agent

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/internal/game"
	lua "github.com/yuin/gopher-lua"
)

// DefaultLuaTimeout bounds a single call into a script.
const DefaultLuaTimeout = time.Second

// LuaBot delegates decisions to a Lua script defining a global function
//
//	function act(state) ... end
//
// that returns either an action string ("pass", "17", "H", "SJ") or a flat
// action id. The state table mirrors game.State with cards and actions as
// strings:
//
//	state.seat, state.phase, state.dealer, state.current_player
//	state.hand            -- {"SJ", "H9", ...}
//	state.legal           -- {"16", "17", ..., "pass"}
//	state.legal_ids       -- {32, 33, ..., 46}
//	state.bid_value, state.bid_winner
//	state.bids            -- {{seat=1, action="16"}, ...}
//	state.trick           -- {{seat=1, card="HJ"}, ...}
//	state.trump           -- "S" once revealed, otherwise nil
//	state.match_scores    -- {team0, team1}
//
// Scripts may call random(n) for a uniform integer in [1, n] drawn from the
// bot's seeded source, and log(msg) to write to the debug log.
//
// A LuaBot owns an interpreter and is not safe for concurrent use.
type LuaBot struct {
	name    string
	state   *lua.LState
	act     lua.LValue
	rng     *rand.Rand
	logger  *log.Logger
	timeout time.Duration
}

// LuaOption configures a LuaBot
type LuaOption func(*LuaBot)

// WithLuaTimeout bounds each call into the script.
func WithLuaTimeout(d time.Duration) LuaOption {
	return func(b *LuaBot) { b.timeout = d }
}

// WithLuaLogger sets the logger used by the script's log function.
func WithLuaLogger(logger *log.Logger) LuaOption {
	return func(b *LuaBot) { b.logger = logger }
}

// NewLuaBotFromFile loads a script from disk. The bot is named after the file.
func NewLuaBotFromFile(path string, rng *rand.Rand, opts ...LuaOption) (*LuaBot, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lua script: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewLuaBot(name, string(src), rng, opts...)
}

// NewLuaBot compiles a script and checks that it defines act.
func NewLuaBot(name, src string, rng *rand.Rand, opts ...LuaOption) (*LuaBot, error) {
	if rng == nil {
		panic("lua bot requires an rng")
	}
	b := &LuaBot{
		name:    name,
		rng:     rng,
		timeout: DefaultLuaTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	b.logger = b.logger.WithPrefix("lua").With("script", name)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	L.SetGlobal("random", L.NewFunction(b.luaRandom))
	L.SetGlobal("log", L.NewFunction(b.luaLog))

	b.state = L
	if err := b.withDeadline(func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading lua script %s: %w", name, err)
	}

	b.act = L.GetGlobal("act")
	if b.act.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("lua script %s: act is %s, want function", name, b.act.Type())
	}
	return b, nil
}

func (b *LuaBot) Name() string { return "lua:" + b.name }

// Close releases the interpreter.
func (b *LuaBot) Close() error {
	b.state.Close()
	return nil
}

// MakeDecision calls the script's act function with the state table.
func (b *LuaBot) MakeDecision(state game.State) (Decision, error) {
	if err := checkToAct(state); err != nil {
		return Decision{}, err
	}

	L := b.state
	err := b.withDeadline(func() error {
		return L.CallByParam(lua.P{Fn: b.act, NRet: 1, Protect: true}, b.stateTable(state))
	})
	if err != nil {
		return Decision{}, fmt.Errorf("lua script %s: %w", b.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	var a game.Action
	switch v := ret.(type) {
	case lua.LNumber:
		a, err = game.ActionFromID(int(v))
	case lua.LString:
		a, err = game.ParseAction(string(v))
	default:
		err = fmt.Errorf("act returned %s, want string or number", ret.Type())
	}
	if err != nil {
		return Decision{}, fmt.Errorf("%w: lua script %s: %v", ErrInvalidDecision, b.name, err)
	}
	if err := checkLegal(state, a); err != nil {
		return Decision{}, err
	}
	return Decision{Action: a, Reasoning: "lua " + b.name}, nil
}

func (b *LuaBot) withDeadline(fn func() error) error {
	if b.timeout <= 0 {
		return fn()
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	b.state.SetContext(ctx)
	defer b.state.RemoveContext()
	return fn()
}

func (b *LuaBot) stateTable(s game.State) *lua.LTable {
	L := b.state
	t := L.NewTable()
	t.RawSetString("seat", lua.LNumber(s.Seat))
	t.RawSetString("phase", lua.LString(s.Phase.String()))
	t.RawSetString("dealer", lua.LNumber(s.Dealer))
	t.RawSetString("current_player", lua.LNumber(s.CurrentPlayer))
	t.RawSetString("bid_value", lua.LNumber(s.BidValue))
	t.RawSetString("bid_winner", lua.LNumber(s.BidWinner))
	t.RawSetString("trick_leader", lua.LNumber(s.TrickLeader))
	t.RawSetString("trump_revealed", lua.LBool(s.TrumpRevealed))
	if s.TrumpSuit != nil {
		t.RawSetString("trump", lua.LString(s.TrumpSuit.String()))
	}

	hand := L.NewTable()
	for _, c := range s.Hand {
		hand.Append(lua.LString(c.String()))
	}
	t.RawSetString("hand", hand)

	legal, ids := L.NewTable(), L.NewTable()
	for _, a := range s.LegalActions {
		legal.Append(lua.LString(a.String()))
		ids.Append(lua.LNumber(a.ID()))
	}
	t.RawSetString("legal", legal)
	t.RawSetString("legal_ids", ids)

	bids := L.NewTable()
	for _, e := range s.BidHistory {
		entry := L.NewTable()
		entry.RawSetString("seat", lua.LNumber(e.Seat))
		entry.RawSetString("action", lua.LString(e.Action.String()))
		bids.Append(entry)
	}
	t.RawSetString("bids", bids)

	trick := L.NewTable()
	for _, p := range s.Trick {
		entry := L.NewTable()
		entry.RawSetString("seat", lua.LNumber(p.Seat))
		entry.RawSetString("card", lua.LString(p.Card.String()))
		trick.Append(entry)
	}
	t.RawSetString("trick", trick)

	scores := L.NewTable()
	scores.Append(lua.LNumber(s.MatchScores[0]))
	scores.Append(lua.LNumber(s.MatchScores[1]))
	t.RawSetString("match_scores", scores)
	return t
}

func (b *LuaBot) luaRandom(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 1 {
		L.ArgError(1, "n must be positive")
		return 0
	}
	L.Push(lua.LNumber(b.rng.IntN(n) + 1))
	return 1
}

func (b *LuaBot) luaLog(L *lua.LState) int {
	b.logger.Debug(L.CheckString(1))
	return 0
}
