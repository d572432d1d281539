package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	matches map[string]*store.Match
	rounds  []game.RoundRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{matches: map[string]*store.Match{}}
}

func (f *fakeStore) StartMatch(_ context.Context, id, source string, seed int64, players [game.NumPlayers]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[id] = &store.Match{ID: id, Source: source, Seed: seed, Players: players}
	return nil
}

func (f *fakeStore) RecordRound(_ context.Context, matchID string, rec game.RoundRecord, _ []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return store.ErrNotFound
	}
	m.Rounds++
	m.Scores = rec.MatchScores
	f.rounds = append(f.rounds, rec)
	return nil
}

func (f *fakeStore) FinishMatch(_ context.Context, id string, winner int, scores [2]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return store.ErrNotFound
	}
	m.WinnerTeam = &winner
	m.Scores = scores
	return nil
}

func (f *fakeStore) GetMatch(_ context.Context, id string) (*store.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) Standings(context.Context) ([]store.Standing, error) {
	return []store.Standing{{Agent: "client", Seats: 4, Wins: 2, Rate: 0.5}}, nil
}

func startServer(t *testing.T, config Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(config, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req Request) Response {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func step(id int) Request {
	return Request{Type: MessageTypeStep, Action: &id}
}

// playRound resets and plays the first legal id until the round is over.
func playRound(t *testing.T, conn *websocket.Conn) Response {
	t.Helper()
	resp := roundTrip(t, conn, Request{Type: MessageTypeReset})
	require.Equal(t, MessageTypeState, resp.Type, resp.Error)
	for steps := 0; !resp.Done; steps++ {
		require.Less(t, steps, 200)
		require.NotEmpty(t, resp.LegalIDs)
		resp = roundTrip(t, conn, step(resp.LegalIDs[0]))
		require.Equal(t, MessageTypeState, resp.Type, resp.Error)
	}
	return resp
}

func TestHealth(t *testing.T) {
	t.Parallel()
	_, ts := startServer(t, Config{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRules(t *testing.T) {
	t.Parallel()
	_, ts := startServer(t, Config{})

	resp, err := http.Get(ts.URL + "/v1/rules")
	require.NoError(t, err)
	defer resp.Body.Close()

	var r Rules
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	assert.Equal(t, 51, r.NumActions)
	assert.Equal(t, 46, r.PassID)
	assert.Equal(t, 47, r.TrumpIDBase)
	assert.Equal(t, 16, r.BidIDOffset)
	assert.Equal(t, []string{"S", "H", "D", "C"}, r.Suits)
	assert.Equal(t, 3, r.Points["J"])
	assert.Equal(t, 0, r.Points["K"])
}

func TestSessionPlaysRound(t *testing.T) {
	t.Parallel()
	_, ts := startServer(t, Config{})
	conn := dial(t, ts, "?seed=7")

	var hello Response
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, MessageTypeHello, hello.Type)
	assert.Equal(t, int64(7), hello.Seed)
	assert.NotEmpty(t, hello.Session)

	resp := roundTrip(t, conn, Request{Type: MessageTypeReset})
	require.Equal(t, MessageTypeState, resp.Type)
	assert.Equal(t, 1, resp.Player)
	assert.Contains(t, resp.LegalIDs, game.PassID)
	require.NotNil(t, resp.State)
	assert.Len(t, resp.State.Hand, 4)
	assert.Nil(t, resp.State.TrumpSuit)

	final := playRound(t, conn)
	require.NotNil(t, final.Payoffs)
	require.NotNil(t, final.Summary)
	assert.True(t, final.Summary.Complete)
	for _, p := range final.Payoffs {
		assert.Contains(t, []float64{-1, 1}, p)
	}

	logResp := roundTrip(t, conn, Request{Type: MessageTypeLog})
	assert.Equal(t, MessageTypeLog, logResp.Type)
	assert.True(t, logResp.Done)
	assert.NotEmpty(t, logResp.Log)
}

func TestSessionRejectsBadRequests(t *testing.T) {
	t.Parallel()
	_, ts := startServer(t, Config{})
	conn := dial(t, ts, "?seed=3")
	var hello Response
	require.NoError(t, conn.ReadJSON(&hello))

	resp := roundTrip(t, conn, step(game.PassID))
	assert.Equal(t, MessageTypeError, resp.Type, "step before reset")

	state := roundTrip(t, conn, Request{Type: MessageTypeReset})
	require.Equal(t, MessageTypeState, state.Type)

	resp = roundTrip(t, conn, step(0))
	assert.Equal(t, MessageTypeError, resp.Type)
	assert.Contains(t, resp.Error, "illegal action")

	resp = roundTrip(t, conn, step(99))
	assert.Equal(t, MessageTypeError, resp.Type)

	resp = roundTrip(t, conn, Request{Type: MessageTypeStep})
	assert.Equal(t, MessageTypeError, resp.Type)

	resp = roundTrip(t, conn, Request{Type: "deal"})
	assert.Equal(t, MessageTypeError, resp.Type)

	// Rejected steps left the engine untouched.
	resp = roundTrip(t, conn, step(game.PassID))
	require.Equal(t, MessageTypeState, resp.Type)
	assert.Equal(t, state.Player+1, resp.Player)
}

func TestInvalidSeed(t *testing.T) {
	t.Parallel()
	_, ts := startServer(t, Config{})

	resp, err := http.Get(ts.URL + "/ws?seed=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMaxSessions(t *testing.T) {
	t.Parallel()
	s, ts := startServer(t, Config{MaxSessions: 1})
	conn := dial(t, ts, "")
	var hello Response
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, 1, s.Sessions())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	conn.Close()
	assert.Eventually(t, func() bool { return s.Sessions() == 0 }, time.Second, 10*time.Millisecond)
}

func TestIdleTimeout(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	_, ts := startServer(t, Config{IdleTimeout: time.Minute, Clock: clock})
	conn := dial(t, ts, "?seed=1")

	var hello Response
	require.NoError(t, conn.ReadJSON(&hello))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock.Advance(time.Minute).MustWait(ctx)

	var resp Response
	assert.Error(t, conn.ReadJSON(&resp))
}

func TestStoreRecording(t *testing.T) {
	t.Parallel()
	fs := newFakeStore()
	_, ts := startServer(t, Config{Store: fs})
	conn := dial(t, ts, "?seed=5")
	var hello Response
	require.NoError(t, conn.ReadJSON(&hello))

	playRound(t, conn)
	playRound(t, conn)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.matches, 1)
	require.Len(t, fs.rounds, 2)
	for _, m := range fs.matches {
		assert.Equal(t, store.SourceServer, m.Source)
		assert.Equal(t, int64(5), m.Seed)
		assert.Equal(t, 2, m.Rounds)
	}
	assert.Equal(t, 1, fs.rounds[0].Round)
	assert.Equal(t, 2, fs.rounds[1].Round)
}

func TestStoreEndpoints(t *testing.T) {
	t.Parallel()

	_, bare := startServer(t, Config{})
	resp, err := http.Get(bare.URL + "/v1/standings")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	fs := newFakeStore()
	require.NoError(t, fs.StartMatch(context.Background(), "m-1", store.SourceServer, 9, sessionPlayers))
	_, ts := startServer(t, Config{Store: fs})

	resp, err = http.Get(ts.URL + "/v1/standings")
	require.NoError(t, err)
	var standings []store.Standing
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&standings))
	resp.Body.Close()
	require.Len(t, standings, 1)
	assert.Equal(t, "client", standings[0].Agent)

	resp, err = http.Get(ts.URL + "/v1/matches/m-1")
	require.NoError(t, err)
	var m store.Match
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	resp.Body.Close()
	assert.Equal(t, int64(9), m.Seed)

	resp, err = http.Get(ts.URL + "/v1/matches/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
