package game

import "github.com/lox/twentynine/cards"

// Match end thresholds
const (
	WinningScore = 6
	LosingScore  = -WinningScore
)

// RoundSummary describes the outcome of a round
type RoundSummary struct {
	Round         int         `json:"round"`
	Dealer        int         `json:"dealer"`
	BidValue      int         `json:"bid_value"`
	BidWinner     int         `json:"bid_winner"`
	BiddingTeam   int         `json:"bidding_team"`
	Trump         *cards.Suit `json:"trump"`
	TrumpRevealed bool        `json:"trump_revealed"`
	Successful    bool        `json:"bid_successful"`
	TeamPoints    [2]int      `json:"team_points"`
	Redeals       int         `json:"redeals"`
	Complete      bool        `json:"complete"`
}

// HasBid reports whether any seat bid this round
func (s RoundSummary) HasBid() bool {
	return s.BidWinner != NoSeat
}

// roundScore is the single scoring routine behind summaries, payoffs and
// match score updates.
type roundScore struct {
	hasBid      bool
	biddingTeam int
	teamPoints  [2]int
	successful  bool
}

func scoreRound(players [NumPlayers]*Player, bidWinner, bidValue int) roundScore {
	var s roundScore
	for _, p := range players {
		s.teamPoints[p.Team()] += p.points()
	}
	s.biddingTeam = NoTeam
	if bidWinner == NoSeat {
		return s
	}
	s.hasBid = true
	s.biddingTeam = TeamOf(bidWinner)
	s.successful = s.teamPoints[s.biddingTeam] >= bidValue
	return s
}

// matchDelta is the change to each team's match score for the round.
func (s roundScore) matchDelta() [2]int {
	var d [2]int
	if !s.hasBid {
		return d
	}
	if s.successful {
		d[s.biddingTeam] = 1
	} else {
		d[s.biddingTeam] = -1
	}
	return d
}

// payoffs returns +1/-1 per seat from the bidding team's perspective.
func (s roundScore) payoffs() [NumPlayers]float64 {
	var out [NumPlayers]float64
	if !s.hasBid {
		return out
	}
	for seat := range out {
		won := TeamOf(seat) == s.biddingTeam
		if !s.successful {
			won = !won
		}
		if won {
			out[seat] = 1
		} else {
			out[seat] = -1
		}
	}
	return out
}

// matchWinner reports the winning team given match scores. Reaching the
// winning score wins; falling to the losing score hands the match to the
// other team.
func matchWinner(scores [2]int) (int, bool) {
	switch {
	case scores[0] >= WinningScore:
		return 0, true
	case scores[1] >= WinningScore:
		return 1, true
	case scores[0] <= LosingScore:
		return 1, true
	case scores[1] <= LosingScore:
		return 0, true
	}
	return NoTeam, false
}
