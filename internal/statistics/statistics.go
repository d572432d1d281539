// Package statistics accumulates round results for one tracked seat across
// a simulation and reports payoff and bidding analytics.
package statistics

import (
	"fmt"
	"math"
	"slices"
)

// RoundResult is the outcome of one round from the tracked seat's side
type RoundResult struct {
	Payoff        float64 // Payoff of the tracked seat (+1, -1 or 0)
	Seed          int64   // Seed of the match the round belongs to
	Seat          int     // Tracked seat (0-3)
	Dealer        int
	BidValue      int
	BidWinner     int  // Seat holding the final bid, -1 when nobody bid
	OwnTeamBid    bool // Did the tracked seat's team win the bidding?
	Successful    bool // Did the bidding team make its bid?
	TeamPoints    int  // Card points taken by the tracked seat's team
	TrumpRevealed bool
	Redeals       int
}

// SeatStats tracks results by the tracked seat's position relative to the dealer
type SeatStats struct {
	Rounds int
	Sum    float64
	Sum2   float64
}

// Statistics tracks simulation results for one seat
type Statistics struct {
	Rounds int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // All payoffs for median/percentile calculation

	// Bidding analytics
	BiddingRounds   int     // Rounds where our team held the bid
	BidsMade        int     // ...and made it
	DefendingRounds int     // Rounds where the opponents held the bid
	BidsDefeated    int     // ...and we set them
	BiddingPayoff   float64 // Payoff from rounds we bid
	DefendingPayoff float64 // Payoff from rounds we defended
	AllPayoff       float64 // Total payoff for sanity check
	BidValueSum     int
	MaxBid          int

	TrumpReveals int
	Redeals      int
	TeamPoints   int

	// Index 0 is the dealer's seat, 1 is first to bid.
	SeatResults [4]SeatStats
}

// Mean returns the average payoff per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.Sum / float64(s.Rounds)
}

// Variance returns the sample variance of the payoffs
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a round result
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.Sum += r.Payoff
	s.Sum2 += r.Payoff * r.Payoff
	s.Values = append(s.Values, r.Payoff)
	s.AllPayoff += r.Payoff
	s.TeamPoints += r.TeamPoints
	s.Redeals += r.Redeals
	if r.TrumpRevealed {
		s.TrumpReveals++
	}

	if r.BidWinner >= 0 {
		s.BidValueSum += r.BidValue
		s.MaxBid = max(s.MaxBid, r.BidValue)
		if r.OwnTeamBid {
			s.BiddingRounds++
			s.BiddingPayoff += r.Payoff
			if r.Successful {
				s.BidsMade++
			}
		} else {
			s.DefendingRounds++
			s.DefendingPayoff += r.Payoff
			if !r.Successful {
				s.BidsDefeated++
			}
		}
	}

	if r.Seat >= 0 && r.Seat < 4 && r.Dealer >= 0 && r.Dealer < 4 {
		pos := (r.Seat - r.Dealer + 4) % 4
		s.SeatResults[pos].Rounds++
		s.SeatResults[pos].Sum += r.Payoff
		s.SeatResults[pos].Sum2 += r.Payoff * r.Payoff
	}
}

// Merge folds another set of statistics into s.
func (s *Statistics) Merge(o *Statistics) {
	s.Rounds += o.Rounds
	s.Sum += o.Sum
	s.Sum2 += o.Sum2
	s.Values = append(s.Values, o.Values...)
	s.BiddingRounds += o.BiddingRounds
	s.BidsMade += o.BidsMade
	s.DefendingRounds += o.DefendingRounds
	s.BidsDefeated += o.BidsDefeated
	s.BiddingPayoff += o.BiddingPayoff
	s.DefendingPayoff += o.DefendingPayoff
	s.AllPayoff += o.AllPayoff
	s.BidValueSum += o.BidValueSum
	s.MaxBid = max(s.MaxBid, o.MaxBid)
	s.TrumpReveals += o.TrumpReveals
	s.Redeals += o.Redeals
	s.TeamPoints += o.TeamPoints
	for i := range s.SeatResults {
		s.SeatResults[i].Rounds += o.SeatResults[i].Rounds
		s.SeatResults[i].Sum += o.SeatResults[i].Sum
		s.SeatResults[i].Sum2 += o.SeatResults[i].Sum2
	}
}

// Median returns the median payoff
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the payoff at the given percentile (0.0 to 1.0),
// interpolating between neighbours.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// BidSuccessRate returns the share of our team's bids that were made
func (s *Statistics) BidSuccessRate() float64 {
	if s.BiddingRounds == 0 {
		return 0
	}
	return float64(s.BidsMade) / float64(s.BiddingRounds)
}

// DefenceRate returns the share of opponent bids we defeated
func (s *Statistics) DefenceRate() float64 {
	if s.DefendingRounds == 0 {
		return 0
	}
	return float64(s.BidsDefeated) / float64(s.DefendingRounds)
}

// AverageBid returns the mean winning bid over rounds with a bid
func (s *Statistics) AverageBid() float64 {
	n := s.BiddingRounds + s.DefendingRounds
	if n == 0 {
		return 0
	}
	return float64(s.BidValueSum) / float64(n)
}

// SeatMean returns the mean payoff at a position relative to the dealer
func (s *Statistics) SeatMean(pos int) float64 {
	if pos < 0 || pos >= len(s.SeatResults) {
		return 0
	}
	ps := s.SeatResults[pos]
	if ps.Rounds == 0 {
		return 0
	}
	return ps.Sum / float64(ps.Rounds)
}

// IsLedgerBalanced checks that bidding and defending payoffs add up
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllPayoff-s.BiddingPayoff-s.DefendingPayoff) <= 1e-6
}

// Validate checks the internal consistency of the statistics
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: all=%.6f, bidding=%.6f, defending=%.6f",
			s.AllPayoff, s.BiddingPayoff, s.DefendingPayoff)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values length (%d) does not match rounds count (%d)", len(s.Values), s.Rounds)
	}
	if s.BidsMade > s.BiddingRounds {
		return fmt.Errorf("bids made (%d) exceeds bidding rounds (%d)", s.BidsMade, s.BiddingRounds)
	}
	if s.BidsDefeated > s.DefendingRounds {
		return fmt.Errorf("bids defeated (%d) exceeds defending rounds (%d)", s.BidsDefeated, s.DefendingRounds)
	}
	total := 0
	for _, ps := range s.SeatResults {
		total += ps.Rounds
	}
	if total != s.Rounds {
		return fmt.Errorf("seat rounds total (%d) does not match rounds (%d)", total, s.Rounds)
	}
	return nil
}
