package simulator

import (
	"fmt"
	"io"
	"strings"
)

var seatPositions = [4]string{"dealer", "first bidder", "dealer's partner", "last bidder"}

// PrintSummary writes a summary of the simulation results
func PrintSummary(w io.Writer, result *Result, trackSeat int) {
	stats := result.Stats
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS (seat %d, %s) ===\n", trackSeat, result.Players[trackSeat])
	fmt.Fprintf(w, "Players: %s\n", strings.Join(result.Players[:], ", "))
	fmt.Fprintf(w, "Seed: %d\n", result.Seed)
	fmt.Fprintf(w, "Matches played: %d (team 0 won %d, team 1 won %d)\n",
		len(result.Matches), result.TeamWins[0], result.TeamWins[1])
	fmt.Fprintf(w, "Rounds played: %d in %s\n", stats.Rounds, result.Duration.Round(1e6))

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f per round\n", stats.Mean())
	fmt.Fprintf(w, "Std Dev: %.4f\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] per round\n", low, high)

	fmt.Fprintf(w, "\n=== BIDDING ANALYSIS ===\n")
	fmt.Fprintf(w, "Average winning bid: %.2f (max %d)\n", stats.AverageBid(), stats.MaxBid)
	fmt.Fprintf(w, "Our bids: %d rounds, %.1f%% made, %.2f payoff total\n",
		stats.BiddingRounds, stats.BidSuccessRate()*100, stats.BiddingPayoff)
	fmt.Fprintf(w, "Defending: %d rounds, %.1f%% set, %.2f payoff total\n",
		stats.DefendingRounds, stats.DefenceRate()*100, stats.DefendingPayoff)
	fmt.Fprintf(w, "Sanity check: %.2f + %.2f = %.2f (should equal %.2f)\n",
		stats.BiddingPayoff, stats.DefendingPayoff, stats.BiddingPayoff+stats.DefendingPayoff, stats.AllPayoff)
	if stats.Rounds > 0 {
		fmt.Fprintf(w, "Trump revealed in %.1f%% of rounds, %.2f redeals per round\n",
			float64(stats.TrumpReveals)/float64(stats.Rounds)*100, float64(stats.Redeals)/float64(stats.Rounds))
		fmt.Fprintf(w, "Card points per round: %.2f of 28\n", float64(stats.TeamPoints)/float64(stats.Rounds))
	}

	fmt.Fprintf(w, "\n=== SEAT ANALYSIS ===\n")
	for pos, ps := range stats.SeatResults {
		if ps.Rounds > 0 {
			fmt.Fprintf(w, "As %s: %d rounds, %.3f per round\n", seatPositions[pos], ps.Rounds, stats.SeatMean(pos))
		}
	}
}
