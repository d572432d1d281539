package game

import (
	"slices"

	"github.com/lox/twentynine/cards"
)

// Seats and teams
const (
	NumPlayers   = 4
	NumTeams     = 2
	CardsPerDeal = 4
	HandSize     = 2 * CardsPerDeal
	NoSeat       = -1
	NoTeam       = -1
)

// TeamOf returns the partnership of a seat: seats 0 and 2 are team 0,
// seats 1 and 3 are team 1.
func TeamOf(seat int) int {
	return seat % NumTeams
}

// NextSeat returns the seat after seat in play order
func NextSeat(seat int) int {
	return (seat + 1) % NumPlayers
}

// Player holds one seat's hand and the tricks it has won this round
type Player struct {
	Seat   int
	hand   []cards.Card
	tricks [][]cards.Card
}

func newPlayer(seat int) *Player {
	return &Player{Seat: seat}
}

func (p *Player) reset() {
	p.hand = p.hand[:0]
	p.tricks = nil
}

func (p *Player) receive(cs []cards.Card) {
	p.hand = append(p.hand, cs...)
}

func (p *Player) holds(c cards.Card) bool {
	return slices.Contains(p.hand, c)
}

// remove takes a card out of the hand; callers validate legality first.
func (p *Player) remove(c cards.Card) bool {
	i := slices.Index(p.hand, c)
	if i < 0 {
		return false
	}
	p.hand = slices.Delete(p.hand, i, i+1)
	return true
}

func (p *Player) take(trick []cards.Card) {
	p.tricks = append(p.tricks, slices.Clone(trick))
}

// Hand returns a sorted copy of the cards held
func (p *Player) Hand() []cards.Card {
	out := slices.Clone(p.hand)
	cards.Sort(out)
	return out
}

// HandSize returns the number of cards held
func (p *Player) HandSize() int {
	return len(p.hand)
}

// Tricks returns copies of the tricks won this round
func (p *Player) Tricks() [][]cards.Card {
	out := make([][]cards.Card, len(p.tricks))
	for i, t := range p.tricks {
		out[i] = slices.Clone(t)
	}
	return out
}

// Team returns the player's partnership
func (p *Player) Team() int {
	return TeamOf(p.Seat)
}

func (p *Player) cardsTaken() int {
	n := 0
	for _, t := range p.tricks {
		n += len(t)
	}
	return n
}

func (p *Player) points() int {
	total := 0
	for _, t := range p.tricks {
		total += cards.TotalPoints(t)
	}
	return total
}
