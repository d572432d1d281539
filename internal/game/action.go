package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/twentynine/cards"
)

// Bidding limits
const (
	MinBid          = 16
	MaxBid          = 29
	InitialBidValue = MinBid - 1
)

// Flat action id layout
const (
	// NumCardActions is the number of card-play ids, one per card.
	NumCardActions = cards.NumCards
	// BidIDOffset maps a bid value to its id: id = bid + BidIDOffset.
	BidIDOffset = NumCardActions - MinBid
	// PassID is the id of the pass action.
	PassID = NumCardActions + (MaxBid - MinBid + 1)
	// TrumpIDBase is the id of choosing Spades; other suits follow in suit order.
	TrumpIDBase = PassID + 1
	// NumActions is the size of the flat action space.
	NumActions = TrumpIDBase + cards.NumSuits
)

// ErrUnknownAction is returned when an id or text does not encode an action.
var ErrUnknownAction = errors.New("unknown action")

// ActionKind tags the variant held by an Action
type ActionKind uint8

const (
	ActionInvalid ActionKind = iota
	ActionPass
	ActionBid
	ActionTrump
	ActionPlay
)

// String returns the string representation of an action kind
func (k ActionKind) String() string {
	switch k {
	case ActionPass:
		return "pass"
	case ActionBid:
		return "bid"
	case ActionTrump:
		return "trump"
	case ActionPlay:
		return "play"
	default:
		return "invalid"
	}
}

// Action is a tagged variant: Pass, Bid(value), Trump(suit) or Play(card).
// Only the field matching Kind is meaningful. Use the constructors so that
// actions compare equal with ==.
type Action struct {
	Kind ActionKind
	Bid  int
	Suit cards.Suit
	Card cards.Card
}

// Pass returns the pass action
func Pass() Action { return Action{Kind: ActionPass} }

// Bid returns a bid action for the given value
func Bid(value int) Action { return Action{Kind: ActionBid, Bid: value} }

// ChooseTrump returns a trump selection action
func ChooseTrump(suit cards.Suit) Action { return Action{Kind: ActionTrump, Suit: suit} }

// Play returns a card play action
func Play(card cards.Card) Action { return Action{Kind: ActionPlay, Card: card} }

// canonical zeroes the fields that do not belong to the action's kind.
func (a Action) canonical() Action {
	switch a.Kind {
	case ActionPass:
		return Pass()
	case ActionBid:
		return Bid(a.Bid)
	case ActionTrump:
		return ChooseTrump(a.Suit)
	case ActionPlay:
		return Play(a.Card)
	default:
		return Action{}
	}
}

// ID returns the flat action id, or -1 if the action cannot be encoded.
func (a Action) ID() int {
	switch a.Kind {
	case ActionPlay:
		if !a.Card.Valid() {
			return -1
		}
		return a.Card.ID()
	case ActionBid:
		if a.Bid < MinBid || a.Bid > MaxBid {
			return -1
		}
		return a.Bid + BidIDOffset
	case ActionPass:
		return PassID
	case ActionTrump:
		if !a.Suit.Valid() {
			return -1
		}
		return TrumpIDBase + int(a.Suit)
	default:
		return -1
	}
}

// ActionFromID decodes a flat action id.
func ActionFromID(id int) (Action, error) {
	switch {
	case id >= 0 && id < NumCardActions:
		card, err := cards.FromID(id)
		if err != nil {
			return Action{}, err
		}
		return Play(card), nil
	case id >= NumCardActions && id < PassID:
		return Bid(id - BidIDOffset), nil
	case id == PassID:
		return Pass(), nil
	case id >= TrumpIDBase && id < NumActions:
		return ChooseTrump(cards.Suit(id - TrumpIDBase)), nil
	}
	return Action{}, fmt.Errorf("%w: id %d out of range [0,%d)", ErrUnknownAction, id, NumActions)
}

// String returns the compact text of an action: "pass", "17", "S" (trump)
// or a card code such as "H10".
func (a Action) String() string {
	switch a.Kind {
	case ActionPass:
		return "pass"
	case ActionBid:
		return strconv.Itoa(a.Bid)
	case ActionTrump:
		return a.Suit.String()
	case ActionPlay:
		return a.Card.String()
	default:
		return "invalid"
	}
}

// ParseAction parses the compact text form produced by String. It also
// accepts "bid 17", "trump H" and "play SJ" for human input.
func ParseAction(s string) (Action, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return Action{}, fmt.Errorf("%w: empty input", ErrUnknownAction)
	}
	if verb, rest, ok := strings.Cut(text, " "); ok {
		rest = strings.TrimSpace(rest)
		switch verb {
		case "bid":
			n, err := strconv.Atoi(rest)
			if err != nil {
				return Action{}, fmt.Errorf("%w: bad bid %q", ErrUnknownAction, rest)
			}
			return Bid(n), nil
		case "trump":
			suit, err := cards.ParseSuit(rest)
			if err != nil {
				return Action{}, fmt.Errorf("%w: %v", ErrUnknownAction, err)
			}
			return ChooseTrump(suit), nil
		case "play":
			card, err := cards.Parse(rest)
			if err != nil {
				return Action{}, fmt.Errorf("%w: %v", ErrUnknownAction, err)
			}
			return Play(card), nil
		}
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}

	if text == "pass" || text == "p" {
		return Pass(), nil
	}
	if n, err := strconv.Atoi(text); err == nil {
		return Bid(n), nil
	}
	if len(text) == 1 {
		suit, err := cards.ParseSuit(text)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, s)
		}
		return ChooseTrump(suit), nil
	}
	card, err := cards.Parse(text)
	if err != nil {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return Play(card), nil
}

// MarshalText encodes the action in its compact text form.
func (a Action) MarshalText() ([]byte, error) {
	if a.Kind == ActionInvalid {
		return nil, fmt.Errorf("%w: cannot marshal invalid action", ErrUnknownAction)
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action from its compact text form.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
