// internal/models/card.go
package models

// Suit distinguishes the four copies of each horse value. Suits carry no
// gameplay weight; they only make every card a distinct object.
type Suit string

const (
	SuitSpades   Suit = "S"
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
)

// Suits is the canonical suit order used when building a deck.
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Horse values are two-dice sums.
const (
	MinHorseValue = 2
	MaxHorseValue = 12
)

// Card is one betting card tied to a horse value.
type Card struct {
	Value int  `json:"value"`
	Suit  Suit `json:"suit"`
}
