// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/hoofbeat/paddock/internal/models"
)

// DeckSize is 11 values x 4 suits. The full deck is dealt out every race; no
// cards carry over between races.
const DeckSize = 44

// NewDeck returns the fixed 44-card deck in canonical order (value-major,
// suit-minor).
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for v := models.MinHorseValue; v <= models.MaxHorseValue; v++ {
		for _, s := range models.Suits {
			deck = append(deck, models.Card{Value: v, Suit: s})
		}
	}
	return deck
}

// Shuffle performs an in-place Fisher-Yates permutation using the supplied
// source so tests can seed it.
func Shuffle(deck []models.Card, r *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// Deal partitions the deck round-robin across n hands: hand i receives the
// cards at deck positions i, i+n, i+2n, ... When 44 % n != 0 the low-index
// hands end up one card longer.
func Deal(deck []models.Card, n int) [][]models.Card {
	if n <= 0 {
		return nil
	}
	hands := make([][]models.Card, n)
	for i := range hands {
		hands[i] = make([]models.Card, 0, len(deck)/n+1)
	}
	for pos, c := range deck {
		hands[pos%n] = append(hands[pos%n], c)
	}
	return hands
}
