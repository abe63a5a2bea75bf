// internal/models/player.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one seat at the table. Seat 0 is the human; every other seat is
// driven by the session's AI policy.
type Player struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Balance float64   `json:"balance"`
	Cards   []Card    `json:"cards"`

	Eliminated  bool `json:"eliminated"`
	BailoutUsed bool `json:"bailoutUsed"`
	IsHuman     bool `json:"isHuman"`

	// Per-race market caps. Open listings count against remaining sell
	// capacity before a sale completes.
	CardsBought  int `json:"-"`
	CardsSold    int `json:"-"`
	OpenListings int `json:"-"`

	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`

	User *User `json:"-"`
}

// CountCards returns how many cards of the given horse value the player holds.
func (p *Player) CountCards(value int) int {
	n := 0
	for _, c := range p.Cards {
		if c.Value == value {
			n++
		}
	}
	return n
}

// RemoveCards strips every card of the given value from the hand and returns
// how many were removed.
func (p *Player) RemoveCards(value int) int {
	kept := p.Cards[:0]
	removed := 0
	for _, c := range p.Cards {
		if c.Value == value {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	p.Cards = kept
	return removed
}

// RemoveCard removes a single card matching value and suit. Returns false if
// the player does not hold such a card.
func (p *Player) RemoveCard(card Card) bool {
	for i, c := range p.Cards {
		if c == card {
			p.Cards = append(p.Cards[:i], p.Cards[i+1:]...)
			return true
		}
	}
	return false
}
