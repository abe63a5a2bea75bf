// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/hoofbeat/paddock/internal/models"
)

// PlayerSnapshot is one player's state from the perspective of a requesting
// user. Only the requester's own hand is revealed; everyone else shows a
// card count, the way hands stay private at a real table.
type PlayerSnapshot struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Balance       float64       `json:"balance"`
	CardCount     int           `json:"cardCount"`
	Cards         []models.Card `json:"cards,omitempty"` // self only
	Eliminated    bool          `json:"eliminated"`
	BailoutUsed   bool          `json:"bailoutUsed"`
	IsHuman       bool          `json:"isHuman"`
	IsCurrentTurn bool          `json:"isCurrentTurn"`
	Connected     bool          `json:"connected"`
}

// ListingSnapshot mirrors an open market listing.
type ListingSnapshot struct {
	ID       uuid.UUID   `json:"id"`
	Card     models.Card `json:"card"`
	SellerID uuid.UUID   `json:"sellerId"`
	Price    float64     `json:"price"`
}

// SessionSnapshot is the read-only view handed to rendering and persistence
// collaborators.
type SessionSnapshot struct {
	SessionID       uuid.UUID         `json:"sessionId"`
	Mode            Mode              `json:"mode"`
	Phase           Phase             `json:"phase"`
	Race            int               `json:"race"`
	TotalRaces      int               `json:"totalRaces"`
	Pot             float64           `json:"pot"`
	DiceA           int               `json:"die1"`
	DiceB           int               `json:"die2"`
	CurrentPlayerID uuid.UUID         `json:"currentPlayerId"`
	ScratchHistory  []int             `json:"scratchHistory"`
	Horses          []Horse           `json:"horses"`
	Players         []PlayerSnapshot  `json:"players"`
	Listings        []ListingSnapshot `json:"listings,omitempty"`
	MarketSeconds   int               `json:"marketSecondsRemaining"`
	DayOver         bool              `json:"dayOver"`
}

// Snapshot builds the view for one user.
func (s *Session) Snapshot(forUser uuid.UUID) SessionSnapshot {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.snapshotLocked(forUser)
}

// snapshotLocked assumes lock is held.
func (s *Session) snapshotLocked(forUser uuid.UUID) SessionSnapshot {
	snap := SessionSnapshot{
		SessionID:      s.ID,
		Mode:           s.Mode,
		Phase:          s.Phase,
		Race:           s.CurrentRace,
		TotalRaces:     s.TotalRaces,
		Pot:            s.Pot,
		DiceA:          s.DiceA,
		DiceB:          s.DiceB,
		ScratchHistory: append([]int(nil), s.ScratchHistory...),
		MarketSeconds:  s.Market.SecondsRemaining(),
		DayOver:        s.DayOver,
	}
	if cur := s.currentPlayer(); cur != nil {
		snap.CurrentPlayerID = cur.ID
	}
	for v := models.MinHorseValue; v <= models.MaxHorseValue; v++ {
		if h := s.Horses[v]; h != nil {
			snap.Horses = append(snap.Horses, *h)
		}
	}
	for i, p := range s.Players {
		ps := PlayerSnapshot{
			ID:            p.ID,
			Name:          p.Name,
			Balance:       p.Balance,
			CardCount:     len(p.Cards),
			Eliminated:    p.Eliminated,
			BailoutUsed:   p.BailoutUsed,
			IsHuman:       p.IsHuman,
			IsCurrentTurn: i == s.CurrentPlayerIndex,
			Connected:     p.Connected,
		}
		if p.ID == forUser {
			ps.Cards = append([]models.Card(nil), p.Cards...)
		}
		snap.Players = append(snap.Players, ps)
	}
	if s.Market != nil && s.Market.Open {
		for _, l := range s.Market.Listings {
			snap.Listings = append(snap.Listings, ListingSnapshot{
				ID: l.ID, Card: l.Card, SellerID: l.SellerID, Price: CardPrice,
			})
		}
	}
	return snap
}
