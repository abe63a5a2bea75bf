// internal/game/ledger.go
package game

import (
	"log"

	"github.com/google/uuid"

	"github.com/hoofbeat/paddock/internal/models"
)

// The ledger methods are the only code that moves money or cards. Every one
// of them runs under the session mutex and applies its full effect before
// returning, so no observer ever sees a partial charge.

// chargeOne deducts amount from a single player and adds it to the pot.
// Assumes lock is held.
func (s *Session) chargeOne(p *models.Player, amount float64) {
	if amount <= 0 {
		return
	}
	p.Balance -= amount
	s.Pot += amount
}

// chargeHolders charges every player holding cards of the scratched value
// penalty-per-card, forfeits those cards (removed from play, not
// transferred), and returns the total collected into the pot.
// Assumes lock is held.
func (s *Session) chargeHolders(value int, penalty float64) float64 {
	var collected float64
	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		n := p.RemoveCards(value)
		if n == 0 {
			continue
		}
		charge := penalty * float64(n)
		p.Balance -= charge
		collected += charge
	}
	s.Pot += collected
	return collected
}

// payoutPot divides the pot across every surviving card of the winning value.
// When no winning cards exist the pot carries over untouched; that is a
// reported condition, not an error. Assumes lock is held.
func (s *Session) payoutPot(winningValue int) (map[uuid.UUID]float64, bool) {
	if s.Pot < 0 {
		// Programming defect: penalties only ever add to the pot.
		log.Panicf("session %s: payout requested with negative pot %.2f", s.ID, s.Pot)
	}

	counts := map[uuid.UUID]int{}
	total := 0
	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		if n := p.CountCards(winningValue); n > 0 {
			counts[p.ID] = n
			total += n
		}
	}
	if total == 0 {
		return nil, true // carry-over
	}

	perCard := s.Pot / float64(total)
	payouts := make(map[uuid.UUID]float64, len(counts))
	for _, p := range s.Players {
		n, ok := counts[p.ID]
		if !ok {
			continue
		}
		amt := perCard * float64(n)
		p.Balance += amt
		payouts[p.ID] = amt
	}
	s.Pot = 0
	return payouts, false
}

// applyBailoutAndElimination settles insolvency after a balance mutation.
// Each player gets at most one bailout per day; a second insolvency is
// terminal: balance and cards zeroed, open listings discarded, and the seat
// is skipped for the rest of the day. Assumes lock is held.
func (s *Session) applyBailoutAndElimination() {
	for _, p := range s.Players {
		if p.Eliminated || p.Balance > 0 {
			continue
		}

		if !p.BailoutUsed {
			amount := s.Mode.BailoutAmount()
			p.Balance += amount
			p.BailoutUsed = true
			s.fireEvent(SessionEvent{
				Type:    EventBailout,
				Player:  &EventPlayer{ID: p.ID, Name: p.Name},
				Payload: map[string]interface{}{"amount": amount, "balance": p.Balance},
			})
			s.logAction(p.ID, string(EventBailout), map[string]interface{}{"amount": amount})
			if p.Balance > 0 {
				continue
			}
		}

		p.Eliminated = true
		p.Balance = 0
		p.Cards = nil
		s.discardListingsOf(p.ID)
		s.fireEvent(SessionEvent{
			Type:   EventEliminated,
			Player: &EventPlayer{ID: p.ID, Name: p.Name},
		})
		s.logAction(p.ID, string(EventEliminated), nil)
	}
}

// discardListingsOf drops every open listing of an eliminated seller. The
// cards are gone, not returned: eliminated players lose everything.
// Assumes lock is held.
func (s *Session) discardListingsOf(sellerID uuid.UUID) {
	if s.Market == nil {
		return
	}
	kept := s.Market.Listings[:0]
	for _, l := range s.Market.Listings {
		if l.SellerID == sellerID {
			continue
		}
		kept = append(kept, l)
	}
	s.Market.Listings = kept
}
