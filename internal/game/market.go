// internal/game/market.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoofbeat/paddock/internal/models"
)

// Listing is a card withdrawn from a seller's hand and offered at the fixed
// price. Ownership transfers only on a matched buy; otherwise the card goes
// back to the seller when the market closes.
type Listing struct {
	ID       uuid.UUID   `json:"id"`
	Card     models.Card `json:"card"`
	SellerID uuid.UUID   `json:"sellerId"`
}

// Market is the timed card exchange between the fourth scratch and the race
// phase.
type Market struct {
	Open     bool
	Listings []*Listing
	ClosesAt time.Time
}

// SecondsRemaining reports the whole seconds left in the window.
func (m *Market) SecondsRemaining() int {
	if m == nil || !m.Open {
		return 0
	}
	left := time.Until(m.ClosesAt)
	if left < 0 {
		return 0
	}
	return int(left.Seconds())
}

// beginTradeWindow moves the session into the trade phase. The market itself
// opens after a short sequencing delay; no rolls are accepted in between.
// Assumes lock is held.
func (s *Session) beginTradeWindow() {
	s.Phase = PhaseTrade
	s.marketOpenTimer = s.afterFunc(MarketOpenDelay, func() {
		if s.Phase != PhaseTrade {
			return
		}
		s.openMarket()
	})
}

// openMarket seeds the AI listings, starts the countdown and arms the AI
// purchase cadence. Assumes lock is held.
func (s *Session) openMarket() {
	s.Market = &Market{
		Open:     true,
		ClosesAt: time.Now().Add(MarketWindow),
	}

	for _, p := range s.activePlayers() {
		if p.IsHuman || len(p.Cards) <= 1 {
			continue
		}
		n := s.policy.ListingCount(len(p.Cards))
		if limit := len(p.Cards) - 1; n > limit {
			n = limit // always retain at least one card
		}
		if slots := SellCap - p.CardsSold - p.OpenListings; n > slots {
			n = slots
		}
		for i := 0; i < n; i++ {
			card := s.policy.PickCard(p.Cards)
			s.listCardLocked(p, card)
		}
	}

	s.fireEvent(SessionEvent{
		Type: EventMarketOpened,
		Payload: map[string]interface{}{
			"price":    CardPrice,
			"seconds":  int(MarketWindow.Seconds()),
			"listings": len(s.Market.Listings),
		},
	})
	s.logAction(uuid.Nil, string(EventMarketOpened), map[string]interface{}{"listings": len(s.Market.Listings)})

	s.marketCloseTimer = s.afterFunc(MarketWindow, func() {
		s.closeMarket()
	})
	s.marketBuyTimer = s.afterFunc(marketAIFirstBuy, func() {
		s.aiPurchaseTick()
	})
}

// aiPurchaseTick makes at most one AI purchase attempt, then re-arms itself
// with a jittered gap until the window closes. Assumes lock is held.
func (s *Session) aiPurchaseTick() {
	if s.Phase != PhaseTrade || s.Market == nil || !s.Market.Open {
		return
	}
	if !s.policy.SkipPurchaseTick() {
		s.attemptAIPurchase()
	}
	s.marketBuyTimer = s.afterFunc(s.policy.PurchaseGap(), func() {
		s.aiPurchaseTick()
	})
}

// attemptAIPurchase picks an eligible AI buyer and a uniformly random
// eligible listing for it; a no-op when either set is empty.
// Assumes lock is held.
func (s *Session) attemptAIPurchase() {
	var buyers []*models.Player
	for _, p := range s.activePlayers() {
		if !p.IsHuman && p.CardsBought < BuyCap && p.Balance >= CardPrice {
			buyers = append(buyers, p)
		}
	}
	if len(buyers) == 0 {
		return
	}
	buyer := buyers[s.policy.PickIndex(len(buyers))]

	var options []*Listing
	for _, l := range s.Market.Listings {
		if l.SellerID == buyer.ID {
			continue
		}
		if seller := s.playerByID(l.SellerID); seller == nil || seller.CardsSold >= SellCap {
			continue
		}
		options = append(options, l)
	}
	if len(options) == 0 {
		return
	}
	s.buyListingLocked(buyer, options[s.policy.PickIndex(len(options))])
}

// ListCard withdraws a card from the seller's hand into a listing. Fails
// silently when the market is closed, the seller is ineligible, the sell cap
// is reached or the card is not held. Assumes lock is held.
func (s *Session) ListCard(sellerID uuid.UUID, card models.Card) bool {
	if s.Phase != PhaseTrade || s.Market == nil || !s.Market.Open {
		return false
	}
	seller := s.playerByID(sellerID)
	if seller == nil || seller.Eliminated {
		return false
	}
	if seller.CardsSold+seller.OpenListings >= SellCap {
		return false
	}
	if !seller.RemoveCard(card) {
		return false
	}
	s.finalizeListing(seller, card)
	return true
}

// finalizeListing finalizes a listing for a card already removed from the
// hand. Assumes lock is held.
func (s *Session) finalizeListing(seller *models.Player, card models.Card) {
	l := s.newListing(seller, card)
	s.fireEvent(SessionEvent{
		Type:   EventMarketListing,
		Player: &EventPlayer{ID: seller.ID, Name: seller.Name},
		Payload: map[string]interface{}{
			"id": l.ID.String(), "value": card.Value, "suit": string(card.Suit), "price": CardPrice,
		},
	})
	s.logAction(seller.ID, string(EventMarketListing), map[string]interface{}{"value": card.Value})
}

// listCardLocked is the internal path used when seeding AI listings; the
// caller has already validated eligibility. Assumes lock is held.
func (s *Session) listCardLocked(seller *models.Player, card models.Card) {
	if !seller.RemoveCard(card) {
		return
	}
	s.finalizeListing(seller, card)
}

func (s *Session) newListing(seller *models.Player, card models.Card) *Listing {
	id, _ := uuid.NewRandom()
	l := &Listing{ID: id, Card: card, SellerID: seller.ID}
	s.Market.Listings = append(s.Market.Listings, l)
	seller.OpenListings++
	return l
}

// CancelListing returns an unsold listing to its seller and frees the sell
// slot. Only the seller may cancel. Assumes lock is held.
func (s *Session) CancelListing(playerID, listingID uuid.UUID) bool {
	if s.Market == nil || !s.Market.Open {
		return false
	}
	for i, l := range s.Market.Listings {
		if l.ID != listingID {
			continue
		}
		if l.SellerID != playerID {
			return false
		}
		seller := s.playerByID(playerID)
		if seller == nil {
			return false
		}
		s.Market.Listings = append(s.Market.Listings[:i], s.Market.Listings[i+1:]...)
		seller.Cards = append(seller.Cards, l.Card)
		seller.OpenListings--
		s.fireEvent(SessionEvent{
			Type:    EventMarketCancel,
			Player:  &EventPlayer{ID: seller.ID, Name: seller.Name},
			Payload: map[string]interface{}{"id": l.ID.String()},
		})
		s.logAction(playerID, string(EventMarketCancel), map[string]interface{}{"id": l.ID.String()})
		return true
	}
	return false
}

// BuyListing is the human-facing buy. Fails silently when the buyer is the
// seller, lacks funds or buy capacity, or the seller is already sold out.
// Assumes lock is held.
func (s *Session) BuyListing(buyerID, listingID uuid.UUID) bool {
	if s.Phase != PhaseTrade || s.Market == nil || !s.Market.Open {
		return false
	}
	buyer := s.playerByID(buyerID)
	if buyer == nil || buyer.Eliminated {
		return false
	}
	for _, l := range s.Market.Listings {
		if l.ID != listingID {
			continue
		}
		if l.SellerID == buyerID || buyer.CardsBought >= BuyCap || buyer.Balance < CardPrice {
			return false
		}
		if seller := s.playerByID(l.SellerID); seller == nil || seller.CardsSold >= SellCap {
			return false
		}
		return s.buyListingLocked(buyer, l)
	}
	return false
}

// buyListingLocked applies a matched trade atomically: price moves buyer to
// seller, the card moves to the buyer, caps update, and insolvency is
// re-settled (a sale can rescue a seller). Assumes lock is held.
func (s *Session) buyListingLocked(buyer *models.Player, l *Listing) bool {
	seller := s.playerByID(l.SellerID)
	if seller == nil {
		return false
	}
	for i, cur := range s.Market.Listings {
		if cur.ID != l.ID {
			continue
		}
		s.Market.Listings = append(s.Market.Listings[:i], s.Market.Listings[i+1:]...)
		buyer.Balance -= CardPrice
		seller.Balance += CardPrice
		buyer.Cards = append(buyer.Cards, l.Card)
		buyer.CardsBought++
		seller.CardsSold++
		seller.OpenListings--
		s.applyBailoutAndElimination()
		s.fireEvent(SessionEvent{
			Type:   EventMarketSale,
			Player: &EventPlayer{ID: buyer.ID, Name: buyer.Name},
			Payload: map[string]interface{}{
				"id": l.ID.String(), "seller": l.SellerID.String(),
				"value": l.Card.Value, "suit": string(l.Card.Suit), "price": CardPrice,
			},
		})
		s.logAction(buyer.ID, string(EventMarketSale), map[string]interface{}{
			"seller": l.SellerID.String(), "value": l.Card.Value,
		})
		return true
	}
	return false
}

// CloseMarketEarly is the human's "start race" action; it also covers the
// case where the market has not opened yet (still in the sequencing delay).
// Assumes lock is held.
func (s *Session) CloseMarketEarly() {
	if s.Phase != PhaseTrade {
		return
	}
	s.closeMarket()
}

// closeMarket returns unsold listings to their sellers, clears the market
// timers and moves the session into the race phase. Assumes lock is held.
func (s *Session) closeMarket() {
	if s.Phase != PhaseTrade {
		return
	}
	for _, t := range []**time.Timer{&s.marketOpenTimer, &s.marketCloseTimer, &s.marketBuyTimer} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
	if s.Market != nil {
		for _, l := range s.Market.Listings {
			if seller := s.playerByID(l.SellerID); seller != nil && !seller.Eliminated {
				seller.Cards = append(seller.Cards, l.Card)
				seller.OpenListings--
			}
		}
		s.Market.Listings = nil
		s.Market.Open = false
	}

	s.Phase = PhaseRace
	s.fireEvent(SessionEvent{Type: EventMarketClosed})
	s.logAction(uuid.Nil, string(EventMarketClosed), nil)
	s.broadcastSnapshots()
	s.announceTurn()
}
