// internal/game/ledger_test.go
package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoofbeat/paddock/internal/models"
)

func TestChargeHoldersForfeitsAndCollects(t *testing.T) {
	s, players, _ := setupTestSession(t, 3)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[0].Cards = []models.Card{
		{Value: 6, Suit: models.SuitSpades},
		{Value: 6, Suit: models.SuitHearts},
		{Value: 9, Suit: models.SuitClubs},
	}
	players[1].Cards = []models.Card{{Value: 6, Suit: models.SuitDiamonds}}
	players[2].Cards = []models.Card{{Value: 9, Suit: models.SuitSpades}}

	collected := s.chargeHolders(6, 10)

	assert.Equal(t, 30.0, collected)
	assert.Equal(t, 30.0, s.Pot)
	assert.Equal(t, 180.0, players[0].Balance)
	assert.Equal(t, 190.0, players[1].Balance)
	assert.Equal(t, 200.0, players[2].Balance)

	// The 6s are gone from play, not transferred.
	assert.Zero(t, players[0].CountCards(6))
	assert.Zero(t, players[1].CountCards(6))
	assert.Equal(t, 1, players[0].CountCards(9))
}

func TestChargeHoldersSkipsEliminated(t *testing.T) {
	s, players, _ := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[1].Eliminated = true
	players[1].Balance = 0
	players[1].Cards = []models.Card{{Value: 6, Suit: models.SuitSpades}}

	collected := s.chargeHolders(6, 10)
	assert.Zero(t, collected)
	assert.Zero(t, players[1].Balance)
}

func TestPayoutPotDividesPerCard(t *testing.T) {
	s, players, _ := setupTestSession(t, 3)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	s.Pot = 120
	players[0].Cards = []models.Card{
		{Value: 7, Suit: models.SuitSpades},
		{Value: 7, Suit: models.SuitHearts},
	}
	players[1].Cards = []models.Card{{Value: 7, Suit: models.SuitClubs}}
	players[2].Cards = []models.Card{{Value: 4, Suit: models.SuitSpades}}

	payouts, carryover := s.payoutPot(7)

	require.False(t, carryover)
	assert.Zero(t, s.Pot)
	assert.Equal(t, 80.0, payouts[players[0].ID])
	assert.Equal(t, 40.0, payouts[players[1].ID])
	assert.Equal(t, 280.0, players[0].Balance)
	assert.Equal(t, 240.0, players[1].Balance)
	assert.Equal(t, 200.0, players[2].Balance)
	assert.NotContains(t, payouts, players[2].ID)
}

func TestPayoutPotCarriesOverWithNoHolders(t *testing.T) {
	s, players, _ := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	s.Pot = 75
	players[0].Cards = []models.Card{{Value: 4, Suit: models.SuitSpades}}
	players[1].Cards = nil

	payouts, carryover := s.payoutPot(7)

	assert.True(t, carryover)
	assert.Nil(t, payouts)
	assert.Equal(t, 75.0, s.Pot, "pot must survive untouched")
	assert.Equal(t, 200.0, players[0].Balance)
}

func TestPayoutPotIgnoresEliminatedHolders(t *testing.T) {
	s, players, _ := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	s.Pot = 60
	players[0].Cards = []models.Card{{Value: 7, Suit: models.SuitSpades}}
	players[1].Eliminated = true
	players[1].Cards = []models.Card{{Value: 7, Suit: models.SuitHearts}}

	payouts, carryover := s.payoutPot(7)

	require.False(t, carryover)
	assert.Equal(t, 60.0, payouts[players[0].ID])
	assert.NotContains(t, payouts, players[1].ID)
}

func TestBailoutRescuesInsolvency(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	// Worked example: 15 on hand, a 30 charge leaves -15; the bailout of
	// 100 restores the player to 85.
	players[0].Balance = 15
	s.chargeOne(players[0], 30)
	require.Equal(t, -15.0, players[0].Balance)

	s.applyBailoutAndElimination()

	assert.Equal(t, 85.0, players[0].Balance)
	assert.True(t, players[0].BailoutUsed)
	assert.False(t, players[0].Eliminated)
	assert.Len(t, mb.eventsOfType(EventBailout), 1)
	assert.Empty(t, mb.eventsOfType(EventEliminated))
}

func TestBailoutTriggersAtExactlyZero(t *testing.T) {
	s, players, _ := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[0].Balance = 0
	s.applyBailoutAndElimination()

	assert.Equal(t, ModeHalfDay.BailoutAmount(), players[0].Balance)
	assert.True(t, players[0].BailoutUsed)
}

func TestSecondInsolvencyEliminates(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[0].BailoutUsed = true
	players[0].Balance = -5
	players[0].Cards = []models.Card{{Value: 7, Suit: models.SuitSpades}}

	s.applyBailoutAndElimination()

	assert.True(t, players[0].Eliminated)
	assert.Zero(t, players[0].Balance)
	assert.Empty(t, players[0].Cards)
	assert.Len(t, mb.eventsOfType(EventEliminated), 1)
}

func TestEliminationDiscardsOpenListings(t *testing.T) {
	s, players, _ := setupTestSession(t, 3)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)
	s.Phase = PhaseTrade
	s.Market = &Market{Open: true, ClosesAt: time.Now().Add(time.Minute)}

	players[1].Cards = []models.Card{{Value: 4, Suit: models.SuitSpades}}
	require.True(t, s.ListCard(players[1].ID, models.Card{Value: 4, Suit: models.SuitSpades}))
	require.Len(t, s.Market.Listings, 1)

	players[1].BailoutUsed = true
	players[1].Balance = -1
	s.applyBailoutAndElimination()

	assert.True(t, players[1].Eliminated)
	assert.Empty(t, s.Market.Listings, "eliminated seller's listing must be discarded")
}

func TestBailoutInsufficientEliminatesImmediately(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	// A debt deeper than the bailout eliminates in the same settlement.
	players[0].Balance = -150

	s.applyBailoutAndElimination()

	assert.True(t, players[0].BailoutUsed)
	assert.True(t, players[0].Eliminated)
	assert.Zero(t, players[0].Balance)
	assert.Len(t, mb.eventsOfType(EventBailout), 1)
	assert.Len(t, mb.eventsOfType(EventEliminated), 1)
}
