// internal/game/roll_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoofbeat/paddock/internal/models"
)

func TestRollResolverTableCoversRollingPhases(t *testing.T) {
	require.NotNil(t, rollResolvers[PhaseScratch])
	require.NotNil(t, rollResolvers[PhaseRace])
	assert.Nil(t, rollResolvers[PhaseTrade])
	assert.Nil(t, rollResolvers[PhaseFinished])
	assert.Nil(t, rollResolvers[PhaseDayComplete])
}

func TestScratchRollMarksHorseAndCharges(t *testing.T) {
	s, players, mb := setupTestSession(t, 3)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)

	players[0].Cards = []models.Card{{Value: 9, Suit: models.SuitSpades}}
	players[1].Cards = []models.Card{{Value: 9, Suit: models.SuitHearts}}
	players[2].Cards = []models.Card{{Value: 4, Suit: models.SuitSpades}}

	forceRoll(s, 4, 5)

	h := s.Horses[9]
	assert.True(t, h.Scratched)
	assert.Equal(t, 1, h.ScratchStep)
	assert.Equal(t, []int{9}, s.ScratchHistory)

	// First scratch costs 5 per card.
	assert.Equal(t, 195.0, players[0].Balance)
	assert.Equal(t, 195.0, players[1].Balance)
	assert.Equal(t, 200.0, players[2].Balance)
	assert.Equal(t, 10.0, s.Pot)

	assert.Len(t, mb.eventsOfType(EventHorseScratched), 1)

	// Turn moved to the next seat.
	assert.Equal(t, players[1].ID, s.currentPlayer().ID)
}

func TestScratchStepsEscalate(t *testing.T) {
	s, players, _ := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)

	// One card of each upcoming scratch value on the same player.
	players[0].Cards = []models.Card{
		{Value: 5, Suit: models.SuitSpades},
		{Value: 6, Suit: models.SuitSpades},
		{Value: 8, Suit: models.SuitSpades},
		{Value: 9, Suit: models.SuitSpades},
	}
	players[1].Cards = nil

	forceRoll(s, 2, 3) // step 1, 5
	forceRoll(s, 3, 3) // step 2, 10
	forceRoll(s, 4, 4) // step 3, 15
	forceRoll(s, 4, 5) // step 4, 20

	assert.Equal(t, []int{5, 6, 8, 9}, s.ScratchHistory)
	assert.Equal(t, 50.0, s.Pot)
	assert.Equal(t, 150.0, players[0].Balance)
	assert.Empty(t, players[0].Cards)

	// The fourth scratch opens the trade window.
	assert.Equal(t, PhaseTrade, s.Phase)
}

func TestFourthScratchEliminatingEveryoneEndsDay(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)

	// Three scratches already resolved; the step-4 charge will sink both
	// players, who hold a 9 each with no bailout left.
	for i, v := range []int{5, 6, 8} {
		s.Horses[v].Scratched = true
		s.Horses[v].ScratchStep = i + 1
		s.ScratchHistory = append(s.ScratchHistory, v)
	}
	for _, p := range players {
		p.Balance = 10
		p.BailoutUsed = true
		p.Cards = []models.Card{{Value: 9, Suit: models.SuitSpades}}
	}

	forceRoll(s, 4, 5)

	assert.True(t, players[0].Eliminated)
	assert.True(t, players[1].Eliminated)
	assert.True(t, s.DayOver)
	assert.Equal(t, PhaseDayComplete, s.Phase, "a completed day must not reopen into trade")
	assert.Len(t, mb.eventsOfType(EventDayComplete), 1)
	assert.Empty(t, mb.eventsOfType(EventMarketOpened))
}

func TestRepeatScratchChargesRollerOnly(t *testing.T) {
	s, players, mb := setupTestSession(t, 3)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)

	players[1].Cards = []models.Card{{Value: 9, Suit: models.SuitHearts}}

	forceRoll(s, 4, 5) // fresh scratch of 9, turn moves to seat 1
	require.Equal(t, players[1].ID, s.currentPlayer().ID)
	require.Equal(t, 195.0, players[1].Balance)

	forceRoll(s, 4, 5) // seat 1 hits the scratched 9 again

	// Step 1 penalty, paid by the roller alone.
	assert.Equal(t, 190.0, players[1].Balance)
	assert.Equal(t, 200.0, players[0].Balance)
	assert.Equal(t, 200.0, players[2].Balance)
	assert.Len(t, mb.eventsOfType(EventScratchPenalty), 1)
	assert.Equal(t, []int{9}, s.ScratchHistory, "a repeat hit is not a new scratch")
	assert.Equal(t, players[2].ID, s.currentPlayer().ID)
}

func TestRaceRollAdvancesHorse(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)
	s.Phase = PhaseRace

	forceRoll(s, 3, 4)

	assert.Equal(t, 1, s.Horses[7].Position)
	assert.Equal(t, PhaseRace, s.Phase)
	assert.Len(t, mb.eventsOfType(EventHorseMoved), 1)
	assert.Equal(t, players[1].ID, s.currentPlayer().ID)
}

func TestRaceRollOnScratchedHorsePenalizesRoller(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)
	s.Phase = PhaseRace
	s.Horses[9].Scratched = true
	s.Horses[9].ScratchStep = 3

	forceRoll(s, 4, 5)

	assert.Equal(t, 185.0, players[0].Balance)
	assert.Equal(t, 200.0, players[1].Balance)
	assert.Equal(t, 15.0, s.Pot)
	assert.Zero(t, s.Horses[9].Position, "scratched horses never move")
	assert.Empty(t, mb.eventsOfType(EventHorseMoved))
	assert.Equal(t, players[1].ID, s.currentPlayer().ID)
}

func TestHorseWinsAtThreshold(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)
	s.Phase = PhaseRace
	players[0].Cards = []models.Card{{Value: 12, Suit: models.SuitSpades}}
	s.Pot = 40

	// Horse 12 needs only two advances.
	forceRoll(s, 6, 6)
	require.Equal(t, PhaseRace, s.Phase)
	forceRoll(s, 6, 6)

	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, FinishThreshold(12), s.Horses[12].Position)
	assert.Equal(t, 240.0, players[0].Balance)
	assert.Zero(t, s.Pot)
	assert.Len(t, mb.eventsOfType(EventRaceFinished), 1)
}

func TestRollRejectedOutsideRollingPhases(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)
	s.Phase = PhaseTrade

	forceRoll(s, 3, 4)

	assert.Empty(t, mb.eventsOfType(EventDiceRolled))
	assert.Equal(t, players[0].ID, s.currentPlayer().ID)
}

func TestAdvanceTurnSkipsEliminated(t *testing.T) {
	s, players, _ := setupTestSession(t, 4)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)

	players[1].Eliminated = true
	players[2].Eliminated = true

	s.advanceTurn()
	assert.Equal(t, players[3].ID, s.currentPlayer().ID)

	s.advanceTurn()
	assert.Equal(t, players[0].ID, s.currentPlayer().ID)
}

func TestAdvanceTurnEndsDayWhenNobodyRemains(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	defer func() { s.cancelTimers(); s.Mu.Unlock() }()
	startBare(s)

	for _, p := range players {
		p.Eliminated = true
	}
	s.advanceTurn()

	assert.True(t, s.DayOver)
	assert.Equal(t, PhaseDayComplete, s.Phase)
	assert.Len(t, mb.eventsOfType(EventDayComplete), 1)
}
