// internal/game/standings_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStandingsCompetitionRanking(t *testing.T) {
	s, players, _ := setupTestSession(t, 4)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[0].Balance = 300
	players[1].Balance = 250
	players[2].Balance = 250
	players[3].Balance = 100

	got := s.computeStandings()
	require.Len(t, got, 4)

	// Ties share a rank and the next distinct balance takes its
	// positional rank: 1, 2, 2, 4.
	assert.Equal(t, []int{1, 2, 2, 4}, []int{got[0].Rank, got[1].Rank, got[2].Rank, got[3].Rank})
	assert.Equal(t, players[0].ID, got[0].PlayerID)
	assert.Equal(t, players[3].ID, got[3].PlayerID)
}

func TestComputeStandingsEliminatedLast(t *testing.T) {
	s, players, _ := setupTestSession(t, 3)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[0].Balance = 50
	players[1].Eliminated = true
	players[1].Balance = 0
	players[2].Balance = 400

	got := s.computeStandings()

	assert.Equal(t, players[2].ID, got[0].PlayerID)
	assert.Equal(t, players[0].ID, got[1].PlayerID)
	assert.Equal(t, players[1].ID, got[2].PlayerID)
	assert.True(t, got[2].Eliminated)
	assert.Equal(t, 3, got[2].Rank)
}

func TestComputeStandingsEliminatedTieShareRank(t *testing.T) {
	s, players, _ := setupTestSession(t, 3)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	startBare(s)

	players[0].Balance = 100
	players[1].Eliminated = true
	players[1].Balance = 0
	players[2].Eliminated = true
	players[2].Balance = 0

	got := s.computeStandings()
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, 2, got[2].Rank)
}

func TestFinishDayRunsOnce(t *testing.T) {
	s, players, mb := setupTestSession(t, 3)

	calls := make(chan []Standing, 2)
	s.OnDayEnd = func(sessionID uuid.UUID, humanID uuid.UUID, standings []Standing) {
		assert.Equal(t, s.ID, sessionID)
		assert.Equal(t, players[0].ID, humanID)
		calls <- standings
	}

	s.Mu.Lock()
	startBare(s)
	s.finishDay()
	s.finishDay() // second call must be a no-op
	s.Mu.Unlock()

	select {
	case standings := <-calls:
		require.Len(t, standings, 3)
	case <-time.After(time.Second):
		t.Fatal("OnDayEnd never invoked")
	}
	select {
	case <-calls:
		t.Fatal("OnDayEnd invoked twice")
	case <-time.After(100 * time.Millisecond):
	}

	assert.True(t, s.DayOver)
	assert.Equal(t, PhaseDayComplete, s.Phase)
	assert.Len(t, mb.eventsOfType(EventDayComplete), 1)
}

func TestDayCompleteEventCarriesStandings(t *testing.T) {
	s, players, mb := setupTestSession(t, 2)

	s.Mu.Lock()
	startBare(s)
	players[0].Balance = 310
	players[1].Balance = 90
	s.finishDay()
	s.Mu.Unlock()

	events := mb.eventsOfType(EventDayComplete)
	require.Len(t, events, 1)
	rows, ok := events[0].Payload["standings"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0]["rank"])
	assert.Equal(t, players[0].Name, rows[0]["name"])
	assert.Equal(t, 310.0, rows[0]["balance"])
}
