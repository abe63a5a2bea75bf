// internal/game/rules_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPegCountSymmetricAroundSeven(t *testing.T) {
	assert.Equal(t, 2, PegCount(2))
	assert.Equal(t, 5, PegCount(5))
	assert.Equal(t, 7, PegCount(7))
	assert.Equal(t, 5, PegCount(9))
	assert.Equal(t, 2, PegCount(12))

	for v := 2; v <= 12; v++ {
		assert.Equal(t, PegCount(v), PegCount(14-v), "value %d vs mirror", v)
	}
}

func TestFinishThresholdMatchesPegCount(t *testing.T) {
	for v := 2; v <= 12; v++ {
		assert.Equal(t, PegCount(v), FinishThreshold(v))
	}
}

func TestScratchPenaltySteps(t *testing.T) {
	assert.Equal(t, 5.0, ScratchPenalty(1))
	assert.Equal(t, 10.0, ScratchPenalty(2))
	assert.Equal(t, 15.0, ScratchPenalty(3))
	assert.Equal(t, 20.0, ScratchPenalty(4))

	// Undefined steps charge nothing.
	assert.Equal(t, 0.0, ScratchPenalty(0))
	assert.Equal(t, 0.0, ScratchPenalty(5))
}

func TestModeParameters(t *testing.T) {
	assert.Equal(t, 4, ModeHalfDay.Races())
	assert.Equal(t, 8, ModeFullDay.Races())
	assert.Equal(t, 100.0, ModeHalfDay.BailoutAmount())
	assert.Equal(t, 200.0, ModeFullDay.BailoutAmount())
	assert.Equal(t, 200.0, ModeHalfDay.StartingBalance())
	assert.Equal(t, 400.0, ModeFullDay.StartingBalance())
}

func TestNewHorsesElevenLanes(t *testing.T) {
	horses := newHorses()
	assert.Len(t, horses, 11)
	for v := 2; v <= 12; v++ {
		h := horses[v]
		assert.NotNil(t, h)
		assert.Equal(t, v, h.Value)
		assert.Equal(t, 0, h.Position)
		assert.False(t, h.Scratched)
	}
}
