// internal/game/roll.go
package game

import (
	"log"

	"github.com/google/uuid"

	"github.com/hoofbeat/paddock/internal/models"
)

// rollResolvers dispatches a resolved dice sum against the current phase.
// Phases without an entry do not accept rolls at all. Populated in init:
// the resolver bodies reach performRoll, so a var initializer would form an
// initialization cycle.
var rollResolvers map[Phase]func(s *Session, roller *models.Player, sum int)

func init() {
	rollResolvers = map[Phase]func(s *Session, roller *models.Player, sum int){
		PhaseScratch: (*Session).resolveScratchRoll,
		PhaseRace:    (*Session).resolveRaceRoll,
	}
}

// resolveScratchRoll handles one roll during the scratch phase: either a
// fresh scratch (all holders pay and forfeit) or a repeat hit (roller alone
// pays the step penalty). The turn advances after every roll.
// Assumes lock is held.
func (s *Session) resolveScratchRoll(roller *models.Player, sum int) {
	horse := s.Horses[sum]
	if horse == nil {
		log.Printf("session %s: roll sum %d has no horse", s.ID, sum)
		return
	}

	if horse.Scratched {
		s.chargeRepeatScratch(roller, horse)
	} else {
		step := len(s.ScratchHistory) + 1
		horse.Scratched = true
		horse.ScratchStep = step
		s.ScratchHistory = append(s.ScratchHistory, horse.Value)

		penalty := ScratchPenalty(step)
		charged := s.chargeHolders(horse.Value, penalty)
		s.applyBailoutAndElimination()

		s.fireEvent(SessionEvent{
			Type:   EventHorseScratched,
			Player: &EventPlayer{ID: roller.ID, Name: roller.Name},
			Payload: map[string]interface{}{
				"horse": horse.Value, "step": step,
				"penaltyPerCard": penalty, "collected": charged, "pot": s.Pot,
			},
		})
		s.logAction(roller.ID, string(EventHorseScratched), map[string]interface{}{
			"horse": horse.Value, "step": step, "collected": charged,
		})

		if len(s.ScratchHistory) >= ScratchCount {
			s.advanceTurn()
			if s.DayOver {
				return // the charge eliminated everyone; the day is done
			}
			s.beginTradeWindow()
			return
		}
	}

	if s.Phase == PhaseScratch {
		s.advanceTurn()
	}
}

// resolveRaceRoll handles one roll during the race phase: a scratched hit is
// a roller-only penalty, a live hit advances the horse and may win the race.
// Assumes lock is held.
func (s *Session) resolveRaceRoll(roller *models.Player, sum int) {
	horse := s.Horses[sum]
	if horse == nil {
		log.Printf("session %s: roll sum %d has no horse", s.ID, sum)
		return
	}

	if horse.Scratched {
		// Cards of scratched values no longer exist, so only the roller
		// pays here.
		s.chargeRepeatScratch(roller, horse)
		if s.Phase == PhaseRace {
			s.advanceTurn()
		}
		return
	}

	threshold := FinishThreshold(horse.Value)
	if horse.Position < threshold {
		horse.Position++
	}
	s.fireEvent(SessionEvent{
		Type:   EventHorseMoved,
		Player: &EventPlayer{ID: roller.ID, Name: roller.Name},
		Payload: map[string]interface{}{
			"horse": horse.Value, "position": horse.Position, "threshold": threshold,
		},
	})
	s.logAction(roller.ID, string(EventHorseMoved), map[string]interface{}{
		"horse": horse.Value, "position": horse.Position,
	})

	if horse.Position >= threshold {
		s.finishRace(horse.Value)
		return
	}
	s.advanceTurn()
}

// chargeRepeatScratch charges the roller alone for hitting an
// already-scratched horse, in either phase. Assumes lock is held.
func (s *Session) chargeRepeatScratch(roller *models.Player, horse *Horse) {
	penalty := ScratchPenalty(horse.ScratchStep)
	if penalty == 0 {
		return // undefined step, defensive no-op
	}
	s.chargeOne(roller, penalty)
	s.applyBailoutAndElimination()
	s.fireEvent(SessionEvent{
		Type:   EventScratchPenalty,
		Player: &EventPlayer{ID: roller.ID, Name: roller.Name},
		Payload: map[string]interface{}{
			"horse": horse.Value, "step": horse.ScratchStep,
			"penalty": penalty, "pot": s.Pot,
		},
	})
	s.logAction(roller.ID, string(EventScratchPenalty), map[string]interface{}{
		"horse": horse.Value, "penalty": penalty,
	})
}

// finishRace records the winner, pays the pot out immediately and schedules
// the post-race sequence. Assumes lock is held.
func (s *Session) finishRace(winningValue int) {
	s.cancelTimers()
	s.Phase = PhaseFinished

	potBefore := s.Pot
	payouts, carryover := s.payoutPot(winningValue)
	s.applyBailoutAndElimination()

	payoutsByID := map[string]float64{}
	for id, amt := range payouts {
		payoutsByID[id.String()] = amt
	}
	s.fireEvent(SessionEvent{
		Type: EventRaceFinished,
		Payload: map[string]interface{}{
			"race": s.CurrentRace, "winner": winningValue,
			"pot": potBefore, "payouts": payoutsByID, "carryover": carryover,
		},
	})
	s.logAction(uuid.Nil, string(EventRaceFinished), map[string]interface{}{
		"race": s.CurrentRace, "winner": winningValue, "carryover": carryover,
	})

	lastRace := s.CurrentRace >= s.TotalRaces
	s.raceEndTimer = s.afterFunc(raceEndPause, func() {
		if s.Phase != PhaseFinished {
			return
		}
		if lastRace {
			s.finishDay()
			return
		}
		s.fireEvent(SessionEvent{
			Type:    EventNextRaceReady,
			Payload: map[string]interface{}{"nextRace": s.CurrentRace + 1},
		})
		s.advanceTimer = s.afterFunc(nextRaceAutoAdvance, func() {
			s.AdvanceToNextRace()
		})
	})
}
