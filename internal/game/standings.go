// internal/game/standings.go
package game

import (
	"sort"

	"github.com/google/uuid"
)

// Standing is one row of the day-end ranking.
type Standing struct {
	Rank       int       `json:"rank"`
	PlayerID   uuid.UUID `json:"playerId"`
	Name       string    `json:"name"`
	Balance    float64   `json:"balance"`
	Eliminated bool      `json:"eliminated"`
	IsHuman    bool      `json:"isHuman"`
}

// computeStandings ranks players eliminated-last, then by descending balance,
// with standard competition ranking: tied players share a rank and the next
// distinct player takes its positional rank (1,2,2,4 not 1,2,2,3).
// Assumes lock is held.
func (s *Session) computeStandings() []Standing {
	out := make([]Standing, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, Standing{
			PlayerID:   p.ID,
			Name:       p.Name,
			Balance:    p.Balance,
			Eliminated: p.Eliminated,
			IsHuman:    p.IsHuman,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Eliminated != out[j].Eliminated {
			return !out[i].Eliminated
		}
		return out[i].Balance > out[j].Balance
	})
	for i := range out {
		if i > 0 && out[i].Balance == out[i-1].Balance && out[i].Eliminated == out[i-1].Eliminated {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

// finishDay computes and records the final standings exactly once, then
// freezes the session. Assumes lock is held.
func (s *Session) finishDay() {
	if s.DayOver {
		return
	}
	s.cancelTimers()
	s.Phase = PhaseDayComplete
	s.DayOver = true

	standings := s.computeStandings()
	rows := make([]map[string]interface{}, len(standings))
	for i, st := range standings {
		rows[i] = map[string]interface{}{
			"rank": st.Rank, "player": st.PlayerID.String(), "name": st.Name,
			"balance": st.Balance, "eliminated": st.Eliminated,
		}
	}
	s.fireEvent(SessionEvent{
		Type:    EventDayComplete,
		Payload: map[string]interface{}{"standings": rows},
	})
	s.logAction(uuid.Nil, string(EventDayComplete), map[string]interface{}{"standings": rows})

	if s.OnDayEnd != nil {
		var humanID uuid.UUID
		for _, p := range s.Players {
			if p.IsHuman {
				humanID = p.ID
				break
			}
		}
		// Run the callback off the lock; it persists stats and must not
		// re-enter the session.
		go s.OnDayEnd(s.ID, humanID, standings)
	}
}
