// internal/game/events.go
package game

import "github.com/google/uuid"

// SessionEventType is an enum-like type for broadcasting session activity to
// the UI layer.
type SessionEventType string

const (
	EventSessionState   SessionEventType = "session_state"    // full snapshot resync
	EventPlayerTurn     SessionEventType = "session_turn"     // whose roll it is
	EventDiceRolled     SessionEventType = "dice_rolled"      // roller + both dice
	EventHorseScratched SessionEventType = "horse_scratched"  // fresh scratch resolved
	EventScratchPenalty SessionEventType = "scratch_penalty"  // roller-only repeat penalty
	EventHorseMoved     SessionEventType = "horse_moved"      // live horse advanced
	EventMarketOpened   SessionEventType = "market_opened"    // trade window started
	EventMarketListing  SessionEventType = "market_listing"   // card put up for sale
	EventMarketCancel   SessionEventType = "market_cancelled" // listing withdrawn
	EventMarketSale     SessionEventType = "market_sale"      // listing bought
	EventMarketClosed   SessionEventType = "market_closed"    // window over, leftovers returned
	EventRaceFinished   SessionEventType = "race_finished"    // winner + payout summary
	EventNextRaceReady  SessionEventType = "next_race_ready"  // summary pause elapsed
	EventRaceStarted    SessionEventType = "race_started"     // fresh deal
	EventBailout        SessionEventType = "player_bailout"   // one-time rescue granted
	EventEliminated     SessionEventType = "player_eliminated"
	EventDayComplete    SessionEventType = "day_complete" // final standings
)

// EventPlayer identifies a player inside an event payload.
type EventPlayer struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

// SessionEvent is the single envelope broadcast to clients. Payload carries
// event-specific fields; State is only set on session_state.
type SessionEvent struct {
	Type    SessionEventType       `json:"type"`
	Player  *EventPlayer           `json:"player,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *SessionSnapshot       `json:"state,omitempty"`
}
