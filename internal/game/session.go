// internal/game/session.go
package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/hoofbeat/paddock/internal/cache"
	"github.com/hoofbeat/paddock/internal/models"
)

// Phase is the tagged state a dice roll is resolved against. Roll resolution
// dispatches through rollResolvers keyed by Phase; phases with no entry
// reject rolls outright.
type Phase string

const (
	PhaseNotStarted  Phase = "not_started"
	PhaseScratch     Phase = "scratch"
	PhaseTrade       Phase = "trade"
	PhaseRace        Phase = "race"
	PhaseFinished    Phase = "finished" // per-race
	PhaseDayComplete Phase = "day_complete"
)

// OnDayEndFunc receives the final standings once per day, for persistence
// and lobby notification.
type OnDayEndFunc func(sessionID uuid.UUID, humanID uuid.UUID, standings []Standing)

// aiNames seeds the non-human seats. Seat order is stable for a whole day.
var aiNames = []string{"Mabel", "Otis", "Pearl", "Rufus", "Sadie", "Walt", "Ida"}

// Session holds the entire state for one day of racing: the phase machine,
// the turn scheduler, the economy and the market. All mutation happens under
// Mu; timer callbacks re-acquire it and check the generation they were
// scheduled under before touching anything.
type Session struct {
	ID   uuid.UUID
	Mode Mode

	TotalRaces  int
	CurrentRace int // 1-based
	Phase       Phase

	Players            []*models.Player
	CurrentPlayerIndex int
	Horses             map[int]*Horse
	Pot                float64
	ScratchHistory     []int // horse values in scratch order
	DiceA, DiceB       int

	Market *Market

	Started bool
	DayOver bool

	// gen invalidates every pending timer when bumped; each callback
	// captures the value at schedule time.
	gen uint64

	aiRollTimer      *time.Timer
	rollUnlockTimer  *time.Timer
	marketOpenTimer  *time.Timer
	marketCloseTimer *time.Timer
	marketBuyTimer   *time.Timer
	raceEndTimer     *time.Timer
	advanceTimer     *time.Timer

	// rollInFlight is the short animation lock; new rolls are rejected
	// while it is set.
	rollInFlight       bool
	lastRollerWasHuman bool

	rng      *rand.Rand
	rollDice func() (int, int)
	policy   ActorPolicy

	actionIndex int

	Mu sync.Mutex

	// BroadcastFn sends an event to every connected client. Never called
	// re-entrantly into the session; implementations must not take Mu.
	BroadcastFn func(ev SessionEvent)

	// BroadcastToPlayerFn sends an event to one client.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev SessionEvent)

	// OnDayEnd is invoked exactly once when the last race resolves.
	OnDayEnd OnDayEndFunc
}

// NewSession builds an idle session for the given mode. Players are added
// afterwards; StartDay deals the first race.
func NewSession(mode Mode) *Session {
	id, _ := uuid.NewRandom()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Session{
		ID:         id,
		Mode:       mode,
		TotalRaces: mode.Races(),
		Phase:      PhaseNotStarted,
		Horses:     newHorses(),
		rng:        r,
		policy:     NewRandomPolicy(r),
	}
	s.rollDice = func() (int, int) {
		return s.rng.Intn(6) + 1, s.rng.Intn(6) + 1
	}
	return s
}

// AddPlayer seats a player before the day starts.
func (s *Session) AddPlayer(p *models.Player) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Started {
		log.Printf("session %s: cannot seat player %s after start", s.ID, p.ID)
		return
	}
	p.Balance = s.Mode.StartingBalance()
	s.Players = append(s.Players, p)
}

// fillSeats tops the table up to DefaultSeats with AI players.
// Assumes lock is held.
func (s *Session) fillSeats() {
	for i := 0; len(s.Players) < DefaultSeats; i++ {
		id, _ := uuid.NewRandom()
		s.Players = append(s.Players, &models.Player{
			ID:      id,
			Name:    aiNames[i%len(aiNames)],
			Balance: s.Mode.StartingBalance(),
		})
	}
}

// StartDay seats the AI players and begins the first race.
func (s *Session) StartDay() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Started || s.DayOver {
		return
	}
	s.fillSeats()
	s.Started = true
	s.CurrentRace = 1
	s.logAction(uuid.Nil, "day_start", map[string]interface{}{"mode": string(s.Mode), "races": s.TotalRaces})
	s.beginRace()
}

// Reset tears the session down: every pending timer is invalidated before any
// state is cleared, so a stale firing can never observe the new state.
func (s *Session) Reset() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.cancelTimers()
	s.Phase = PhaseNotStarted
	s.Started = false
	s.DayOver = true
	s.Market = nil
	s.Pot = 0
	s.logAction(uuid.Nil, "session_reset", nil)
}

// cancelTimers bumps the generation and stops every live timer. Cancellation
// is total: nothing scheduled before this call may apply effects after it.
// Assumes lock is held.
func (s *Session) cancelTimers() {
	s.gen++
	for _, t := range []**time.Timer{
		&s.aiRollTimer, &s.rollUnlockTimer,
		&s.marketOpenTimer, &s.marketCloseTimer, &s.marketBuyTimer,
		&s.raceEndTimer, &s.advanceTimer,
	} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
	s.rollInFlight = false
}

// afterFunc schedules fn under the session lock, guarded by the generation
// captured now. Assumes lock is held by the caller.
func (s *Session) afterFunc(d time.Duration, fn func()) *time.Timer {
	gen := s.gen
	return time.AfterFunc(d, func() {
		s.Mu.Lock()
		defer s.Mu.Unlock()
		if gen != s.gen {
			return // stale firing from a superseded race or session
		}
		fn()
	})
}

// beginRace resets the board for the current race number, re-deals the full
// deck to the surviving players and opens the scratch phase. The pot is not
// touched here: a carried-over pot survives into the next race.
// Assumes lock is held.
func (s *Session) beginRace() {
	s.cancelTimers()
	s.Horses = newHorses()
	s.ScratchHistory = nil
	s.Market = nil
	s.DiceA, s.DiceB = 0, 0

	active := s.activePlayers()
	if len(active) == 0 {
		s.finishDay()
		return
	}

	deck := NewDeck()
	Shuffle(deck, s.rng)
	hands := Deal(deck, len(active))
	for i, p := range active {
		p.Cards = hands[i]
		p.CardsBought = 0
		p.CardsSold = 0
		p.OpenListings = 0
	}

	// Starting roller rotates deterministically through the active list.
	starter := active[(s.CurrentRace-1)%len(active)]
	s.CurrentPlayerIndex = s.indexOf(starter.ID)

	s.Phase = PhaseScratch
	s.logAction(uuid.Nil, string(EventRaceStarted), map[string]interface{}{
		"race": s.CurrentRace, "players": len(active),
	})
	s.fireEvent(SessionEvent{
		Type:    EventRaceStarted,
		Payload: map[string]interface{}{"race": s.CurrentRace, "totalRaces": s.TotalRaces},
	})
	s.broadcastSnapshots()
	s.announceTurn()
}

// activePlayers returns the non-eliminated players in seat order.
// Assumes lock is held.
func (s *Session) activePlayers() []*models.Player {
	var out []*models.Player
	for _, p := range s.Players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) indexOf(id uuid.UUID) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) playerByID(id uuid.UUID) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// currentPlayer returns the seat whose roll it is, or nil outside rolling
// phases. Assumes lock is held.
func (s *Session) currentPlayer() *models.Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// advanceTurn moves to the next non-eliminated seat. Eliminated players are
// skipped permanently. Assumes lock is held.
func (s *Session) advanceTurn() {
	if len(s.Players) == 0 {
		return
	}
	next := s.CurrentPlayerIndex
	for i := 0; i < len(s.Players); i++ {
		next = (next + 1) % len(s.Players)
		if !s.Players[next].Eliminated {
			s.CurrentPlayerIndex = next
			s.announceTurn()
			return
		}
	}
	// Nobody left to roll.
	log.Printf("session %s: no active players remain, ending day", s.ID)
	s.finishDay()
}

// announceTurn broadcasts whose roll it is and arms the AI scheduler when the
// seat is not human. Assumes lock is held.
func (s *Session) announceTurn() {
	cur := s.currentPlayer()
	if cur == nil {
		return
	}
	if s.Phase == PhaseScratch || s.Phase == PhaseRace {
		s.fireEvent(SessionEvent{
			Type:   EventPlayerTurn,
			Player: &EventPlayer{ID: cur.ID, Name: cur.Name},
		})
		s.scheduleAIRoll()
	}
}

// scheduleAIRoll arms at most one pending auto-roll for the current seat.
// Any previously pending auto-roll is cancelled first, which is what keeps
// double-rolls impossible. Assumes lock is held.
func (s *Session) scheduleAIRoll() {
	if s.aiRollTimer != nil {
		s.aiRollTimer.Stop()
		s.aiRollTimer = nil
	}
	cur := s.currentPlayer()
	if cur == nil || cur.IsHuman || cur.Eliminated {
		return
	}
	delay := aiRollDelay
	if s.lastRollerWasHuman {
		delay = aiRollDelayAfterHuman
	}
	curID := cur.ID
	s.aiRollTimer = s.afterFunc(delay, func() {
		s.aiRollTick(curID)
	})
}

// aiRollTick runs one armed auto-roll. A tick that lands while the previous
// roll's animation lock is still live is rescheduled, never dropped; the
// lock window and the AI delay are the same length, so the two timers can
// acquire the mutex in either order. Assumes lock is held.
func (s *Session) aiRollTick(curID uuid.UUID) {
	if s.Phase != PhaseScratch && s.Phase != PhaseRace {
		return
	}
	p := s.currentPlayer()
	if p == nil || p.ID != curID {
		return // turn moved on under us
	}
	if s.rollInFlight {
		s.aiRollTimer = s.afterFunc(rollLockWindow, func() {
			s.aiRollTick(curID)
		})
		return
	}
	s.performRoll(p)
}

// performRoll resolves one dice roll for the given player in the current
// phase. Rolls are rejected while a prior roll's animation lock is live.
// Assumes lock is held.
func (s *Session) performRoll(p *models.Player) {
	if s.rollInFlight {
		return
	}
	resolver, ok := rollResolvers[s.Phase]
	if !ok {
		return
	}

	s.rollInFlight = true
	if s.rollUnlockTimer != nil {
		s.rollUnlockTimer.Stop()
	}
	s.rollUnlockTimer = s.afterFunc(rollLockWindow, func() {
		s.rollInFlight = false
	})

	d1, d2 := s.rollDice()
	s.DiceA, s.DiceB = d1, d2
	sum := d1 + d2
	s.lastRollerWasHuman = p.IsHuman

	s.fireEvent(SessionEvent{
		Type:   EventDiceRolled,
		Player: &EventPlayer{ID: p.ID, Name: p.Name},
		Payload: map[string]interface{}{
			"die1": d1, "die2": d2, "sum": sum,
		},
	})
	s.logAction(p.ID, string(EventDiceRolled), map[string]interface{}{"die1": d1, "die2": d2})

	resolver(s, p, sum)
}

// HandleAction routes a player command. Invalid operations (wrong phase,
// wrong turn, bad payload) are silently ignored; the engine never enters an
// unrecoverable state from a rejected action.
// Assumes lock is held by the caller (the WS read loop or a test).
func (s *Session) HandleAction(playerID uuid.UUID, action models.SessionAction) {
	if s.DayOver {
		return
	}
	p := s.playerByID(playerID)
	if p == nil || p.Eliminated {
		return
	}

	switch action.ActionType {
	case "roll_dice":
		if !s.Started {
			return
		}
		cur := s.currentPlayer()
		if cur == nil || cur.ID != playerID {
			return
		}
		s.performRoll(cur)
	case "list_card":
		card, ok := cardFromPayload(action.Payload)
		if !ok {
			return
		}
		s.ListCard(playerID, card)
	case "cancel_listing":
		id, ok := idFromPayload(action.Payload)
		if !ok {
			return
		}
		s.CancelListing(playerID, id)
	case "buy_listing":
		id, ok := idFromPayload(action.Payload)
		if !ok {
			return
		}
		s.BuyListing(playerID, id)
	case "close_market":
		if !p.IsHuman {
			return
		}
		s.CloseMarketEarly()
	case "next_race":
		if !p.IsHuman {
			return
		}
		s.AdvanceToNextRace()
	default:
		log.Printf("session %s: unknown action %q from %s", s.ID, action.ActionType, playerID)
	}
}

// AdvanceToNextRace skips the post-race pause. A no-op unless the current
// race has finished and more races remain. Assumes lock is held.
func (s *Session) AdvanceToNextRace() {
	if s.Phase != PhaseFinished || s.CurrentRace >= s.TotalRaces {
		return
	}
	s.CurrentRace++
	s.beginRace()
}

// HasPlayer reports whether the given player is seated in this session.
func (s *Session) HasPlayer(playerID uuid.UUID) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.playerByID(playerID) != nil
}

// HandleDisconnect marks the player's connection gone. AI seats keep playing;
// the session does not pause.
func (s *Session) HandleDisconnect(playerID uuid.UUID) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if p := s.playerByID(playerID); p != nil {
		p.Connected = false
		p.Conn = nil
		s.logAction(playerID, "player_disconnect", nil)
	}
}

// HandleReconnect reattaches a connection and resyncs that client's state.
func (s *Session) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	p := s.playerByID(playerID)
	if p == nil {
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "not a player in this session")
		}
		return
	}
	p.Connected = true
	p.Conn = conn
	s.logAction(playerID, "player_reconnect", nil)
	s.sendSnapshot(playerID)
}

// sendSnapshot pushes a private full-state resync. Assumes lock is held.
func (s *Session) sendSnapshot(playerID uuid.UUID) {
	if s.BroadcastToPlayerFn == nil {
		return
	}
	snap := s.snapshotLocked(playerID)
	s.BroadcastToPlayerFn(playerID, SessionEvent{Type: EventSessionState, State: &snap})
}

// broadcastSnapshots resyncs every connected player. Assumes lock is held.
func (s *Session) broadcastSnapshots() {
	for _, p := range s.Players {
		if p.Connected {
			s.sendSnapshot(p.ID)
		}
	}
}

// fireEvent broadcasts to all connected clients. Assumes lock is held; the
// broadcast function must not re-enter the session.
func (s *Session) fireEvent(ev SessionEvent) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

// logAction queues the action for the historian. Failures are logged, never
// surfaced to gameplay.
func (s *Session) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if payload == nil {
		payload = map[string]interface{}{}
	}
	record := cache.SessionEventRecord{
		SessionID:  s.ID,
		EventIndex: s.actionIndex,
		ActorID:    actorID,
		EventType:  actionType,
		Payload:    payload,
		Timestamp:  time.Now().UnixMilli(),
	}
	go func(rec cache.SessionEventRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishSessionEvent(ctx, rec); err != nil {
			log.Printf("session %s: historian publish failed for event %d: %v", s.ID, rec.EventIndex, err)
		}
	}(record)
}

// cardFromPayload decodes {"value": n, "suit": "S"} from a command payload.
func cardFromPayload(payload map[string]interface{}) (models.Card, bool) {
	if payload == nil {
		return models.Card{}, false
	}
	v, okV := payload["value"].(float64)
	su, okS := payload["suit"].(string)
	if !okV || !okS {
		return models.Card{}, false
	}
	value := int(v)
	if value < models.MinHorseValue || value > models.MaxHorseValue {
		return models.Card{}, false
	}
	return models.Card{Value: value, Suit: models.Suit(su)}, true
}

// idFromPayload decodes {"id": "<uuid>"} from a command payload.
func idFromPayload(payload map[string]interface{}) (uuid.UUID, bool) {
	if payload == nil {
		return uuid.Nil, false
	}
	raw, _ := payload["id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
