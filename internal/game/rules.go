// internal/game/rules.go
package game

import "time"

// Mode selects the length of a day: four races or eight.
type Mode string

const (
	ModeHalfDay Mode = "half"
	ModeFullDay Mode = "full"
)

// Races returns how many races make up a day of this mode.
func (m Mode) Races() int {
	if m == ModeFullDay {
		return FullDayRaces
	}
	return HalfDayRaces
}

// BailoutAmount is the one-time cash injection for an insolvent player.
func (m Mode) BailoutAmount() float64 {
	if m == ModeFullDay {
		return BailoutFullDay
	}
	return BailoutHalfDay
}

// StartingBalance is each player's stake at the start of a day.
func (m Mode) StartingBalance() float64 {
	if m == ModeFullDay {
		return StartingBalanceFull
	}
	return StartingBalanceHalf
}

// Fixed rule constants. These are the game, not tunables; there are no house
// rule variants.
const (
	HalfDayRaces = 4
	FullDayRaces = 8

	DefaultSeats = 6

	StartingBalanceHalf = 200.0
	StartingBalanceFull = 400.0
	BailoutHalfDay      = 100.0
	BailoutFullDay      = 200.0

	// Market rules.
	CardPrice   = 30.0
	BuyCap      = 2
	SellCap     = 2
	listTwoProb = 0.35

	// Scratch bookkeeping.
	ScratchCount = 4
)

// scratchPenalties maps a horse's scratch step (1..4) to the charge paid into
// the pot. An undefined step charges nothing; that is a defensive no-op, a
// defined step is always one of these four.
var scratchPenalties = map[int]float64{
	1: 5,
	2: 10,
	3: 15,
	4: 20,
}

// ScratchPenalty returns the pot charge for a scratch step, or 0 for an
// undefined step.
func ScratchPenalty(step int) float64 {
	return scratchPenalties[step]
}

// Timing constants. These sequence the session for a UI; none of them change
// a gameplay outcome, but the single-pending-timer contract they ride on does
// guarantee turn liveness.
const (
	aiRollDelay           = 800 * time.Millisecond
	aiRollDelayAfterHuman = 1500 * time.Millisecond
	rollLockWindow        = 800 * time.Millisecond

	MarketOpenDelay  = 1500 * time.Millisecond
	MarketWindow     = 35 * time.Second
	marketAIFirstBuy = 13500 * time.Millisecond

	raceEndPause         = 1500 * time.Millisecond
	nextRaceAutoAdvance  = 8 * time.Second
	skipPurchaseTickProb = 0.65
)

// winningSlotBonus resolves the two threshold conventions seen in the wild:
// 0 means a horse wins on reaching its last peg hole, 1 would require one
// extra advance into a winner's slot.
const winningSlotBonus = 0

// PegCount is the number of peg holes for a horse value; symmetric around 7
// (7 needs 7 advances, 2 and 12 need 2).
func PegCount(value int) int {
	d := value - 7
	if d < 0 {
		d = -d
	}
	return 7 - d
}

// FinishThreshold is the position at which a horse wins.
func FinishThreshold(value int) int {
	return PegCount(value) + winningSlotBonus
}

// Horse is one lane on the board, keyed by a two-dice sum.
type Horse struct {
	Value       int  `json:"value"`
	Position    int  `json:"position"`
	Scratched   bool `json:"scratched"`
	ScratchStep int  `json:"scratchStep,omitempty"` // 1..4, 0 when not scratched
}

// newHorses builds the eleven lanes for a fresh race.
func newHorses() map[int]*Horse {
	horses := make(map[int]*Horse, 11)
	for v := 2; v <= 12; v++ {
		horses[v] = &Horse{Value: v}
	}
	return horses
}
