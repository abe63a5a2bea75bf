// internal/game/policy.go
package game

import (
	"math/rand"
	"time"

	"github.com/hoofbeat/paddock/internal/models"
)

// ActorPolicy isolates every random AI decision so deterministic doubles can
// replace it in tests. Dice rolls are not part of the policy; they go through
// the session's roll hook.
type ActorPolicy interface {
	// ListingCount decides how many cards an AI lists when the market
	// opens, given its hand size. The result is clamped by the caller so
	// the seller always retains at least one card.
	ListingCount(handSize int) int

	// PickCard chooses which card to withdraw from a non-empty hand.
	PickCard(hand []models.Card) models.Card

	// SkipPurchaseTick reports whether this purchase tick is skipped
	// entirely.
	SkipPurchaseTick() bool

	// PickIndex chooses uniformly among n options; n >= 1.
	PickIndex(n int) int

	// PurchaseGap is the delay until the next AI purchase tick.
	PurchaseGap() time.Duration
}

// randomPolicy is the production policy: uniform choices with the fixed
// probabilities from the rules.
type randomPolicy struct {
	r *rand.Rand
}

// NewRandomPolicy builds the default policy around the given source.
func NewRandomPolicy(r *rand.Rand) ActorPolicy {
	return &randomPolicy{r: r}
}

func (p *randomPolicy) ListingCount(handSize int) int {
	if handSize <= 1 {
		return 0
	}
	if p.r.Float64() < listTwoProb {
		return 2
	}
	return 1
}

func (p *randomPolicy) PickCard(hand []models.Card) models.Card {
	return hand[p.r.Intn(len(hand))]
}

func (p *randomPolicy) SkipPurchaseTick() bool {
	return p.r.Float64() < skipPurchaseTickProb
}

func (p *randomPolicy) PickIndex(n int) int {
	return p.r.Intn(n)
}

func (p *randomPolicy) PurchaseGap() time.Duration {
	// 1s to 4.5s, uniformly jittered.
	return time.Second + time.Duration(p.r.Int63n(int64(3500*time.Millisecond)))
}
