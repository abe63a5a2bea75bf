// internal/models/player_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountCards(t *testing.T) {
	p := &Player{Cards: []Card{
		{Value: 7, Suit: SuitSpades},
		{Value: 7, Suit: SuitHearts},
		{Value: 4, Suit: SuitClubs},
	}}
	assert.Equal(t, 2, p.CountCards(7))
	assert.Equal(t, 1, p.CountCards(4))
	assert.Zero(t, p.CountCards(12))
}

func TestRemoveCardsStripsEveryCopy(t *testing.T) {
	p := &Player{Cards: []Card{
		{Value: 7, Suit: SuitSpades},
		{Value: 4, Suit: SuitClubs},
		{Value: 7, Suit: SuitHearts},
	}}
	assert.Equal(t, 2, p.RemoveCards(7))
	assert.Equal(t, []Card{{Value: 4, Suit: SuitClubs}}, p.Cards)
	assert.Zero(t, p.RemoveCards(7))
}

func TestRemoveCardMatchesExactCard(t *testing.T) {
	p := &Player{Cards: []Card{
		{Value: 7, Suit: SuitSpades},
		{Value: 7, Suit: SuitHearts},
	}}
	assert.True(t, p.RemoveCard(Card{Value: 7, Suit: SuitHearts}))
	assert.Equal(t, []Card{{Value: 7, Suit: SuitSpades}}, p.Cards)
	assert.False(t, p.RemoveCard(Card{Value: 7, Suit: SuitHearts}))
}
