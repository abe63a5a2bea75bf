package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`

	// Cross-session aggregates, kept per day mode.
	HalfDayWins     int     `json:"half_day_wins"`
	FullDayWins     int     `json:"full_day_wins"`
	BestBalanceHalf float64 `json:"best_balance_half"`
	BestBalanceFull float64 `json:"best_balance_full"`
}
