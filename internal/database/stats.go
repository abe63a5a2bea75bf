package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RecordDayResult persists the only durable session output: the user's
// per-mode day-win count and best-ever final balance. Everything else about
// a session is ephemeral and rebuilt from startSession.
func RecordDayResult(ctx context.Context, userID uuid.UUID, mode string, won bool, finalBalance float64) error {
	winsCol, bestCol := "half_day_wins", "best_balance_half"
	if mode == "full" {
		winsCol, bestCol = "full_day_wins", "best_balance_full"
	}

	winInc := 0
	if won {
		winInc = 1
	}

	q := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + $1,
		    %s = GREATEST(%s, $2)
		WHERE id = $3
	`, winsCol, winsCol, bestCol, bestCol)

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, winInc, finalBalance, userID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to record day result: %w", err)
	}
	return nil
}
