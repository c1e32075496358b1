package db

import (
	"time"

	"gorm.io/gorm"
)

// RoundTransition describes one atomic round advance: award the score,
// bump the turn counter, install the next word (or finish), reset the
// round timestamp.
type RoundTransition struct {
	RoomDBID     uint
	ExpectedTurn int
	WinnerDBID   uint
	ScoreToAdd   int
	NextWord     string
	StartedAt    time.Time
	Finished     bool
}

// FinishRound applies a round transition as a single transaction guarded
// by the expected turn counter. Two callers racing to end the same turn
// serialize on the row update: the loser matches zero rows and the whole
// call reports applied=false with no mutation — a no-op, not an error,
// since both were attempting the same logical outcome.
func FinishRound(conn *gorm.DB, t RoundTransition) (bool, error) {
	applied := false
	err := conn.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"turn_counter": t.ExpectedTurn + 1,
		}
		if t.Finished {
			updates["status"] = "FINISHED"
			updates["current_word"] = ""
			updates["round_started_at"] = nil
		} else {
			updates["current_word"] = t.NextWord
			updates["round_started_at"] = t.StartedAt
		}
		result := tx.Model(&Room{}).
			Where("id = ? AND turn_counter = ? AND status = ?", t.RoomDBID, t.ExpectedTurn, "PLAYING").
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true
		if t.WinnerDBID != 0 && t.ScoreToAdd > 0 {
			if err := tx.Model(&Player{}).
				Where("id = ?", t.WinnerDBID).
				UpdateColumn("score", gorm.Expr("score + ?", t.ScoreToAdd)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return applied, err
}

// LoadWords returns the word library texts, optionally filtered by
// category. An empty result is not an error; callers fall back to the
// built-in list.
func LoadWords(conn *gorm.DB, category string) ([]string, error) {
	query := conn.Model(&WordEntry{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	words := make([]string, 0)
	if err := query.Order("id").Pluck("text", &words).Error; err != nil {
		return nil, err
	}
	return words, nil
}
