package game

import (
	"strings"
	"time"
)

// maskGlyph replaces every unrevealed character in the hint.
const maskGlyph = "O"

// ClockConfig holds the per-turn countdown constants. Every client
// evaluates the same config against the shared round start timestamp, so
// hint and reward stay consistent without any per-tick server push.
type ClockConfig struct {
	RoundDuration time.Duration
	HintInterval  time.Duration
	MaxReward     int
	RewardDecay   int
}

func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		RoundDuration: 120 * time.Second,
		HintInterval:  30 * time.Second,
		MaxReward:     20,
		RewardDecay:   5,
	}
}

// ScoreState is the clock's view of one turn at a given elapsed time.
type ScoreState struct {
	Hint      string
	Reward    int
	Remaining time.Duration
	Expired   bool
}

// Evaluate derives hint, reward and expiry from elapsed time. It is pure:
// reward never increases with elapsed time, revealed hint positions never
// shrink, and expiry never reverts. The word must be non-empty; word
// selection guarantees that upstream.
func (c ClockConfig) Evaluate(elapsed time.Duration, word string) ScoreState {
	if elapsed < 0 {
		elapsed = 0
	}
	hintCount := int(elapsed / c.HintInterval)
	reward := c.MaxReward - hintCount*c.RewardDecay
	if reward < 0 {
		reward = 0
	}
	remaining := c.RoundDuration - elapsed
	return ScoreState{
		Hint:      maskWord(word, hintCount),
		Reward:    reward,
		Remaining: remaining,
		Expired:   remaining <= 0,
	}
}

// maskWord reveals the first revealed runes of the word and substitutes
// the mask glyph for the rest. Glyphs are joined with single spaces so a
// two-character word reads "사 O" rather than "사O"; the word list is
// Korean, so the split must be rune-wise, not byte-wise.
func maskWord(word string, revealed int) string {
	runes := []rune(word)
	glyphs := make([]string, len(runes))
	for i, r := range runes {
		if i < revealed {
			glyphs[i] = string(r)
		} else {
			glyphs[i] = maskGlyph
		}
	}
	return strings.Join(glyphs, " ")
}
