package server

import (
	"math"
	"sort"
	"strings"
)

type scoringConfig struct {
	BasePoints            int
	RevealPenaltyEnabled  bool
	RevealPenaltyPercent  int
	MinimumPointsPercent  int
	PositionBonuses       [3]int
	SpeedBonusEnabled     bool
	SpeedBonusMaxPoints   int
	SpeedBonusTimeLimitMS int
}

type lockedAnswer struct {
	AnswerID uint
	PlayerID string
	Text     string
	LockedAt int64
}

type scoredAnswer struct {
	AnswerID  uint
	PlayerID  string
	IsCorrect bool
	Points    int
	Position  int // 1-indexed among correct answers, 0 otherwise
}

func answersMatch(guess, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(correct))
}

// scoreAnswers judges a full round of locked answers at reveal time. It is
// pure: the same locks, config and reveal count always produce the same
// result. Locks are ordered by lock time, insertion order breaking ties.
func scoreAnswers(correct string, locks []lockedAnswer, revealCount int, imageStartedMS int64, cfg scoringConfig) []scoredAnswer {
	ordered := make([]lockedAnswer, len(locks))
	copy(ordered, locks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].LockedAt != ordered[j].LockedAt {
			return ordered[i].LockedAt < ordered[j].LockedAt
		}
		return ordered[i].AnswerID < ordered[j].AnswerID
	})

	results := make([]scoredAnswer, 0, len(ordered))
	correctPosition := 0
	for _, lock := range ordered {
		result := scoredAnswer{AnswerID: lock.AnswerID, PlayerID: lock.PlayerID}
		if !answersMatch(lock.Text, correct) {
			results = append(results, result)
			continue
		}
		correctPosition++
		result.IsCorrect = true
		result.Position = correctPosition

		points := basePoints(revealCount, cfg)
		if correctPosition <= len(cfg.PositionBonuses) {
			points += cfg.PositionBonuses[correctPosition-1]
		}
		points += speedBonus(lock.LockedAt, imageStartedMS, cfg)
		if points < 0 {
			points = 0
		}
		result.Points = points
		results = append(results, result)
	}
	return results
}

func basePoints(revealCount int, cfg scoringConfig) int {
	if !cfg.RevealPenaltyEnabled {
		return cfg.BasePoints
	}
	reduction := 1 - float64(revealCount)*float64(cfg.RevealPenaltyPercent)/100
	floor := float64(cfg.MinimumPointsPercent) / 100
	if reduction < floor {
		reduction = floor
	}
	return int(math.Round(float64(cfg.BasePoints) * reduction))
}

// speedBonus decays linearly from the configured maximum to zero over the
// time limit, measured from when the image went up.
func speedBonus(lockedAtMS, imageStartedMS int64, cfg scoringConfig) int {
	if !cfg.SpeedBonusEnabled || cfg.SpeedBonusTimeLimitMS <= 0 || imageStartedMS <= 0 {
		return 0
	}
	elapsed := lockedAtMS - imageStartedMS
	if elapsed < 0 || elapsed >= int64(cfg.SpeedBonusTimeLimitMS) {
		return 0
	}
	fraction := 1 - float64(elapsed)/float64(cfg.SpeedBonusTimeLimitMS)
	return int(math.Round(float64(cfg.SpeedBonusMaxPoints) * fraction))
}
