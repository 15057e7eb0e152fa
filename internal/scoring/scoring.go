// Package scoring implements answer matching and the time- and
// difficulty-weighted point formula shared by multiplayer and solo games.
package scoring

import (
	"strings"

	"quizpin-service/internal/domain"
)

var difficultyMultipliers = map[domain.Difficulty]float64{
	domain.DifficultyEasy:   1.0,
	domain.DifficultyMedium: 1.2,
	domain.DifficultyHard:   1.5,
	domain.DifficultyHeavy:  2.0,
}

// Normalize prepares an answer for comparison: trimmed and case-folded.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches reports whether a submitted answer equals the canonical one
// after normalization. Empty submissions never match.
func Matches(submitted, canonical string) bool {
	s := Normalize(submitted)
	if s == "" {
		return false
	}
	return s == Normalize(canonical)
}

// Points computes the award for a correct answer. Faster answers earn up
// to 50% of the base points as a bonus, scaled linearly over the question
// timer, then the whole sum is weighted by difficulty. Unknown
// difficulties weigh 1.0.
func Points(q domain.Question, responseTimeSeconds float64) int {
	base := float64(q.BasePoints)
	bonus := 0
	if q.TimerSeconds > 0 {
		timer := float64(q.TimerSeconds)
		pct := (timer - responseTimeSeconds) / timer
		if pct < 0 {
			pct = 0
		}
		bonus = int(base * 0.5 * pct)
	}
	multiplier, ok := difficultyMultipliers[q.Difficulty]
	if !ok {
		multiplier = 1.0
	}
	return int((base + float64(bonus)) * multiplier)
}

// Score evaluates one recorded answer against its question. Timeouts and
// empty submissions score zero and are never correct.
func Score(q domain.Question, a *domain.Answer) (correct bool, awarded int) {
	if a == nil || a.Timeout {
		return false, 0
	}
	if !Matches(a.RawText, q.Answer) {
		return false, 0
	}
	return true, Points(q, a.ResponseTimeSeconds)
}
