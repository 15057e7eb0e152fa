package scoring

import (
	"testing"

	"quizpin-service/internal/domain"
)

func TestMatchesNormalizes(t *testing.T) {
	if !Matches("  Berlin ", "berlin") {
		t.Fatalf("expected case/whitespace-insensitive match")
	}
	if Matches("", "berlin") {
		t.Fatalf("empty submission must not match")
	}
	if Matches("munich", "berlin") {
		t.Fatalf("different answers must not match")
	}
}

func TestPointsFormula(t *testing.T) {
	tests := []struct {
		name         string
		difficulty   domain.Difficulty
		timer        int
		base         int
		responseTime float64
		want         int
	}{
		{"easy fast answer", domain.DifficultyEasy, 30, 100, 5, 141},
		{"instant answer gets full bonus", domain.DifficultyEasy, 30, 100, 0, 150},
		{"timer exhausted gets no bonus", domain.DifficultyEasy, 30, 100, 30, 100},
		{"overtime clamps to zero bonus", domain.DifficultyEasy, 30, 100, 45, 100},
		{"medium multiplier", domain.DifficultyMedium, 30, 100, 30, 120},
		{"hard multiplier", domain.DifficultyHard, 30, 100, 30, 150},
		{"heavy multiplier", domain.DifficultyHeavy, 30, 100, 30, 200},
		{"unknown difficulty defaults to 1.0", domain.Difficulty("nightmare"), 30, 100, 30, 100},
		{"zero timer skips bonus", domain.DifficultyEasy, 0, 100, 5, 100},
	}

	for _, tt := range tests {
		q := domain.Question{
			Difficulty:   tt.difficulty,
			TimerSeconds: tt.timer,
			BasePoints:   tt.base,
		}
		if got := Points(q, tt.responseTime); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScoreSkipsTimeouts(t *testing.T) {
	q := domain.Question{Answer: "4", Difficulty: domain.DifficultyEasy, TimerSeconds: 30, BasePoints: 100}

	correct, awarded := Score(q, &domain.Answer{RawText: "4", ResponseTimeSeconds: 30, Timeout: true})
	if correct || awarded != 0 {
		t.Fatalf("timeout must never score, got correct=%v awarded=%d", correct, awarded)
	}

	correct, awarded = Score(q, nil)
	if correct || awarded != 0 {
		t.Fatalf("nil answer must never score")
	}

	correct, awarded = Score(q, &domain.Answer{RawText: " 4 ", ResponseTimeSeconds: 5})
	if !correct || awarded != 141 {
		t.Fatalf("expected correct answer worth 141, got correct=%v awarded=%d", correct, awarded)
	}
}
