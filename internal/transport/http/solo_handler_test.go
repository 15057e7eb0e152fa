package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"quizpin-service/internal/domain"
	"quizpin-service/internal/questionbank"
)

type memoryStats struct {
	results []domain.SoloResult
}

func (m *memoryStats) SaveResult(_ context.Context, result domain.SoloResult) error {
	m.results = append(m.results, result)
	return nil
}

func (m *memoryStats) TopResults(_ context.Context, limit int) ([]domain.SoloResult, error) {
	sorted := append([]domain.SoloResult(nil), m.results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Percentage != sorted[j].Percentage {
			return sorted[i].Percentage > sorted[j].Percentage
		}
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func newSoloServer(t *testing.T, stats StatsStore) *httptest.Server {
	t.Helper()
	bank := questionbank.NewBank(questionbank.NewStaticLoader(map[string]questionbank.Catalog{
		"en": {
			domain.DifficultyMedium: {
				{Text: "Capital of France?", Answer: "Paris", Type: domain.QuestionText,
					Difficulty: domain.DifficultyMedium, TimerSeconds: 30, BasePoints: 100},
				{Text: "3*3?", Answer: "9", Type: domain.QuestionText,
					Difficulty: domain.DifficultyMedium, TimerSeconds: 30, BasePoints: 100},
			},
		},
	}), time.Minute)

	mux := http.NewServeMux()
	NewSoloHandler(bank, stats, "en").Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSoloQuizFlow(t *testing.T) {
	stats := &memoryStats{}
	server := newSoloServer(t, stats)

	resp := postJSON(t, server.URL+"/api/solo", map[string]any{
		"player_name": "Alice", "language": "en", "difficulty": "medium",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: status %d", resp.StatusCode)
	}
	var started struct {
		QuizID         string `json:"quiz_id"`
		TotalQuestions int    `json:"total_questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", started.TotalQuestions)
	}

	// Questions come shuffled; look up the right answer by text. The
	// first question is served without the answer itself.
	correctAnswers := map[string]string{
		"Capital of France?": "paris",
		"3*3?":               "9",
	}
	qResp, err := http.Get(server.URL + "/api/solo/" + started.QuizID + "/question")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	defer qResp.Body.Close()
	var qBody struct {
		Question struct {
			Text string `json:"question"`
		} `json:"question"`
		QuestionNumber int `json:"question_number"`
	}
	if err := json.NewDecoder(qResp.Body).Decode(&qBody); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	if qBody.QuestionNumber != 1 {
		t.Fatalf("expected question 1, got %d", qBody.QuestionNumber)
	}
	correct, ok := correctAnswers[qBody.Question.Text]
	if !ok {
		t.Fatalf("served question is not from the catalog: %q", qBody.Question.Text)
	}

	// Correct answer, then a wrong one finishing the quiz.
	resp = postJSON(t, server.URL+"/api/solo/"+started.QuizID+"/answer", map[string]any{
		"answer": correct, "response_time": 0.0,
	})
	var first struct {
		Feedback struct {
			WasCorrect   bool `json:"was_correct"`
			PointsEarned int  `json:"points_earned"`
		} `json:"feedback"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
		t.Fatalf("decode feedback: %v", err)
	}
	if !first.Feedback.WasCorrect || first.Feedback.PointsEarned != 180 {
		t.Fatalf("expected 180 points at medium, got %+v", first.Feedback)
	}

	resp = postJSON(t, server.URL+"/api/solo/"+started.QuizID+"/answer", map[string]any{
		"answer": "8", "response_time": 5.0,
	})
	var second struct {
		Result *domain.SoloResult `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&second); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if second.Result == nil || second.Result.Score != 1 || second.Result.Percentage != 50 {
		t.Fatalf("expected 1/2 result, got %+v", second.Result)
	}
	if len(stats.results) != 1 {
		t.Fatalf("finished run must be persisted, got %d", len(stats.results))
	}

	// The quiz is gone after finishing.
	resp = postJSON(t, server.URL+"/api/solo/"+started.QuizID+"/answer", map[string]any{
		"answer": "9", "response_time": 1.0,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after finish, got %d", resp.StatusCode)
	}

	// Highscores include the run.
	hsResp, err := http.Get(server.URL + "/api/highscores")
	if err != nil {
		t.Fatalf("get highscores: %v", err)
	}
	defer hsResp.Body.Close()
	var highscores struct {
		Highscores []domain.SoloResult `json:"highscores"`
	}
	if err := json.NewDecoder(hsResp.Body).Decode(&highscores); err != nil {
		t.Fatalf("decode highscores: %v", err)
	}
	if len(highscores.Highscores) != 1 || highscores.Highscores[0].PlayerName != "Alice" {
		t.Fatalf("expected Alice on the board, got %+v", highscores.Highscores)
	}
}

func TestSoloQuestionOrderIsShuffled(t *testing.T) {
	questions := make([]domain.Question, 12)
	for i := range questions {
		questions[i] = domain.Question{
			Text: fmt.Sprintf("Question %d?", i), Answer: "x", Type: domain.QuestionText,
			Difficulty: domain.DifficultyEasy, TimerSeconds: 30, BasePoints: 100,
		}
	}
	bank := questionbank.NewBank(questionbank.NewStaticLoader(map[string]questionbank.Catalog{
		"en": {domain.DifficultyEasy: questions},
	}), time.Minute)

	mux := http.NewServeMux()
	NewSoloHandler(bank, nil, "en").Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	firsts := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		resp := postJSON(t, server.URL+"/api/solo", map[string]any{
			"player_name": "Alice", "language": "en", "difficulty": "easy",
		})
		var started struct {
			QuizID string `json:"quiz_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
			t.Fatalf("decode: %v", err)
		}
		qResp, err := http.Get(server.URL + "/api/solo/" + started.QuizID + "/question")
		if err != nil {
			t.Fatalf("get question: %v", err)
		}
		var qBody struct {
			Question struct {
				Text string `json:"question"`
			} `json:"question"`
		}
		if err := json.NewDecoder(qResp.Body).Decode(&qBody); err != nil {
			t.Fatalf("decode question: %v", err)
		}
		qResp.Body.Close()
		firsts[qBody.Question.Text] = struct{}{}
	}
	if len(firsts) < 2 {
		t.Fatalf("20 runs over 12 questions always started with %v; order is not shuffled", firsts)
	}
}

func TestSoloUnknownLanguage(t *testing.T) {
	server := newSoloServer(t, nil)
	resp := postJSON(t, server.URL+"/api/solo", map[string]any{
		"player_name": "Alice", "language": "xx",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown language, got %d", resp.StatusCode)
	}
}

func TestHighscoresWithoutStats(t *testing.T) {
	server := newSoloServer(t, nil)
	resp, err := http.Get(server.URL + "/api/highscores")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without a stats store, got %d", resp.StatusCode)
	}
}
