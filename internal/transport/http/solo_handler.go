package http

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizpin-service/internal/app"
	"quizpin-service/internal/domain"
	"quizpin-service/internal/questionbank"
)

// StatsStore persists finished solo runs. Nil-able: without Postgres the
// highscore board is simply unavailable.
type StatsStore interface {
	SaveResult(ctx context.Context, result domain.SoloResult) error
	TopResults(ctx context.Context, limit int) ([]domain.SoloResult, error)
}

// SoloHandler runs self-paced quizzes over plain HTTP. Active runs live
// in memory, keyed by a random quiz ID the client carries between
// requests.
type SoloHandler struct {
	bank            *questionbank.Bank
	stats           StatsStore
	validate        *validator.Validate
	defaultLanguage string

	mu      sync.Mutex
	quizzes map[string]*app.SoloQuiz
}

func NewSoloHandler(bank *questionbank.Bank, stats StatsStore, defaultLanguage string) *SoloHandler {
	return &SoloHandler{
		bank:            bank,
		stats:           stats,
		validate:        validator.New(),
		defaultLanguage: defaultLanguage,
		quizzes:         make(map[string]*app.SoloQuiz),
	}
}

func (h *SoloHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/solo", h.start)
	mux.HandleFunc("GET /api/solo/{id}/question", h.question)
	mux.HandleFunc("POST /api/solo/{id}/answer", h.answer)
	mux.HandleFunc("GET /api/highscores", h.highscores)
}

type startSoloRequest struct {
	PlayerName string `json:"player_name" validate:"required,min=2,max=50"`
	Language   string `json:"language" validate:"omitempty,max=5"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard heavy"`
	Mode       string `json:"mode" validate:"omitempty,oneof=difficulty random"`
	Count      int    `json:"count" validate:"omitempty,min=1,max=100"`
}

func (h *SoloHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startSoloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	language := req.Language
	if language == "" {
		language = h.defaultLanguage
	}
	difficulty := domain.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	var questions []domain.Question
	var err error
	if req.Mode == "random" {
		questions, err = h.bank.Load(r.Context(), language)
	} else {
		questions, err = h.bank.ByDifficulty(r.Context(), language, difficulty)
	}
	if err != nil {
		logrus.WithError(err).Error("load solo questions")
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	if len(questions) == 0 {
		writeError(w, http.StatusBadRequest, "no questions available for this language and difficulty")
		return
	}
	shuffled := append([]domain.Question(nil), questions...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if req.Count > 0 && req.Count < len(shuffled) {
		shuffled = shuffled[:req.Count]
	}

	quizID := uuid.NewString()
	quiz := app.NewSoloQuiz(req.PlayerName, language, difficulty, shuffled)
	h.mu.Lock()
	h.quizzes[quizID] = quiz
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"quiz_id":         quizID,
		"total_questions": len(shuffled),
	})
}

func (h *SoloHandler) question(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	question, index, ok := quiz.Current()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"finished": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question":        viewOf(question),
		"question_number": index + 1,
	})
}

type soloAnswerRequest struct {
	Answer       string  `json:"answer"`
	ResponseTime float64 `json:"response_time" validate:"gte=0"`
	Timeout      bool    `json:"timeout"`
}

func (h *SoloHandler) answer(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("id")
	quiz, ok := h.get(quizID)
	if !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}

	var req soloAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	answer := SanitizeAnswer(req.Answer)
	if answer == "" && !req.Timeout {
		writeError(w, http.StatusBadRequest, "answer must not be empty")
		return
	}

	feedback, err := quiz.Answer(answer, req.ResponseTime, req.Timeout)
	if err != nil {
		writeError(w, http.StatusConflict, "quiz already finished")
		return
	}

	response := map[string]any{"feedback": feedback}
	if quiz.Finished() {
		result := quiz.Result()
		response["result"] = result
		response["best_streak"] = quiz.BestStreak()
		response["average_response_time"] = quiz.AverageResponseTime()
		if h.stats != nil {
			if err := h.stats.SaveResult(r.Context(), result); err != nil {
				logrus.WithError(err).Error("save solo result")
			}
		}
		h.mu.Lock()
		delete(h.quizzes, quizID)
		h.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *SoloHandler) highscores(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusNotFound, "highscores not available")
		return
	}
	results, err := h.stats.TopResults(r.Context(), 10)
	if err != nil {
		logrus.WithError(err).Error("load highscores")
		writeError(w, http.StatusInternalServerError, "failed to load highscores")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"highscores": results})
}

func (h *SoloHandler) get(id string) (*app.SoloQuiz, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	quiz, ok := h.quizzes[id]
	return quiz, ok
}
