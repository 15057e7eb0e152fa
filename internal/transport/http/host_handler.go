package http

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"quizpin-service/internal/app"
	"quizpin-service/internal/domain"
	"quizpin-service/internal/questionbank"
)

// HostHandler exposes the host-side REST API: game creation and the
// start -> show-results -> next round cycle. Round events reach the
// players through the room hub.
type HostHandler struct {
	engine          *app.GameEngine
	bank            *questionbank.Bank
	hub             *Hub
	validate        *validator.Validate
	maxQuestions    int
	defaultLanguage string
}

func NewHostHandler(engine *app.GameEngine, bank *questionbank.Bank, hub *Hub, maxQuestions int, defaultLanguage string) *HostHandler {
	return &HostHandler{
		engine:          engine,
		bank:            bank,
		hub:             hub,
		validate:        validator.New(),
		maxQuestions:    maxQuestions,
		defaultLanguage: defaultLanguage,
	}
}

func (h *HostHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/host/games", h.createGame)
	mux.HandleFunc("POST /api/host/games/{pin}/start-question", h.startQuestion)
	mux.HandleFunc("POST /api/host/games/{pin}/show-results", h.showResults)
	mux.HandleFunc("POST /api/host/games/{pin}/next-question", h.nextQuestion)
	mux.HandleFunc("DELETE /api/host/games/{pin}", h.deleteGame)
	mux.HandleFunc("GET /api/games/{pin}/leaderboard", h.leaderboard)
}

type createGameRequest struct {
	HostName   string `json:"host_name" validate:"required,min=2,max=50"`
	Language   string `json:"language" validate:"omitempty,max=5"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard heavy mixed"`
	Count      int    `json:"count" validate:"omitempty,min=1,max=100"`
}

// questionView is the player-facing shape of a question: everything
// except the canonical answer.
type questionView struct {
	Text         string              `json:"question"`
	Type         domain.QuestionType `json:"type"`
	Options      []string            `json:"options,omitempty"`
	Difficulty   domain.Difficulty   `json:"difficulty"`
	TimerSeconds int                 `json:"timer_seconds"`
	BasePoints   int                 `json:"points"`
}

func viewOf(q domain.Question) questionView {
	return questionView{
		Text:         q.Text,
		Type:         q.Type,
		Options:      q.Options,
		Difficulty:   q.Difficulty,
		TimerSeconds: q.TimerSeconds,
		BasePoints:   q.BasePoints,
	}
}

func (h *HostHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
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

	var questions []domain.Question
	var err error
	if req.Difficulty != "" && req.Difficulty != "mixed" {
		questions, err = h.bank.ByDifficulty(r.Context(), language, domain.Difficulty(req.Difficulty))
	} else {
		questions, err = h.bank.Load(r.Context(), language)
	}
	if err != nil {
		logrus.WithError(err).Error("load questions")
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	if len(questions) == 0 {
		writeError(w, http.StatusBadRequest, "no questions available for this language and difficulty")
		return
	}

	shuffled := append([]domain.Question(nil), questions...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	limit := len(shuffled)
	if req.Count > 0 && req.Count < limit {
		limit = req.Count
	}
	if h.maxQuestions > 0 && h.maxQuestions < limit {
		limit = h.maxQuestions
	}
	shuffled = shuffled[:limit]

	game, err := h.engine.CreateGame(r.Context(), req.HostName, shuffled)
	if err != nil {
		logrus.WithError(err).Error("create game")
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"pin":             game.Pin,
		"host_name":       game.HostName,
		"total_questions": len(game.Questions),
	})
}

func (h *HostHandler) startQuestion(w http.ResponseWriter, r *http.Request) {
	gamePin := r.PathValue("pin")
	if !ValidPin(gamePin) {
		writeError(w, http.StatusBadRequest, "valid 6-digit pin required")
		return
	}

	game, err := h.engine.StartQuestion(r.Context(), gamePin)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	question, _ := game.CurrentQuestion()

	h.hub.Emit("question_started", map[string]any{
		"question":        viewOf(question),
		"question_number": game.CurrentQuestionIndex + 1,
		"total_questions": len(game.Questions),
	}, gamePin)

	writeJSON(w, http.StatusOK, map[string]any{
		"question_number": game.CurrentQuestionIndex + 1,
		"state":           game.State,
	})
}

func (h *HostHandler) showResults(w http.ResponseWriter, r *http.Request) {
	gamePin := r.PathValue("pin")
	if !ValidPin(gamePin) {
		writeError(w, http.StatusBadRequest, "valid 6-digit pin required")
		return
	}

	game, err := h.engine.ScoreCurrentQuestion(r.Context(), gamePin)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	question, _ := game.CurrentQuestion()

	board, err := h.leaderboardEntries(r, gamePin)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.hub.Emit("results_shown", map[string]any{
		"correct_answer": question.Answer,
		"leaderboard":    board,
	}, gamePin)

	writeJSON(w, http.StatusOK, map[string]any{
		"correct_answer": question.Answer,
		"leaderboard":    board,
	})
}

func (h *HostHandler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	gamePin := r.PathValue("pin")
	if !ValidPin(gamePin) {
		writeError(w, http.StatusBadRequest, "valid 6-digit pin required")
		return
	}

	game, err := h.engine.AdvanceQuestion(r.Context(), gamePin)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	response := map[string]any{
		"state":           game.State,
		"question_number": game.CurrentQuestionIndex + 1,
	}
	if game.State == domain.StateFinished {
		board, err := h.leaderboardEntries(r, gamePin)
		if err != nil {
			h.writeEngineError(w, err)
			return
		}
		h.hub.Emit("game_finished", map[string]any{"leaderboard": board}, gamePin)
		response["final_leaderboard"] = board
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *HostHandler) deleteGame(w http.ResponseWriter, r *http.Request) {
	gamePin := r.PathValue("pin")
	if !ValidPin(gamePin) {
		writeError(w, http.StatusBadRequest, "valid 6-digit pin required")
		return
	}
	if err := h.engine.DeleteGame(r.Context(), gamePin); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *HostHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	gamePin := r.PathValue("pin")
	if !ValidPin(gamePin) {
		writeError(w, http.StatusBadRequest, "valid 6-digit pin required")
		return
	}
	board, err := h.leaderboardEntries(r, gamePin)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": board})
}

func (h *HostHandler) leaderboardEntries(r *http.Request, gamePin string) ([]domain.LeaderboardEntry, error) {
	players, err := h.engine.Leaderboard(r.Context(), gamePin)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, domain.LeaderboardEntry{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return entries, nil
}

func (h *HostHandler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, rejectionMessage(err))
	case domain.IsRejection(err):
		writeError(w, http.StatusConflict, rejectionMessage(err))
	default:
		logrus.WithError(err).Error("engine operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
