package domain

import "time"

// GameState is the lifecycle phase of a game session. It only ever
// advances: waiting -> playing -> finished.
type GameState string

const (
	StateWaiting  GameState = "waiting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

// Difficulty tiers of the question catalog, in ascending order.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyHeavy  Difficulty = "heavy"
)

// QuestionType distinguishes free-text answers from multiple choice.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "mc"
)

// Question is an immutable catalog entry. Games embed a snapshot of the
// questions chosen at creation, so later catalog reloads never affect a
// running session.
type Question struct {
	Text         string       `json:"question"`
	Answer       string       `json:"answer"`
	Type         QuestionType `json:"type"`
	Options      []string     `json:"options,omitempty"`
	Difficulty   Difficulty   `json:"difficulty"`
	TimerSeconds int          `json:"timer_seconds"`
	BasePoints   int          `json:"points"`
}

// Answer records one player's submission for one question slot. A slot,
// once filled, is never overwritten.
type Answer struct {
	RawText             string    `json:"answer"`
	ResponseTimeSeconds float64   `json:"response_time"`
	Timeout             bool      `json:"timeout,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

// Game is one quiz session, keyed by its 6-digit PIN.
type Game struct {
	Pin                  string    `json:"pin"`
	HostName             string    `json:"host_name"`
	State                GameState `json:"state"`
	CurrentQuestionIndex int       `json:"current_question"`
	// ScoredThrough counts the questions already scored; question i has
	// been scored iff i < ScoredThrough. Keeps scoring idempotent when a
	// host retries the results step.
	ScoredThrough int        `json:"scored_through"`
	Questions     []Question `json:"questions"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CurrentQuestion returns the active question, or false when the index
// has moved past the end of the snapshot.
func (g *Game) CurrentQuestion() (Question, bool) {
	if g.CurrentQuestionIndex >= len(g.Questions) {
		return Question{}, false
	}
	return g.Questions[g.CurrentQuestionIndex], true
}

// Player is a participant in exactly one game. Answers is indexed by
// question position and may be sparse; nil means "not answered yet".
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	GamePin  string    `json:"game_pin"`
	Score    int       `json:"score"`
	Answers  []*Answer `json:"answers"`
	JoinedAt time.Time `json:"joined_at"`
}

// AnswerAt returns the recorded answer for a question index, or nil.
func (p *Player) AnswerAt(index int) *Answer {
	if index < 0 || index >= len(p.Answers) {
		return nil
	}
	return p.Answers[index]
}

// LeaderboardEntry is a broadcast-friendly view of a player.
type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SoloResult is a finished single-player run, persisted for the
// highscore board.
type SoloResult struct {
	PlayerName     string     `json:"player_name"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	Percentage     float64    `json:"percentage"`
	TotalPoints    int        `json:"total_points"`
	Difficulty     Difficulty `json:"difficulty"`
	Language       string     `json:"language"`
	PlayedAt       time.Time  `json:"played_at"`
}
