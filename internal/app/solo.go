package app

import (
	"sync"
	"time"

	"quizpin-service/internal/domain"
	"quizpin-service/internal/scoring"
)

// SoloQuiz is a self-paced single-player run against the scoring engine.
// There is no host and no room; the player answers question by question
// and gets immediate feedback.
type SoloQuiz struct {
	mu            sync.Mutex
	playerName    string
	language      string
	difficulty    domain.Difficulty
	questions     []domain.Question
	current       int
	correctCount  int
	totalPoints   int
	streak        int
	bestStreak    int
	responseTimes []float64
	startedAt     time.Time
	clock         func() time.Time
}

// Feedback is the immediate result of one solo answer.
type Feedback struct {
	WasCorrect    bool    `json:"was_correct"`
	CorrectAnswer string  `json:"correct_answer"`
	UserAnswer    string  `json:"user_answer"`
	ResponseTime  float64 `json:"response_time"`
	PointsEarned  int     `json:"points_earned"`
	IsTimeout     bool    `json:"is_timeout"`
	Streak        int     `json:"streak"`
}

func NewSoloQuiz(playerName, language string, difficulty domain.Difficulty, questions []domain.Question) *SoloQuiz {
	return &SoloQuiz{
		playerName: playerName,
		language:   language,
		difficulty: difficulty,
		questions:  append([]domain.Question(nil), questions...),
		startedAt:  time.Now(),
		clock:      time.Now,
	}
}

// Current returns the question waiting for an answer, or false when the
// quiz is over.
func (s *SoloQuiz) Current() (domain.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.questions) {
		return domain.Question{}, s.current, false
	}
	return s.questions[s.current], s.current, true
}

// Answer scores the current question and advances to the next one.
// Timeouts count as wrong answers and reset the streak.
func (s *SoloQuiz) Answer(text string, responseTimeSeconds float64, timeout bool) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= len(s.questions) {
		return Feedback{}, domain.ErrQuizFinished
	}
	question := s.questions[s.current]

	answer := &domain.Answer{
		RawText:             text,
		ResponseTimeSeconds: responseTimeSeconds,
		Timeout:             timeout,
		SubmittedAt:         s.clock(),
	}
	correct, awarded := scoring.Score(question, answer)
	if correct {
		s.correctCount++
		s.totalPoints += awarded
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
	} else {
		s.streak = 0
	}
	s.responseTimes = append(s.responseTimes, responseTimeSeconds)
	s.current++

	return Feedback{
		WasCorrect:    correct,
		CorrectAnswer: question.Answer,
		UserAnswer:    text,
		ResponseTime:  responseTimeSeconds,
		PointsEarned:  awarded,
		IsTimeout:     timeout,
		Streak:        s.streak,
	}, nil
}

// Finished reports whether every question has been answered.
func (s *SoloQuiz) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current >= len(s.questions)
}

// BestStreak returns the longest run of consecutive correct answers.
func (s *SoloQuiz) BestStreak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestStreak
}

// AverageResponseTime returns the mean response time over all answers,
// or zero before the first answer.
func (s *SoloQuiz) AverageResponseTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responseTimes) == 0 {
		return 0
	}
	var sum float64
	for _, rt := range s.responseTimes {
		sum += rt
	}
	return sum / float64(len(s.responseTimes))
}

// Result summarizes the run for the highscore board.
func (s *SoloQuiz) Result() domain.SoloResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(s.correctCount) / float64(total) * 100
	}
	return domain.SoloResult{
		PlayerName:     s.playerName,
		Score:          s.correctCount,
		TotalQuestions: total,
		Percentage:     percentage,
		TotalPoints:    s.totalPoints,
		Difficulty:     s.difficulty,
		Language:       s.language,
		PlayedAt:       s.clock(),
	}
}
