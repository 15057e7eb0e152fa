package domain

import "errors"

var (
	// ErrGameNotFound is returned when a PIN does not resolve to a game.
	ErrGameNotFound = errors.New("game not found")
	// ErrPlayerNotFound is returned when a player ID is unknown or belongs
	// to a different game.
	ErrPlayerNotFound = errors.New("player not found in game")
	// ErrGameStarted rejects joins after the host has started the game.
	ErrGameStarted = errors.New("game already started")
	// ErrGameFull rejects joins once the configured player cap is reached.
	ErrGameFull = errors.New("game is full")
	// ErrDuplicateName rejects a join whose name is already taken in the
	// same game.
	ErrDuplicateName = errors.New("player name already taken")
	// ErrNotPlaying rejects answers while the game is not in the playing
	// state.
	ErrNotPlaying = errors.New("game not accepting answers")
	// ErrAlreadyAnswered rejects a second submission for the same question
	// slot, regardless of content.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNoMoreQuestions signals a question start past the end of the set.
	ErrNoMoreQuestions = errors.New("no more questions")
	// ErrQuizFinished signals an answer to a solo quiz that already ended.
	ErrQuizFinished = errors.New("quiz already finished")
)

// IsRejection reports whether err is an expected policy rejection rather
// than a lookup miss or an infrastructure failure. Callers surface these
// as normal control flow, not server errors.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, ErrGameStarted),
		errors.Is(err, ErrGameFull),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrNotPlaying),
		errors.Is(err, ErrAlreadyAnswered),
		errors.Is(err, ErrNoMoreQuestions):
		return true
	}
	return false
}
