package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"quizpin-service/internal/domain"
	"quizpin-service/internal/scoring"
)

// PinAllocator hands out unused game PINs. Implemented by pin.Allocator.
type PinAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// GameEngine owns the session state machine: game creation, player
// admission, the start -> score -> advance round cycle, and the
// leaderboard. Every operation is a synchronous read-modify-write
// against the store, serialized per PIN.
type GameEngine struct {
	store      GameStore
	pins       PinAllocator
	broadcast  Broadcaster
	maxPlayers int
	locks      *pinLocks
	clock      func() time.Time
}

// NewGameEngine wires the engine. maxPlayers <= 0 disables the capacity
// check.
func NewGameEngine(store GameStore, pins PinAllocator, broadcast Broadcaster, maxPlayers int) *GameEngine {
	if broadcast == nil {
		broadcast = NopBroadcaster{}
	}
	return &GameEngine{
		store:      store,
		pins:       pins,
		broadcast:  broadcast,
		maxPlayers: maxPlayers,
		locks:      newPinLocks(),
		clock:      time.Now,
	}
}

// CreateGame allocates a PIN and persists a new session in the waiting
// state. The question slice is snapshotted into the game; an empty slice
// is allowed and produces a game that finishes on the first advance.
func (e *GameEngine) CreateGame(ctx context.Context, hostName string, questions []domain.Question) (*domain.Game, error) {
	gamePin, err := e.pins.Allocate(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate pin: %w", err)
	}

	game := &domain.Game{
		Pin:       gamePin,
		HostName:  hostName,
		State:     domain.StateWaiting,
		Questions: append([]domain.Question(nil), questions...),
		CreatedAt: e.clock(),
	}
	if err := e.store.PutGame(ctx, game); err != nil {
		return nil, fmt.Errorf("persist game: %w", err)
	}

	logrus.WithFields(logrus.Fields{"pin": gamePin, "host": hostName, "questions": len(questions)}).
		Info("created new game")
	return game, nil
}

// AdmitPlayer adds a player to a waiting game. The name must be free
// within the game (case-sensitive) and the game must not be full. The
// whole check-then-insert runs under the game's lock, so two concurrent
// joins with the same name cannot both pass the uniqueness check.
func (e *GameEngine) AdmitPlayer(ctx context.Context, gamePin, playerID, name string) (*domain.Player, error) {
	defer e.locks.lock(gamePin)()

	game, err := e.store.GetGame(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	if game.State != domain.StateWaiting {
		return nil, domain.ErrGameStarted
	}

	count, err := e.store.CountPlayers(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	if e.maxPlayers > 0 && count >= e.maxPlayers {
		return nil, domain.ErrGameFull
	}

	if existing, err := e.store.FindPlayerByName(ctx, gamePin, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicateName
	}

	player := &domain.Player{
		ID:       playerID,
		Name:     name,
		GamePin:  gamePin,
		JoinedAt: e.clock(),
	}
	if err := e.store.PutPlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("persist player: %w", err)
	}

	players, err := e.store.ListPlayers(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	roster := make([]domain.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		roster = append(roster, domain.LeaderboardEntry{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	e.broadcast.Emit("player_joined", map[string]any{
		"player_name":  name,
		"players":      roster,
		"player_count": len(roster),
	}, gamePin)

	logrus.WithFields(logrus.Fields{"pin": gamePin, "player": name}).Info("player joined game")
	return player, nil
}

// StartQuestion moves a waiting game to playing. Repeated calls while
// already playing are no-ops, so a host retry cannot corrupt state. It
// fails once the question index has moved past the end of the set.
func (e *GameEngine) StartQuestion(ctx context.Context, gamePin string) (*domain.Game, error) {
	defer e.locks.lock(gamePin)()

	game, err := e.store.GetGame(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	if _, ok := game.CurrentQuestion(); !ok {
		return nil, domain.ErrNoMoreQuestions
	}
	if game.State == domain.StateWaiting {
		game.State = domain.StatePlaying
		if err := e.store.PutGame(ctx, game); err != nil {
			return nil, fmt.Errorf("persist game: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{"pin": gamePin, "question": game.CurrentQuestionIndex + 1}).
		Info("question started")
	return game, nil
}

// SubmitAnswer records one player's answer for the current question.
// Each slot accepts exactly one write: a second submission is rejected
// even with identical content. Timeouts arrive as normal submissions
// with the timeout flag set; they occupy the slot but never score.
func (e *GameEngine) SubmitAnswer(ctx context.Context, gamePin, playerID, text string, responseTimeSeconds float64, timeout bool) error {
	defer e.locks.lock(gamePin)()

	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if player.GamePin != gamePin {
		return domain.ErrPlayerNotFound
	}

	game, err := e.store.GetGame(ctx, gamePin)
	if err != nil {
		return err
	}
	if game.State != domain.StatePlaying {
		return domain.ErrNotPlaying
	}

	index := game.CurrentQuestionIndex
	if player.AnswerAt(index) != nil {
		return domain.ErrAlreadyAnswered
	}
	for len(player.Answers) <= index {
		player.Answers = append(player.Answers, nil)
	}
	player.Answers[index] = &domain.Answer{
		RawText:             text,
		ResponseTimeSeconds: responseTimeSeconds,
		Timeout:             timeout,
		SubmittedAt:         e.clock(),
	}
	if err := e.store.PutPlayer(ctx, player); err != nil {
		return fmt.Errorf("persist answer: %w", err)
	}

	logrus.WithFields(logrus.Fields{"pin": gamePin, "player": player.Name, "question": index + 1}).
		Info("answer submitted")
	return nil
}

// ScoreCurrentQuestion awards points to every player whose recorded
// answer for the current question matches the canonical one. The game
// remembers how far it has been scored, so calling this twice for the
// same question awards nothing the second time. A game that is not
// playing is rejected outright; marking a round as scored before it ran
// would lose the real score call later.
func (e *GameEngine) ScoreCurrentQuestion(ctx context.Context, gamePin string) (*domain.Game, error) {
	defer e.locks.lock(gamePin)()

	game, err := e.store.GetGame(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	if game.State != domain.StatePlaying {
		return nil, domain.ErrNotPlaying
	}
	question, ok := game.CurrentQuestion()
	if !ok {
		return nil, domain.ErrNoMoreQuestions
	}
	index := game.CurrentQuestionIndex
	if index < game.ScoredThrough {
		logrus.WithFields(logrus.Fields{"pin": gamePin, "question": index + 1}).
			Warn("question already scored, skipping")
		return game, nil
	}

	players, err := e.store.ListPlayers(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	for _, player := range players {
		correct, awarded := scoring.Score(question, player.AnswerAt(index))
		if !correct {
			continue
		}
		player.Score += awarded
		if err := e.store.PutPlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("persist score: %w", err)
		}
	}

	game.ScoredThrough = index + 1
	if err := e.store.PutGame(ctx, game); err != nil {
		return nil, fmt.Errorf("persist game: %w", err)
	}

	logrus.WithFields(logrus.Fields{"pin": gamePin, "question": index + 1}).Info("question scored")
	return game, nil
}

// AdvanceQuestion moves to the next question, finishing the game when
// the set is exhausted. A game created with zero questions finishes on
// the first call.
func (e *GameEngine) AdvanceQuestion(ctx context.Context, gamePin string) (*domain.Game, error) {
	defer e.locks.lock(gamePin)()

	game, err := e.store.GetGame(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	game.CurrentQuestionIndex++
	if game.CurrentQuestionIndex >= len(game.Questions) {
		game.CurrentQuestionIndex = len(game.Questions)
		game.State = domain.StateFinished
	}
	if err := e.store.PutGame(ctx, game); err != nil {
		return nil, fmt.Errorf("persist game: %w", err)
	}

	if game.State == domain.StateFinished {
		logrus.WithField("pin", gamePin).Info("game finished")
	}
	return game, nil
}

// Leaderboard returns a game's players ordered by score descending, ties
// broken by join time ascending. An unknown PIN yields an empty slice,
// not an error.
func (e *GameEngine) Leaderboard(ctx context.Context, gamePin string) ([]*domain.Player, error) {
	defer e.locks.lock(gamePin)()

	if _, err := e.store.GetGame(ctx, gamePin); err != nil {
		if err == domain.ErrGameNotFound {
			return []*domain.Player{}, nil
		}
		return nil, err
	}

	players, err := e.store.ListPlayers(ctx, gamePin)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

// DeleteGame tears down a session and its players on explicit host
// request.
func (e *GameEngine) DeleteGame(ctx context.Context, gamePin string) error {
	defer e.locks.lock(gamePin)()
	return e.store.DeleteGame(ctx, gamePin)
}

// CleanupExpired deletes games older than ttl, cascading to their
// players. Each deletion runs under the game's own lock so the sweep
// never races an in-flight mutation.
func (e *GameEngine) CleanupExpired(ctx context.Context, ttl time.Duration) (int, error) {
	games, err := e.store.ListGames(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := e.clock().Add(-ttl)

	deleted := 0
	for _, game := range games {
		if !game.CreatedAt.Before(cutoff) {
			continue
		}
		removed, err := e.deleteIfStillExpired(ctx, game.Pin, cutoff)
		if err != nil {
			return deleted, err
		}
		if removed {
			deleted++
		}
	}
	if deleted > 0 {
		logrus.WithField("count", deleted).Info("cleaned up expired games")
	}
	return deleted, nil
}

func (e *GameEngine) deleteIfStillExpired(ctx context.Context, gamePin string, cutoff time.Time) (bool, error) {
	defer e.locks.lock(gamePin)()

	game, err := e.store.GetGame(ctx, gamePin)
	if err != nil {
		if err == domain.ErrGameNotFound {
			return false, nil
		}
		return false, err
	}
	if !game.CreatedAt.Before(cutoff) {
		return false, nil
	}
	if err := e.store.DeleteGame(ctx, gamePin); err != nil {
		return false, err
	}
	return true, nil
}
