// Package memory holds the in-memory GameStore used in tests and for
// single-process deployments without Redis.
package memory

import (
	"context"
	"sync"

	"quizpin-service/internal/domain"
)

// GameStore keeps games and players in process memory. Values handed out
// are copies, so callers mutate freely and write back with Put*.
type GameStore struct {
	mu      sync.RWMutex
	games   map[string]*domain.Game
	players map[string]*domain.Player
	// joined preserves per-game join order, which the leaderboard's tie
	// break and the roster broadcast rely on.
	joined map[string][]string
}

func NewGameStore() *GameStore {
	return &GameStore{
		games:   make(map[string]*domain.Game),
		players: make(map[string]*domain.Player),
		joined:  make(map[string][]string),
	}
}

func (s *GameStore) GameExists(_ context.Context, pin string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[pin]
	return ok, nil
}

func (s *GameStore) GetGame(_ context.Context, pin string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[pin]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return cloneGame(game), nil
}

func (s *GameStore) PutGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.Pin] = cloneGame(game)
	return nil
}

func (s *GameStore) DeleteGame(_ context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, pin)
	for _, id := range s.joined[pin] {
		delete(s.players, id)
	}
	delete(s.joined, pin)
	return nil
}

func (s *GameStore) ListGames(_ context.Context) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*domain.Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, cloneGame(game))
	}
	return games, nil
}

func (s *GameStore) GetPlayer(_ context.Context, id string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return clonePlayer(player), nil
}

func (s *GameStore) PutPlayer(_ context.Context, player *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		s.joined[player.GamePin] = append(s.joined[player.GamePin], player.ID)
	}
	s.players[player.ID] = clonePlayer(player)
	return nil
}

func (s *GameStore) ListPlayers(_ context.Context, pin string) ([]*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.joined[pin]
	players := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := s.players[id]; ok {
			players = append(players, clonePlayer(player))
		}
	}
	return players, nil
}

func (s *GameStore) CountPlayers(_ context.Context, pin string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.joined[pin]), nil
}

func (s *GameStore) FindPlayerByName(_ context.Context, pin, name string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.joined[pin] {
		if player, ok := s.players[id]; ok && player.Name == name {
			return clonePlayer(player), nil
		}
	}
	return nil, nil
}

func cloneGame(game *domain.Game) *domain.Game {
	copied := *game
	copied.Questions = append([]domain.Question(nil), game.Questions...)
	return &copied
}

func clonePlayer(player *domain.Player) *domain.Player {
	copied := *player
	copied.Answers = make([]*domain.Answer, len(player.Answers))
	for i, answer := range player.Answers {
		if answer != nil {
			a := *answer
			copied.Answers[i] = &a
		}
	}
	return &copied
}
