// Package redis holds the Redis-backed GameStore. Games and players are
// stored as JSON values with the game TTL, so abandoned sessions expire
// in Redis even if the sweep never runs.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizpin-service/internal/domain"
)

// GameStore keeps one JSON value per game and per player, plus a roster
// list per game that preserves join order. Individual operations are
// atomic on single keys; multi-key sequences rely on the engine's
// per-PIN serialization (single-process deployment).
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{client: client, ttl: ttl}
}

func (s *GameStore) GameExists(ctx context.Context, pin string) (bool, error) {
	n, err := s.client.Exists(ctx, s.gameKey(pin)).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", pin, err)
	}
	return n > 0, nil
}

func (s *GameStore) GetGame(ctx context.Context, pin string) (*domain.Game, error) {
	raw, err := s.client.Get(ctx, s.gameKey(pin)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", pin, err)
	}
	var game domain.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, fmt.Errorf("unmarshal game %s: %w", pin, err)
	}
	return &game, nil
}

func (s *GameStore) PutGame(ctx context.Context, game *domain.Game) error {
	raw, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", game.Pin, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.gameKey(game.Pin), raw, s.ttl)
	pipe.SAdd(ctx, gamesIndexKey, game.Pin)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put game %s: %w", game.Pin, err)
	}
	return nil
}

func (s *GameStore) DeleteGame(ctx context.Context, pin string) error {
	ids, err := s.client.LRange(ctx, s.rosterKey(pin), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("roster %s: %w", pin, err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.playerKey(id))
	}
	pipe.Del(ctx, s.rosterKey(pin))
	pipe.Del(ctx, s.gameKey(pin))
	pipe.SRem(ctx, gamesIndexKey, pin)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete game %s: %w", pin, err)
	}
	return nil
}

func (s *GameStore) ListGames(ctx context.Context) ([]*domain.Game, error) {
	pins, err := s.client.SMembers(ctx, gamesIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	games := make([]*domain.Game, 0, len(pins))
	for _, pin := range pins {
		game, err := s.GetGame(ctx, pin)
		if err == domain.ErrGameNotFound {
			// Value expired but the index entry lingered; drop it.
			_ = s.client.SRem(ctx, gamesIndexKey, pin).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

func (s *GameStore) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	raw, err := s.client.Get(ctx, s.playerKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	var player domain.Player
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("unmarshal player %s: %w", id, err)
	}
	return &player, nil
}

func (s *GameStore) PutPlayer(ctx context.Context, player *domain.Player) error {
	raw, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("marshal player %s: %w", player.ID, err)
	}

	known, err := s.client.Exists(ctx, s.playerKey(player.ID)).Result()
	if err != nil {
		return fmt.Errorf("player exists %s: %w", player.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.playerKey(player.ID), raw, s.ttl)
	if known == 0 {
		pipe.RPush(ctx, s.rosterKey(player.GamePin), player.ID)
		pipe.Expire(ctx, s.rosterKey(player.GamePin), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put player %s: %w", player.ID, err)
	}
	return nil
}

func (s *GameStore) ListPlayers(ctx context.Context, pin string) ([]*domain.Player, error) {
	ids, err := s.client.LRange(ctx, s.rosterKey(pin), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("roster %s: %w", pin, err)
	}
	players := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		player, err := s.GetPlayer(ctx, id)
		if err == domain.ErrPlayerNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

func (s *GameStore) CountPlayers(ctx context.Context, pin string) (int, error) {
	n, err := s.client.LLen(ctx, s.rosterKey(pin)).Result()
	if err != nil {
		return 0, fmt.Errorf("count players %s: %w", pin, err)
	}
	return int(n), nil
}

func (s *GameStore) FindPlayerByName(ctx context.Context, pin, name string) (*domain.Player, error) {
	players, err := s.ListPlayers(ctx, pin)
	if err != nil {
		return nil, err
	}
	for _, player := range players {
		if player.Name == name {
			return player, nil
		}
	}
	return nil, nil
}

const gamesIndexKey = "games"

func (s *GameStore) gameKey(pin string) string {
	return "game:" + pin
}

func (s *GameStore) rosterKey(pin string) string {
	return "game:" + pin + ":roster"
}

func (s *GameStore) playerKey(id string) string {
	return "player:" + id
}
