package app

import (
	"context"

	"quizpin-service/internal/domain"
)

// GameStore is the durable source of truth for games and their players.
// Implementations (in-memory, Redis) must make each individual operation
// atomic; check-then-act sequences spanning several calls are serialized
// per PIN by the engine's lock table.
//
// Get/GetPlayer return copies: mutating a returned value has no effect
// until it is put back.
type GameStore interface {
	GameExists(ctx context.Context, pin string) (bool, error)
	GetGame(ctx context.Context, pin string) (*domain.Game, error)
	PutGame(ctx context.Context, game *domain.Game) error
	// DeleteGame removes a game and cascades to its players.
	DeleteGame(ctx context.Context, pin string) error
	ListGames(ctx context.Context) ([]*domain.Game, error)

	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	PutPlayer(ctx context.Context, player *domain.Player) error
	// ListPlayers returns a game's players in join order.
	ListPlayers(ctx context.Context, pin string) ([]*domain.Player, error)
	CountPlayers(ctx context.Context, pin string) (int, error)
	FindPlayerByName(ctx context.Context, pin, name string) (*domain.Player, error)
}

// Broadcaster delivers state-change events to the clients of one game
// room. Delivery is fire-and-forget; the engine never blocks on it.
type Broadcaster interface {
	Emit(event string, payload any, room string)
}

// NopBroadcaster discards all events. Used in tests and for solo games.
type NopBroadcaster struct{}

func (NopBroadcaster) Emit(string, any, string) {}
