package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ActiveGame returns the single lobby or playing game, if one exists.
func ActiveGame(conn *gorm.DB) (*Game, error) {
	var game Game
	err := conn.
		Where("status IN ?", []string{GameStatusLobby, GameStatusPlaying}).
		Order("id DESC").
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

// LatestGame returns the most recent game regardless of status. Resets go
// through it so an ended game can still be forced back to the lobby.
func LatestGame(conn *gorm.DB) (*Game, error) {
	var game Game
	err := conn.Order("id DESC").First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

// EnsureActiveGame creates a lobby game when no active game exists.
// Called once at process bootstrap.
func EnsureActiveGame(conn *gorm.DB) (*Game, error) {
	game, err := ActiveGame(conn)
	if err != nil {
		return nil, err
	}
	if game != nil {
		return game, nil
	}
	game = &Game{Status: GameStatusLobby, CreatedAt: time.Now().UTC()}
	if err := conn.Create(game).Error; err != nil {
		return nil, err
	}
	return game, nil
}
