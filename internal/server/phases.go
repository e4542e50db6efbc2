package server

import (
	"errors"
	"time"

	"beamer-quiz/internal/db"

	"gorm.io/gorm"
)

// guardStatus is the single phase gate consulted before every command that
// depends on the game lifecycle. It maps the current status to a typed
// illegal-transition error instead of ad hoc boolean checks per handler.
func guardStatus(game *db.Game, want string) error {
	if game == nil {
		return errNoActiveGame
	}
	if game.Status == want {
		return nil
	}
	switch game.Status {
	case db.GameStatusEnded:
		return errGameEnded
	case db.GameStatusPlaying:
		return errGameAlreadyStarted
	default:
		return errGameNotRunning
	}
}

func (s *Server) activeGame(conn *gorm.DB) (*db.Game, error) {
	return db.ActiveGame(conn)
}

// startGame moves the active game from lobby to playing with imageID as the
// current image. Requires at least one unplayed game image.
func (s *Server) startGame(imageID uint) (*db.Game, error) {
	var game *db.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = s.activeGame(tx)
		if err != nil {
			return err
		}
		if err := guardStatus(game, db.GameStatusLobby); err != nil {
			return err
		}
		var unplayed int64
		if err := tx.Model(&db.GameImage{}).
			Where("game_id = ? AND is_played = ?", game.ID, false).
			Count(&unplayed).Error; err != nil {
			return err
		}
		if unplayed == 0 {
			return errNoUnplayedImages
		}
		if err := requireUnplayedImage(tx, game.ID, imageID); err != nil {
			return err
		}
		now := time.Now().UTC()
		game.Status = db.GameStatusPlaying
		game.CurrentImageID = &imageID
		game.StartedAt = &now
		if err := tx.Save(game).Error; err != nil {
			return err
		}
		return ensureImageState(tx, game.ID, imageID, now)
	})
	if err != nil {
		return nil, err
	}
	s.recordEvent(&game.ID, nil, "game_started", EventPayload{Phase: game.Status, ImageID: imageID})
	s.broadcastPhaseChange(game)
	return game, nil
}

// nextImage swaps the current image while the game keeps playing.
func (s *Server) nextImage(imageID uint) (*db.Game, error) {
	var game *db.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = s.activeGame(tx)
		if err != nil {
			return err
		}
		if err := guardStatus(game, db.GameStatusPlaying); err != nil {
			if errors.Is(err, errGameAlreadyStarted) {
				return errGameNotRunning
			}
			return err
		}
		if err := requireUnplayedImage(tx, game.ID, imageID); err != nil {
			return err
		}
		game.CurrentImageID = &imageID
		if err := tx.Save(game).Error; err != nil {
			return err
		}
		return ensureImageState(tx, game.ID, imageID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.recordEvent(&game.ID, nil, "image_advanced", EventPayload{Phase: game.Status, ImageID: imageID})
	s.broadcastPhaseChange(game)
	return game, nil
}

// endGame finishes the active game. Ending from the lobby is an abort.
func (s *Server) endGame() (*db.Game, error) {
	var game *db.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = s.activeGame(tx)
		if err != nil {
			return err
		}
		if game == nil {
			return errNoActiveGame
		}
		now := time.Now().UTC()
		game.Status = db.GameStatusEnded
		game.EndedAt = &now
		game.CurrentImageID = nil
		return tx.Save(game).Error
	})
	if err != nil {
		return nil, err
	}
	s.recordEvent(&game.ID, nil, "game_ended", EventPayload{Phase: game.Status})
	s.broadcastPhaseChange(game)
	s.broadcastLeaderboard(game.ID)
	return game, nil
}

func requireUnplayedImage(tx *gorm.DB, gameID, imageID uint) error {
	var gameImage db.GameImage
	err := tx.Where("game_id = ? AND image_id = ?", gameID, imageID).First(&gameImage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errImageNotFound
		}
		return err
	}
	if gameImage.IsPlayed {
		return errImageAlreadyPlayed
	}
	return nil
}

// ensureImageState creates the per-image state row the first time an image
// goes up. A re-visit keeps the original start timestamp.
func ensureImageState(tx *gorm.DB, gameID, imageID uint, now time.Time) error {
	var state db.ImageState
	err := tx.Where("game_id = ? AND image_id = ?", gameID, imageID).First(&state).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	state = db.ImageState{GameID: gameID, ImageID: imageID, StartedAt: now}
	return tx.Create(&state).Error
}

func (s *Server) broadcastPhaseChange(game *db.Game) {
	data := map[string]any{"phase": game.Status}
	if game.CurrentImageID != nil {
		data["imageId"] = *game.CurrentImageID
	}
	message := eventMessage{Type: evtPhaseChange, Data: data}
	s.hub.Broadcast(roomBeamer, message)
	s.hub.Broadcast(roomPlayers, message)
}
