package server

import (
	"beamer-quiz/internal/db"

	"gorm.io/gorm"
)

// resetGame forces the active game back to the lobby. Three escalating
// levels, each all-or-nothing:
//
//	soft    - played flags cleared, answers and image states wiped,
//	          scores zeroed, players kept
//	hard    - soft, plus players dropped
//	factory - hard, plus the game's image assignments dropped
//
// The pool images themselves survive every level. Resets are operator
// actions; nothing triggers them automatically. Unlike every other command,
// a reset also recovers an ended game, so the latest game is resolved
// regardless of status.
func (s *Server) resetGame(level string) (*db.Game, error) {
	switch level {
	case resetLevelSoft, resetLevelHard, resetLevelFactory:
	default:
		return nil, invalidInput("unknown reset level %q", level)
	}

	var game *db.Game
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		game, err = db.LatestGame(tx)
		if err != nil {
			return err
		}
		if game == nil {
			return errNoActiveGame
		}

		if err := tx.Where("player_id IN (SELECT id FROM players WHERE game_id = ?)", game.ID).
			Delete(&db.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", game.ID).Delete(&db.ImageState{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.GameImage{}).Where("game_id = ?", game.ID).
			Update("is_played", false).Error; err != nil {
			return err
		}

		switch level {
		case resetLevelSoft:
			if err := tx.Model(&db.Player{}).Where("game_id = ?", game.ID).
				Update("score", 0).Error; err != nil {
				return err
			}
		case resetLevelHard, resetLevelFactory:
			if err := tx.Where("game_id = ?", game.ID).Delete(&db.Player{}).Error; err != nil {
				return err
			}
		}
		if level == resetLevelFactory {
			if err := tx.Where("game_id = ?", game.ID).Delete(&db.GameImage{}).Error; err != nil {
				return err
			}
		}

		game.Status = db.GameStatusLobby
		game.CurrentImageID = nil
		game.StartedAt = nil
		game.EndedAt = nil
		return tx.Save(game).Error
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(&game.ID, nil, "game_reset", EventPayload{Level: level})
	s.logger.Info("game reset", "game_id", game.ID, "level", level)
	s.broadcastPhaseChange(game)
	s.broadcastRoster(game.ID)
	s.broadcastLeaderboard(game.ID)
	return game, nil
}
