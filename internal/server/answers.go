package server

import (
	"errors"
	"time"

	"beamer-quiz/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockAnswer records a player's provisional guess for an image. Re-locking
// upserts by (player, image): the new text and timestamp win and any earlier
// judgment is cleared. Judgment itself happens at reveal.
func (s *Server) lockAnswer(playerID string, imageID uint, text string, lockedAt int64) (*db.Answer, error) {
	answer, err := validateAnswer(text)
	if err != nil {
		return nil, err
	}
	if lockedAt <= 0 {
		lockedAt = time.Now().UTC().UnixMilli()
	}

	var (
		player db.Player
		record = db.Answer{
			PlayerID: playerID,
			ImageID:  imageID,
			Text:     answer,
			LockedAt: lockedAt,
		}
	)
	// The played check and the upsert commit together: a lock racing a
	// concurrent reveal cannot land after the image freezes.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		game, err := s.activeGame(tx)
		if err != nil {
			return err
		}
		if err := guardStatus(game, db.GameStatusPlaying); err != nil {
			if errors.Is(err, errGameAlreadyStarted) {
				return errGameNotRunning
			}
			return err
		}

		if err := tx.Where("id = ? AND game_id = ?", playerID, game.ID).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errPlayerNotFound
			}
			return err
		}

		if err := requireUnplayedImage(tx, game.ID, imageID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}, {Name: "image_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"text":          answer,
				"locked_at":     lockedAt,
				"is_correct":    nil,
				"points_earned": 0,
				"updated_at":    time.Now().UTC(),
			}),
		}).Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	// Non-authoritative live feed for the admin panel only. Players must
	// never see each other's locks before reveal.
	s.hub.Broadcast(roomAdmin, eventMessage{Type: evtAnswerLocked, Data: map[string]any{
		"playerId":   player.ID,
		"playerName": player.Name,
		"imageId":    imageID,
		"answer":     answer,
		"lockedAt":   lockedAt,
	}})
	return &record, nil
}
