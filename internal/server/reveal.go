package server

import (
	"errors"
	"time"

	"beamer-quiz/internal/db"

	"gorm.io/gorm"
)

type scoringResult struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"isCorrect"`
	Points     int    `json:"points"`
	Position   int    `json:"position,omitempty"`
}

// revealImage runs the one-time-per-image reveal: it freezes the image,
// judges every locked answer in lock order and accumulates player scores,
// all inside a single transaction. A concurrent or repeated reveal of the
// same image fails on the is_played re-check without touching any score.
func (s *Server) revealImage(imageID uint) (string, []scoringResult, error) {
	scoring := s.scoringConfig(s.db)

	var (
		game          *db.Game
		correctAnswer string
		results       []scoringResult
	)
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

		var gameImage db.GameImage
		err = tx.Where("game_id = ? AND image_id = ?", game.ID, imageID).First(&gameImage).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errImageNotFound
			}
			return err
		}
		if gameImage.IsPlayed {
			return errImageAlreadyPlayed
		}
		correctAnswer = gameImage.CorrectAnswer

		now := time.Now().UTC()
		if err := ensureImageState(tx, game.ID, imageID, now); err != nil {
			return err
		}
		var state db.ImageState
		if err := tx.Where("game_id = ? AND image_id = ?", game.ID, imageID).First(&state).Error; err != nil {
			return err
		}
		state.RevealCount++
		state.EndedAt = &now
		if err := tx.Save(&state).Error; err != nil {
			return err
		}

		gameImage.IsPlayed = true
		if err := tx.Save(&gameImage).Error; err != nil {
			return err
		}

		var answers []db.Answer
		err = tx.Where("image_id = ? AND player_id IN (SELECT id FROM players WHERE game_id = ?)", imageID, game.ID).
			Order("locked_at ASC").
			Order("id ASC").
			Find(&answers).Error
		if err != nil {
			return err
		}

		locks := make([]lockedAnswer, 0, len(answers))
		texts := make(map[uint]string, len(answers))
		for _, answer := range answers {
			locks = append(locks, lockedAnswer{
				AnswerID: answer.ID,
				PlayerID: answer.PlayerID,
				Text:     answer.Text,
				LockedAt: answer.LockedAt,
			})
			texts[answer.ID] = answer.Text
		}
		scored := scoreAnswers(correctAnswer, locks, state.RevealCount, state.StartedAt.UnixMilli(), scoring)

		names := make(map[string]string)
		var players []db.Player
		if err := tx.Where("game_id = ?", game.ID).Find(&players).Error; err != nil {
			return err
		}
		for _, player := range players {
			names[player.ID] = player.Name
		}

		results = make([]scoringResult, 0, len(scored))
		for _, item := range scored {
			isCorrect := item.IsCorrect
			err := tx.Model(&db.Answer{}).Where("id = ?", item.AnswerID).Updates(map[string]any{
				"is_correct":    isCorrect,
				"points_earned": item.Points,
			}).Error
			if err != nil {
				return err
			}
			// Scores accumulate; they are never recomputed from history.
			if item.Points > 0 {
				err := tx.Model(&db.Player{}).Where("id = ?", item.PlayerID).
					Update("score", gorm.Expr("score + ?", item.Points)).Error
				if err != nil {
					return err
				}
			}
			results = append(results, scoringResult{
				PlayerID:   item.PlayerID,
				PlayerName: names[item.PlayerID],
				Answer:     texts[item.AnswerID],
				IsCorrect:  item.IsCorrect,
				Points:     item.Points,
				Position:   item.Position,
			})
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	s.recordEvent(&game.ID, nil, "image_revealed", EventPayload{ImageID: imageID, Count: len(results)})
	s.logger.Info("image revealed", "game_id", game.ID, "image_id", imageID, "answers", len(results))
	s.broadcastLeaderboard(game.ID)
	s.deliverRevealPayloads(imageID, correctAnswer, results)
	return correctAnswer, results, nil
}

// deliverRevealPayloads sends each connected player their own verdict, then
// a generic announcement to the player room as a fallback for sessions that
// could not be resolved individually.
func (s *Server) deliverRevealPayloads(imageID uint, correctAnswer string, results []scoringResult) {
	delivered := make(map[string]struct{}, len(results))
	for _, result := range results {
		c := s.boundClient(result.PlayerID)
		if c == nil {
			continue
		}
		delivered[result.PlayerID] = struct{}{}
		c.send(eventMessage{Type: evtImageRevealed, Data: map[string]any{
			"imageId":       imageID,
			"correctAnswer": correctAnswer,
			"roundPoints":   result.Points,
			"wasCorrect":    result.IsCorrect,
			"position":      result.Position,
		}})
	}
	s.hub.Broadcast(roomBeamer, eventMessage{Type: evtImageRevealed, Data: map[string]any{
		"imageId":       imageID,
		"correctAnswer": correctAnswer,
	}})
	for _, c := range s.hub.members(roomPlayers) {
		if c.playerID != "" {
			if _, ok := delivered[c.playerID]; ok {
				continue
			}
		}
		c.send(eventMessage{Type: evtImageRevealed, Data: map[string]any{
			"imageId":       imageID,
			"correctAnswer": correctAnswer,
		}})
	}
}
