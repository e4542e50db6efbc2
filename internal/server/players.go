package server

import (
	"context"
	"errors"
	"time"

	"beamer-quiz/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// joinPlayer creates a player in the active game. Joining is allowed in the
// lobby and mid-game; only an ended (or missing) game rejects.
func (s *Server) joinPlayer(name string) (*db.Player, *db.Game, error) {
	validated, err := validateName(name)
	if err != nil {
		return nil, nil, err
	}
	game, err := s.activeGame(s.db)
	if err != nil {
		return nil, nil, err
	}
	if game == nil {
		return nil, nil, errNoActiveGame
	}

	var existing int64
	if err := s.db.Model(&db.Player{}).
		Where("game_id = ? AND LOWER(name) = LOWER(?)", game.ID, validated).
		Count(&existing).Error; err != nil {
		return nil, nil, err
	}
	if existing > 0 {
		return nil, nil, errNameTaken
	}

	now := time.Now().UTC()
	player := db.Player{
		ID:       uuid.NewString(),
		GameID:   game.ID,
		Name:     validated,
		IsActive: true,
		JoinedAt: now,
		LastSeen: now,
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, nil, err
	}
	s.recordEvent(&game.ID, &player.ID, "player_joined", EventPayload{PlayerName: player.Name})
	s.logger.Info("player joined", "game_id", game.ID, "player", player.Name)
	s.broadcastRoster(game.ID)
	return &player, game, nil
}

// reconnectPlayer restores a previously issued identity. Unknown ids are
// rejected so the client falls back to a fresh join.
func (s *Server) reconnectPlayer(playerID string) (*db.Player, error) {
	var player db.Player
	if err := s.db.Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPlayerNotFound
		}
		return nil, err
	}
	restored := !player.IsActive
	player.IsActive = true
	player.LastSeen = time.Now().UTC()
	if err := s.db.Save(&player).Error; err != nil {
		return nil, err
	}
	if restored {
		s.broadcastRoster(player.GameID)
	}
	return &player, nil
}

// touchPlayer refreshes last_seen. Keep-alives have no other effect.
func (s *Server) touchPlayer(playerID string) {
	if playerID == "" {
		return
	}
	err := s.db.Model(&db.Player{}).
		Where("id = ?", playerID).
		Update("last_seen", time.Now().UTC()).Error
	if err != nil {
		s.logger.Warn("keep-alive update failed", "player_id", playerID, "error", err)
	}
}

// leavePlayer is a voluntary leave: immediate deactivation, unlike the
// grace-window sweep after a dropped connection.
func (s *Server) leavePlayer(playerID string) error {
	var player db.Player
	if err := s.db.Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errPlayerNotFound
		}
		return err
	}
	player.IsActive = false
	player.LastSeen = time.Now().UTC()
	if err := s.db.Save(&player).Error; err != nil {
		return err
	}
	s.recordEvent(&player.GameID, &player.ID, "player_left", EventPayload{PlayerName: player.Name})
	s.broadcastRoster(player.GameID)
	s.broadcastLeaderboard(player.GameID)
	return nil
}

// purgePlayer is the explicit administrative hard delete, the only path
// that removes a player row and their answers.
func (s *Server) purgePlayer(playerID string) error {
	var player db.Player
	if err := s.db.Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errPlayerNotFound
		}
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("player_id = ?", playerID).Delete(&db.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Player{}, "id = ?", playerID).Error
	})
	if err != nil {
		return err
	}
	s.recordEvent(&player.GameID, &player.ID, "player_purged", EventPayload{PlayerName: player.Name})
	s.broadcastRoster(player.GameID)
	s.broadcastLeaderboard(player.GameID)
	return nil
}

// markDisconnected stamps last_seen when a connection drops. The player
// stays active through the grace window; the sweep reclaims stale sessions.
func (s *Server) markDisconnected(playerID string) {
	s.touchPlayer(playerID)
}

// RunSweeper periodically deactivates players whose keep-alives stopped.
// It shares the data store with request handling but never blocks it; the
// roster rebroadcast after a sweep is best-effort.
func (s *Server) RunSweeper(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(s.cfg.SweepTickSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepInactive(time.Now().UTC())
		}
	}
}

func (s *Server) sweepInactive(now time.Time) int {
	cutoff := now.Add(-time.Duration(s.cfg.GracePeriodSeconds) * time.Second)
	result := s.db.Model(&db.Player{}).
		Where("is_active = ? AND last_seen < ?", true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		s.logger.Error("liveness sweep failed", "error", result.Error)
		return 0
	}
	swept := int(result.RowsAffected)
	if swept > 0 {
		s.logger.Info("liveness sweep deactivated players", "count", swept)
		if game, err := s.activeGame(s.db); err == nil && game != nil {
			s.broadcastRoster(game.ID)
			s.broadcastLeaderboard(game.ID)
		}
	}
	return swept
}

func (s *Server) broadcastRoster(gameID uint) {
	var players []db.Player
	if err := s.db.Where("game_id = ?", gameID).Order("joined_at ASC").Find(&players).Error; err != nil {
		s.logger.Error("roster load failed", "game_id", gameID, "error", err)
		return
	}
	roster := make([]map[string]any, 0, len(players))
	for _, player := range players {
		roster = append(roster, map[string]any{
			"playerId": player.ID,
			"name":     player.Name,
			"score":    player.Score,
			"isActive": player.IsActive,
		})
	}
	s.hub.BroadcastAll(eventMessage{Type: evtRoster, Data: map[string]any{"players": roster}})
}
