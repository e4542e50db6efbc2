package server

import (
	"beamer-quiz/internal/db"
)

type leaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// leaderboard ranks a game's players with RANK() semantics: ties share a
// rank and the next distinct score skips past them. Join order breaks the
// display ordering of tied players.
func (s *Server) leaderboard(gameID uint) ([]leaderboardEntry, int, error) {
	var players []db.Player
	err := s.db.Where("game_id = ?", gameID).
		Order("score DESC").
		Order("joined_at ASC").
		Find(&players).Error
	if err != nil {
		return nil, 0, err
	}
	entries := make([]leaderboardEntry, 0, len(players))
	rank := 0
	prevScore := 0
	for i, player := range players {
		if i == 0 || player.Score != prevScore {
			rank = i + 1
			prevScore = player.Score
		}
		entries = append(entries, leaderboardEntry{
			PlayerID: player.ID,
			Name:     player.Name,
			Score:    player.Score,
			Rank:     rank,
		})
	}
	return entries, len(players), nil
}

// broadcastLeaderboard fans the ranked snapshot out to every room. A failed
// computation is logged and the broadcast simply not sent.
func (s *Server) broadcastLeaderboard(gameID uint) {
	entries, total, err := s.leaderboard(gameID)
	if err != nil {
		s.logger.Error("leaderboard computation failed", "game_id", gameID, "error", err)
		return
	}
	s.hub.BroadcastAll(eventMessage{Type: evtLeaderboard, Data: map[string]any{
		"topPlayers":   entries,
		"totalPlayers": total,
	}})
}
