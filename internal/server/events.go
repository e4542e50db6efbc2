package server

import (
	"encoding/json"
	"time"

	"beamer-quiz/internal/db"
)

type EventPayload struct {
	Command    string `json:"command,omitempty"`
	PlayerName string `json:"player,omitempty"`
	ImageID    uint   `json:"image_id,omitempty"`
	Phase      string `json:"phase,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Level      string `json:"level,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// recordEvent appends an audit row. Audit failures are logged, never
// surfaced to the caller.
func (s *Server) recordEvent(gameID *uint, playerID *string, eventType string, payload EventPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("event payload marshal failed", "type", eventType, "error", err)
		return
	}
	record := db.Event{
		GameID:    gameID,
		PlayerID:  playerID,
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.logger.Error("event record failed", "type", eventType, "error", err)
	}
}
