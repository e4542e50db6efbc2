package server

import (
	"encoding/json"

	"beamer-quiz/internal/db"
)

// command is the tagged union carried over every connection. The dispatcher
// below enumerates the full set of legal commands; anything else is rejected
// through the ack, never silently dropped.
type command struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type ackMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func ackOK(requestID string, data any) ackMessage {
	return ackMessage{Type: "ack", RequestID: requestID, Success: true, Data: data}
}

func ackError(requestID, message string) ackMessage {
	return ackMessage{Type: "ack", RequestID: requestID, Success: false, Message: message}
}

type adminAuthPayload struct {
	PIN   string `json:"pin"`
	Token string `json:"token"`
}

type imagePayload struct {
	ImageID uint `json:"imageId"`
}

type resetPayload struct {
	Level string `json:"level"`
}

type spotlightPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius,omitempty"`
	Off    bool    `json:"off,omitempty"`
}

type settingsPayload struct {
	Settings map[string]string `json:"settings"`
}

type purgePayload struct {
	PlayerID string `json:"playerId"`
}

type joinPayload struct {
	Name string `json:"name"`
}

type reconnectPayload struct {
	PlayerID string `json:"playerId"`
}

type lockPayload struct {
	ImageID  uint   `json:"imageId"`
	Answer   string `json:"answer"`
	LockedAt int64  `json:"lockedAt"`
}

func (s *Server) dispatch(c *client, cmd command) {
	switch cmd.Type {
	case cmdPing:
		s.touchPlayer(c.playerID)
		c.send(eventMessage{Type: evtPong})
	case cmdAdminAuth:
		s.handleAdminAuth(c, cmd)
	case cmdAdminStartGame:
		s.handleAdminStartGame(c, cmd)
	case cmdAdminNextImage:
		s.handleAdminNextImage(c, cmd)
	case cmdAdminRevealImage:
		s.handleAdminRevealImage(c, cmd)
	case cmdAdminEndGame:
		s.handleAdminEndGame(c, cmd)
	case cmdAdminReset:
		s.handleAdminReset(c, cmd)
	case cmdAdminSpotlight:
		s.handleAdminSpotlight(c, cmd)
	case cmdAdminGetSettings:
		s.handleAdminGetSettings(c, cmd)
	case cmdAdminUpdateSettings:
		s.handleAdminUpdateSettings(c, cmd)
	case cmdAdminPurgePlayer:
		s.handleAdminPurgePlayer(c, cmd)
	case cmdPlayerJoin:
		s.handlePlayerJoin(c, cmd)
	case cmdPlayerReconnect:
		s.handlePlayerReconnect(c, cmd)
	case cmdPlayerLockAnswer:
		s.handlePlayerLockAnswer(c, cmd)
	case cmdPlayerLeave:
		s.handlePlayerLeave(c, cmd)
	default:
		c.send(ackError(cmd.RequestID, "unknown command"))
	}
}

func (s *Server) ackFailure(c *client, cmd command, err error) {
	message, known := failureMessage(err)
	if !known {
		s.logger.Error("command failed", "command", cmd.Type, "error", err)
	}
	c.send(ackError(cmd.RequestID, message))
}

func (s *Server) handleAdminAuth(c *client, cmd command) {
	var payload adminAuthPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	if c.role != roleAdmin || !s.checkToken(payload.Token) {
		s.denyCommand(c, cmd)
		return
	}
	if s.protectionEnabled() {
		if err := s.verifyPIN(payload.PIN); err != nil {
			s.logger.Warn("admin pin rejected", "error", err)
			s.recordEvent(nil, nil, "command_denied", EventPayload{Command: cmd.Type})
			c.send(ackError(cmd.RequestID, "invalid"))
			return
		}
	}
	s.admitAdmin(c)
	c.send(ackOK(cmd.RequestID, nil))
}

func (s *Server) handleAdminStartGame(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload imagePayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	game, err := s.startGame(payload.ImageID)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, map[string]any{"phase": game.Status, "imageId": payload.ImageID}))
}

func (s *Server) handleAdminNextImage(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload imagePayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	game, err := s.nextImage(payload.ImageID)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, map[string]any{"phase": game.Status, "imageId": payload.ImageID}))
}

func (s *Server) handleAdminRevealImage(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload imagePayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	correctAnswer, results, err := s.revealImage(payload.ImageID)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, map[string]any{
		"correctAnswer":  correctAnswer,
		"scoringResults": results,
	}))
}

func (s *Server) handleAdminEndGame(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	game, err := s.endGame()
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, map[string]any{"phase": game.Status}))
}

func (s *Server) handleAdminReset(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload resetPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	game, err := s.resetGame(payload.Level)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, map[string]any{"phase": game.Status, "level": payload.Level}))
}

// Spotlight frames are presentation-only: admin to beamer, one way, no ack.
func (s *Server) handleAdminSpotlight(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload spotlightPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		return
	}
	if payload.Radius <= 0 && !payload.Off {
		payload.Radius = float64(settingInt(s.db, settingSpotlightRadius, defaultSpotlightRadius))
	}
	s.hub.Broadcast(roomBeamer, eventMessage{Type: evtSpotlight, Data: payload})
}

func (s *Server) handleAdminGetSettings(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var records []db.Setting
	if err := s.db.Find(&records).Error; err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	settings := make(map[string]string, len(records))
	for _, record := range records {
		if record.Key == settingProtectionPIN {
			continue
		}
		settings[record.Key] = record.Value
	}
	c.send(ackOK(cmd.RequestID, map[string]any{"settings": settings}))
}

func (s *Server) handleAdminUpdateSettings(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload settingsPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	wasProtected := s.protectionEnabled()
	for key, value := range payload.Settings {
		if _, ok := updatableSettings[key]; !ok {
			c.send(ackError(cmd.RequestID, "unknown setting: "+key))
			return
		}
		if err := db.SetSetting(s.db, key, value); err != nil {
			s.ackFailure(c, cmd, err)
			return
		}
	}
	s.recordEvent(nil, nil, "settings_updated", EventPayload{Count: len(payload.Settings)})
	c.send(ackOK(cmd.RequestID, nil))
	// Turning protection on revokes every admitted session, including the
	// one that flipped the switch.
	if !wasProtected && s.protectionEnabled() {
		s.revokeAdmins()
	}
}

func (s *Server) handleAdminPurgePlayer(c *client, cmd command) {
	if err := s.requireAdmin(c); err != nil {
		s.denyCommand(c, cmd)
		return
	}
	var payload purgePayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	if err := s.purgePlayer(payload.PlayerID); err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, nil))
}

func (s *Server) handlePlayerJoin(c *client, cmd command) {
	var payload joinPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	player, game, err := s.joinPlayer(payload.Name)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.playerID = player.ID
	s.bindPlayer(player.ID, c)
	c.send(ackOK(cmd.RequestID, map[string]any{
		"playerId":   player.ID,
		"score":      player.Score,
		"gameStatus": game.Status,
	}))
}

func (s *Server) handlePlayerReconnect(c *client, cmd command) {
	var payload reconnectPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	player, err := s.reconnectPlayer(payload.PlayerID)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.playerID = player.ID
	s.bindPlayer(player.ID, c)
	data := map[string]any{
		"playerId": player.ID,
		"score":    player.Score,
	}
	if game, gameErr := s.activeGame(s.db); gameErr == nil && game != nil {
		data["gameStatus"] = game.Status
		if game.CurrentImageID != nil {
			data["imageId"] = *game.CurrentImageID
		}
	}
	c.send(ackOK(cmd.RequestID, data))
}

func (s *Server) handlePlayerLockAnswer(c *client, cmd command) {
	if c.playerID == "" {
		c.send(ackError(cmd.RequestID, "join first"))
		return
	}
	var payload lockPayload
	if err := json.Unmarshal(cmd.Data, &payload); err != nil {
		c.send(ackError(cmd.RequestID, "malformed payload"))
		return
	}
	answer, err := s.lockAnswer(c.playerID, payload.ImageID, payload.Answer, payload.LockedAt)
	if err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	c.send(ackOK(cmd.RequestID, map[string]any{
		"answer":   answer.Text,
		"lockedAt": answer.LockedAt,
	}))
}

func (s *Server) handlePlayerLeave(c *client, cmd command) {
	if c.playerID == "" {
		c.send(ackError(cmd.RequestID, "join first"))
		return
	}
	if err := s.leavePlayer(c.playerID); err != nil {
		s.ackFailure(c, cmd, err)
		return
	}
	s.unbindPlayer(c.playerID, c)
	c.playerID = ""
	c.send(ackOK(cmd.RequestID, nil))
}
