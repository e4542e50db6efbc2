package server

import (
	"crypto/subtle"
	"strings"
	"time"

	"beamer-quiz/internal/db"
)

// checkToken verifies the possession factor: the long-lived URL token issued
// at server start. Required on every admin connection attempt.
func (s *Server) checkToken(token string) bool {
	provided := strings.TrimSpace(token)
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.token)) == 1
}

// protectionEnabled reads the toggle from the settings store on every call;
// authorization state is never cached across commands.
func (s *Server) protectionEnabled() bool {
	return settingBool(s.db, settingProtectionEnabled, false)
}

// verifyPIN checks the knowledge factor against the stored PIN and its
// optional auto-expiry. Callers learn only that the PIN was invalid, not why.
func (s *Server) verifyPIN(pin string) error {
	provided, err := validatePIN(pin)
	if err != nil {
		return err
	}
	expected := db.GetSetting(s.db, settingProtectionPIN, "")
	if expected == "" {
		return errInvalidPIN
	}
	if raw := db.GetSetting(s.db, settingProtectionExpiresAt, ""); raw != "" {
		expiry, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr == nil && time.Now().UTC().After(expiry) {
			return errPINExpired
		}
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		return errInvalidPIN
	}
	return nil
}

// requireAdmin is the capability check applied at the point of use of every
// mutating admin command. Room membership is consulted live, not at connect
// time, because authorization can be revoked mid-session.
func (s *Server) requireAdmin(c *client) error {
	if c == nil || c.role != roleAdmin {
		return errNotAuthorized
	}
	if !s.hub.InRoom(roomAdmin, c.id) {
		return errNotAuthorized
	}
	return nil
}

// revokeAdmins evicts every admitted admin session when protection turns on
// mid-session. Each session has to present the PIN before its next mutating
// command; requireAdmin catches anything sent in between.
func (s *Server) revokeAdmins() {
	members := s.hub.members(roomAdmin)
	for _, c := range members {
		s.hub.Leave(roomAdmin, c)
		c.send(eventMessage{Type: evtAuthRequired})
	}
	if len(members) > 0 {
		s.logger.Info("admin sessions revoked, pin required", "count", len(members))
		s.recordEvent(nil, nil, "admins_revoked", EventPayload{Count: len(members)})
		s.notifyAdminPresence()
	}
}

// denyCommand rejects an unauthorized attempt with a structured denial and
// an audit record naming the attempted command.
func (s *Server) denyCommand(c *client, cmd command) {
	role := "unknown"
	if c != nil {
		role = c.role
	}
	s.logger.Warn("unauthorized command rejected", "command", cmd.Type, "role", role)
	s.recordEvent(nil, nil, "command_denied", EventPayload{Command: cmd.Type, Reason: role})
	c.send(ackError(cmd.RequestID, "invalid"))
}
