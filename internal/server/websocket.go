package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const presenceSettleDelay = 500 * time.Millisecond

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	switch role {
	case roleAdmin, roleBeamer, rolePlayer:
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	if role == roleAdmin && !s.checkToken(r.URL.Query().Get("token")) {
		s.logger.Warn("admin connection rejected", "remote", r.RemoteAddr)
		s.recordEvent(nil, nil, "command_denied", EventPayload{Command: "admin:connect"})
		http.Error(w, "invalid", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), role: role, conn: conn}
	s.logger.Info("ws connected", "role", role, "remote", r.RemoteAddr)

	switch role {
	case rolePlayer:
		s.hub.Join(roomPlayers, c)
	case roleBeamer:
		s.hub.Join(roomBeamer, c)
		s.notifyBeamerStatus()
	case roleAdmin:
		// The token admits the socket; admin room membership waits for the
		// PIN when protection is on.
		if s.protectionEnabled() {
			c.send(eventMessage{Type: evtAuthRequired})
		} else {
			s.admitAdmin(c)
		}
	}
	go s.readLoop(c)
}

// admitAdmin grants admin-room capability and pushes the initial state.
// Multiple concurrent admins are allowed but surfaced as a warning.
func (s *Server) admitAdmin(c *client) {
	s.hub.Join(roomAdmin, c)
	c.send(eventMessage{Type: evtAdminState, Data: s.adminState()})
	s.notifyAdminPresence()
	if count := s.hub.Count(roomAdmin); count > 1 {
		s.hub.Broadcast(roomAdmin, eventMessage{Type: evtWarning, Data: map[string]any{
			"message": "multiple admin sessions connected",
			"count":   count,
		}})
	}
}

func (s *Server) adminState() map[string]any {
	state := map[string]any{
		"beamerConnected": s.hub.Count(roomBeamer) > 0,
		"adminSessions":   s.hub.Count(roomAdmin),
	}
	game, err := s.activeGame(s.db)
	if err != nil || game == nil {
		return state
	}
	state["gameId"] = game.ID
	state["phase"] = game.Status
	if game.CurrentImageID != nil {
		state["imageId"] = *game.CurrentImageID
	}
	if entries, total, lbErr := s.leaderboard(game.ID); lbErr == nil {
		state["topPlayers"] = entries
		state["totalPlayers"] = total
	}
	return state
}

func (s *Server) readLoop(c *client) {
	defer s.dropClient(c)
	for {
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			s.logger.Info("ws disconnected", "role", c.role, "error", err)
			return
		}
		s.dispatch(c, cmd)
	}
}

// dropClient tears down a connection. A player row is only stamped, not
// deactivated: the grace window decides whether the drop was temporary.
func (s *Server) dropClient(c *client) {
	s.hub.LeaveAll(c)
	_ = c.conn.Close()
	if c.playerID != "" {
		s.markDisconnected(c.playerID)
		s.unbindPlayer(c.playerID, c)
	}
	switch c.role {
	case roleAdmin:
		s.notifyAdminPresence()
	case roleBeamer:
		s.notifyBeamerStatus()
	}
}

func (s *Server) notifyAdminPresence() {
	s.debounce("admin-presence", presenceSettleDelay, func() {
		s.hub.Broadcast(roomAdmin, eventMessage{Type: evtSessionCount, Data: map[string]any{
			"count": s.hub.Count(roomAdmin),
		}})
	})
}

func (s *Server) notifyBeamerStatus() {
	s.debounce("beamer-status", presenceSettleDelay, func() {
		s.hub.Broadcast(roomAdmin, eventMessage{Type: evtBeamerStatus, Data: map[string]any{
			"connected": s.hub.Count(roomBeamer) > 0,
		}})
	})
}
