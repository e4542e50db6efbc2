package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

type client struct {
	id   string
	role string
	conn *websocket.Conn

	// playerID is bound by player:join / player:reconnect and only touched
	// from the connection's own read loop.
	playerID string

	mu sync.Mutex
}

func (c *client) send(payload any) {
	if c == nil || c.conn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteJSON(payload)
}

type eventMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// roomHub owns all room membership. Connections enter and leave rooms only
// through Join/Leave; broadcasts query the index under the same lock.
type roomHub struct {
	mu    sync.Mutex
	rooms map[string]map[string]*client
}

func newRoomHub() *roomHub {
	return &roomHub{
		rooms: map[string]map[string]*client{
			roomAdmin:   make(map[string]*client),
			roomBeamer:  make(map[string]*client),
			roomPlayers: make(map[string]*client),
		},
	}
}

func (h *roomHub) Join(room string, c *client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*client)
		h.rooms[room] = members
	}
	members[c.id] = c
}

func (h *roomHub) Leave(room string, c *client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], c.id)
}

func (h *roomHub) LeaveAll(c *client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, members := range h.rooms {
		delete(members, c.id)
	}
}

func (h *roomHub) InRoom(room, clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[room][clientID]
	return ok
}

func (h *roomHub) Count(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *roomHub) members(rooms ...string) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[string]struct{})
	list := make([]*client, 0)
	for _, room := range rooms {
		for id, c := range h.rooms[room] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			list = append(list, c)
		}
	}
	return list
}

func (h *roomHub) Broadcast(room string, payload any) {
	for _, c := range h.members(room) {
		c.send(payload)
	}
}

func (h *roomHub) BroadcastAll(payload any) {
	for _, c := range h.members(roomAdmin, roomBeamer, roomPlayers) {
		c.send(payload)
	}
}
