package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
}

// ChangeEvent tells a client a table changed. Clients treat it as an
// invalidate-and-refetch signal, not an incremental patch.
type ChangeEvent struct {
	Kind  string `json:"kind"`
	Table string `json:"table"`
	Event string `json:"event"` // "INSERT" | "UPDATE" | "DELETE" | "*"
}

const defaultChangeDebounce = 300 * time.Millisecond

type RealtimeHub struct {
	mu       sync.Mutex
	clients  map[uint]map[*WSClient]struct{}
	debounce time.Duration
	pending  map[string]*time.Timer
}

func NewRealtimeHub() *RealtimeHub {
	return NewRealtimeHubWithDebounce(defaultChangeDebounce)
}

func NewRealtimeHubWithDebounce(d time.Duration) *RealtimeHub {
	return &RealtimeHub{
		clients:  make(map[uint]map[*WSClient]struct{}),
		debounce: d,
		pending:  make(map[string]*time.Timer),
	}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// NotifyChange coalesces bursts per (user, table): a run of remote
// writes produces one trailing invalidation instead of a re-fetch storm.
func (h *RealtimeHub) NotifyChange(userID uint, table, event string) {
	key := fmt.Sprintf("%d:%s", userID, table)
	h.mu.Lock()
	if t, ok := h.pending[key]; ok {
		t.Stop()
	}
	h.pending[key] = time.AfterFunc(h.debounce, func() {
		h.mu.Lock()
		delete(h.pending, key)
		h.mu.Unlock()
		h.Broadcast(userID, ChangeEvent{Kind: "table.changed", Table: table, Event: event})
	})
	h.mu.Unlock()
}

func (h *RealtimeHub) Broadcast(userID uint, payload any) {
	msg, _ := json.Marshal(payload)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
