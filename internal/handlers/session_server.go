// internal/handlers/session_server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/hoofbeat/paddock/internal/database"
	"github.com/hoofbeat/paddock/internal/game"
	"github.com/hoofbeat/paddock/internal/models"
)

// SessionServer owns the live sessions and the per-session client
// connection registries. The registry is deliberately separate from the
// session state so broadcast callbacks never touch the session mutex.
type SessionServer struct {
	Sessions *game.SessionStore

	mu    sync.Mutex
	conns map[uuid.UUID]*connRegistry // keyed by session ID
}

// connRegistry tracks the WebSocket connections attached to one session.
type connRegistry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

func NewSessionServer() *SessionServer {
	return &SessionServer{
		Sessions: game.NewSessionStore(),
		conns:    make(map[uuid.UUID]*connRegistry),
	}
}

func (ss *SessionServer) registry(sessionID uuid.UUID) *connRegistry {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	reg, ok := ss.conns[sessionID]
	if !ok {
		reg = &connRegistry{conns: make(map[uuid.UUID]*websocket.Conn)}
		ss.conns[sessionID] = reg
	}
	return reg
}

func (ss *SessionServer) dropRegistry(sessionID uuid.UUID) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.conns, sessionID)
}

func (reg *connRegistry) set(playerID uuid.UUID, c *websocket.Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.conns[playerID] = c
}

func (reg *connRegistry) remove(playerID uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.conns, playerID)
}

func (reg *connRegistry) snapshotConns() map[uuid.UUID]*websocket.Conn {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make(map[uuid.UUID]*websocket.Conn, len(reg.conns))
	for id, c := range reg.conns {
		out[id] = c
	}
	return out
}

// NewSessionForUser builds a session seated with the given human user and
// wires broadcasting and day-end persistence. The day itself starts when the
// client sends start_session over its WS connection.
func (ss *SessionServer) NewSessionForUser(userID uuid.UUID, username string, mode game.Mode) *game.Session {
	s := game.NewSession(mode)

	human := &models.Player{
		ID:        userID,
		Name:      username,
		IsHuman:   true,
		Connected: false,
	}
	s.AddPlayer(human)

	reg := ss.registry(s.ID)
	s.BroadcastFn = makeBroadcastFn(reg, s.ID)
	s.BroadcastToPlayerFn = makeBroadcastToPlayerFn(reg, s.ID)

	s.OnDayEnd = func(sessionID uuid.UUID, humanID uuid.UUID, standings []game.Standing) {
		won := false
		var finalBalance float64
		for _, st := range standings {
			if st.PlayerID == humanID {
				won = st.Rank == 1 && !st.Eliminated
				finalBalance = st.Balance
				break
			}
		}
		if database.DB == nil {
			return
		}
		dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.RecordDayResult(dbCtx, humanID, string(mode), won, finalBalance); err != nil {
			log.Errorf("failed to record day result for session %s: %v", sessionID, err)
		}
	}

	ss.Sessions.Add(s)
	return s
}

// makeBroadcastFn returns a broadcast function that fans an event out to
// every registered connection. It is called while the session lock is held,
// so it only reads the registry and writes asynchronously.
func makeBroadcastFn(reg *connRegistry, sessionID uuid.UUID) func(ev game.SessionEvent) {
	return func(ev game.SessionEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Errorf("failed to marshal event %s for session %s: %v", ev.Type, sessionID, err)
			return
		}
		go func(targets map[uuid.UUID]*websocket.Conn) {
			for playerID, c := range targets {
				writeWithTimeout(c, data, playerID, sessionID)
			}
		}(reg.snapshotConns())
	}
}

// makeBroadcastToPlayerFn returns a single-target variant.
func makeBroadcastToPlayerFn(reg *connRegistry, sessionID uuid.UUID) func(playerID uuid.UUID, ev game.SessionEvent) {
	return func(playerID uuid.UUID, ev game.SessionEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Errorf("failed to marshal private event %s for session %s: %v", ev.Type, sessionID, err)
			return
		}
		targets := reg.snapshotConns()
		c, ok := targets[playerID]
		if !ok {
			return
		}
		go writeWithTimeout(c, data, playerID, sessionID)
	}
}

func writeWithTimeout(c *websocket.Conn, data []byte, playerID, sessionID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		log.Warnf("failed to write to player %s in session %s: %v", playerID, sessionID, err)
	}
}

type createSessionRequest struct {
	Mode string `json:"mode"` // "half" or "full"
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// CreateSessionHandler starts a new day for the requesting user.
func CreateSessionHandler(ss *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		mode := game.ModeHalfDay
		if req.Mode == string(game.ModeFullDay) {
			mode = game.ModeFullDay
		}

		username := "Guest"
		if database.DB != nil {
			if u, err := database.GetUserByID(r.Context(), userID); err == nil {
				username = u.Username
			}
		}

		s := ss.NewSessionForUser(userID, username, mode)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(createSessionResponse{SessionID: s.ID.String()})
	}
}
