// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/hoofbeat/paddock/internal/models"
)

// wsMessage is the envelope every client command arrives in.
type wsMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// SessionWSHandler upgrades /session/ws/{session_id} and runs the read loop
// for the connected player.
func SessionWSHandler(ss *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/session/ws/")
		sessionID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		s, ok := ss.Sessions.Get(sessionID)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}
		if !s.HasPlayer(userID) {
			http.Error(w, "not a player in this session", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:       []string{"paddock"},
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Warnf("websocket accept failed for session %s: %v", sessionID, err)
			return
		}

		reg := ss.registry(sessionID)
		reg.set(userID, c)
		s.HandleReconnect(userID, c)

		defer func() {
			reg.remove(userID)
			s.HandleDisconnect(userID)
			c.Close(websocket.StatusNormalClosure, "closing")
		}()

		ctx := r.Context()
		for {
			typ, data, err := c.Read(ctx)
			if err != nil {
				log.Infof("session %s: player %s read loop ended: %v", sessionID, userID, err)
				return
			}
			if typ != websocket.MessageText {
				continue
			}

			var msg wsMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warnf("session %s: malformed message from %s: %v", sessionID, userID, err)
				continue
			}

			switch msg.Type {
			case "start_session":
				s.StartDay()
			case "ping":
				writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				_ = c.Write(writeCtx, websocket.MessageText, []byte(`{"type":"pong"}`))
				cancel()
			case "reset_session":
				s.Reset()
				ss.Sessions.Delete(sessionID)
				ss.dropRegistry(sessionID)
				c.Close(websocket.StatusNormalClosure, "session reset")
				return
			default:
				s.Mu.Lock()
				s.HandleAction(userID, models.SessionAction{
					ActionType: msg.Type,
					Payload:    msg.Payload,
				})
				s.Mu.Unlock()
			}
		}
	}
}
