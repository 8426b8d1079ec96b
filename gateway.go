package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

// serveDuelSocket upgrades a connection and pumps intents into the
// room the client joins. A connection belongs to at most one room at a
// time; intents arriving before a join, or after the room is gone, are
// dropped.
func serveDuelSocket(cfg *Config, dm *DuelManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   uuid.NewString(),
		}

		go client.writePump()
		client.readPump(dm)
	}
}

func (c *Client) readPump(dm *DuelManager) {
	defer func() {
		if s := dm.lookup(c); s != nil {
			s.deliverLeave(c)
		}
		dm.unbind(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join_room":
			roomID := strings.ToUpper(strings.TrimSpace(msg.RoomID))
			if !roomPattern.MatchString(roomID) {
				continue
			}
			if dm.lookup(c) != nil {
				continue
			}

			s := dm.session(roomID)

			select {
			case s.joins <- joinRequest{client: c, msg: msg}:
			case <-s.done:
			}

		case "set_theme", "set_secret_word", "submit_guess", "restart_game":
			s := dm.lookup(c)
			if s == nil {
				continue
			}

			select {
			case s.requests <- request{client: c, msg: msg}:
			case <-s.done:
			}

		case "leave_room":
			s := dm.lookup(c)
			if s == nil {
				continue
			}
			s.deliverLeave(c)
			dm.unbind(c)

		default:
			// ignore unknown types
		}
	}
}

// deliverLeave hands a departure to the session's run goroutine,
// falling through if the room is already being torn down.
func (s *DuelSession) deliverLeave(c *Client) {
	select {
	case s.unreg <- c:
	case <-s.done:
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// redirectNewDuel handles GET /duel by generating a fresh random room
// code (with server-side collision detection) and redirecting to
// /duel/:roomid.
func redirectNewDuel(cfg *Config, path string, dm *DuelManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		roomID := dm.newRoomCode()
		logf(cfg, "DUEL: Redirecting %s to new room %s", realIP(r), roomID)
		http.Redirect(w, r, cfg.prefix+path+"/"+roomID, http.StatusTemporaryRedirect)
	}
}

// serveRoomPage renders a minimal per-room landing page.
func serveRoomPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := strings.ToUpper(ps.ByName("roomid"))
		if !roomPattern.MatchString(roomID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(newPage("wordduel "+roomID, "Room "+roomID)))
	}
}

type RoomStatus struct {
	Exists      bool `json:"exists"`
	PlayerCount int  `json:"playerCount"`
}

// serveRoomStatus reports whether a room exists and its player count,
// for client-side validation of user-entered codes.
func serveRoomStatus(cfg *Config, dm *DuelManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := strings.ToUpper(strings.TrimSpace(ps.ByName("roomid")))

		status := RoomStatus{}
		if roomPattern.MatchString(roomID) {
			status.Exists, status.PlayerCount = dm.status(roomID)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(status); err != nil {
			logf(cfg, "DUEL: Failed to write room status: %v", err)
		}
	}
}

// registerDuelGame sets up routes so that:
//   - $path                  → redirects to a new random room (6-letter code)
//   - $path/:roomid          → per-room landing page
//   - $path/:roomid/qr       → PNG QR code for that room URL
//   - /ws                    → websocket shared by all rooms
//   - /room-status/:roomid   → room existence/occupancy JSON
func registerDuelGame(cfg *Config, path string, mux *httprouter.Router) {
	dm := newDuelManager(cfg)

	mux.GET(cfg.prefix+path, redirectNewDuel(cfg, path, dm))

	mux.GET(cfg.prefix+path+"/:roomid", serveRoomPage(cfg))

	mux.GET(cfg.prefix+path+"/:roomid/qr", qrHandler)

	mux.GET(cfg.prefix+"/ws", serveDuelSocket(cfg, dm))

	mux.GET(cfg.prefix+"/room-status/:roomid", serveRoomStatus(cfg, dm))
}
