package main

import (
	"crypto/rand"
	"regexp"
	"sync"
	"time"
)

var roomPattern = regexp.MustCompile(`^[A-Z]{6}$`)

const roomCodeLength = 6

// DuelManager holds a set of sessions keyed by room code, so each room
// is its own isolated game, plus the membership of every connection.
type DuelManager struct {
	mu       sync.Mutex
	cfg      *Config
	sessions map[string]*DuelSession
	conns    map[*Client]*DuelSession
}

func newDuelManager(cfg *Config) *DuelManager {
	dm := &DuelManager{
		cfg:      cfg,
		sessions: make(map[string]*DuelSession),
		conns:    make(map[*Client]*DuelSession),
	}
	if cfg.sessionTimeout > 0 {
		go dm.reaperLoop()
	}
	return dm
}

// session returns the room's session, creating it lazily on first join.
func (dm *DuelManager) session(roomID string) *DuelSession {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if s, ok := dm.sessions[roomID]; ok {
		return s
	}

	s := newDuelSession(dm, roomID)
	dm.sessions[roomID] = s
	go s.run(dm.cfg)

	logf(dm.cfg, "DUEL: Created room %s", roomID)

	return s
}

func (dm *DuelManager) lookup(c *Client) *DuelSession {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	return dm.conns[c]
}

func (dm *DuelManager) bind(c *Client, s *DuelSession) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.conns[c] = s
}

func (dm *DuelManager) unbind(c *Client) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	delete(dm.conns, c)
}

// remove deletes a room and stops its run goroutine. Safe to call more
// than once for the same room (delayed cleanup and the reaper can both
// reach for it).
func (dm *DuelManager) remove(roomID string) {
	dm.mu.Lock()

	s, ok := dm.sessions[roomID]
	if !ok {
		dm.mu.Unlock()
		return
	}

	delete(dm.sessions, roomID)
	for c, bound := range dm.conns {
		if bound == s {
			delete(dm.conns, c)
		}
	}

	dm.mu.Unlock()

	close(s.done)
	logf(dm.cfg, "DUEL: Removed room %s", roomID)
}

// status reports whether a room exists and how many players it holds.
func (dm *DuelManager) status(roomID string) (bool, int) {
	dm.mu.Lock()
	s, ok := dm.sessions[roomID]
	dm.mu.Unlock()

	if !ok {
		return false, 0
	}
	return true, s.playerCount()
}

// newRoomCode generates a crypto-random 6-letter room code and ensures
// it doesn't collide with existing rooms.
func (dm *DuelManager) newRoomCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		code := string(out)

		dm.mu.Lock()
		_, exists := dm.sessions[code]
		dm.mu.Unlock()

		if !exists {
			return code
		}
	}
}

// reaperLoop periodically removes sessions that have been idle longer
// than the configured session timeout.
func (dm *DuelManager) reaperLoop() {
	ticker := time.NewTicker(dm.cfg.sessionTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-dm.cfg.sessionTimeout)

		dm.mu.Lock()
		stale := make([]*DuelSession, 0)
		for id, s := range dm.sessions {
			if s.idle().Before(cutoff) {
				delete(dm.sessions, id)
				stale = append(stale, s)
			}
		}
		for c, bound := range dm.conns {
			for _, s := range stale {
				if bound == s {
					delete(dm.conns, c)
				}
			}
		}
		dm.mu.Unlock()

		for _, s := range stale {
			close(s.done)
			go s.closeAll()
		}
	}
}
