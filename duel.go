// Wordduel
//
// Two players share a room code, each picks a secret word from a themed
// option list, then both guess the opponent's word simultaneously over
// up to six rounds. A round resolves once every unsolved player has
// submitted, grading each guess against the opponent's word with
// Wordle-style per-letter feedback. Solving earlier scores higher, and
// scores accumulate across consecutive games in the same room.
//
// Features:
// - One websocket endpoint at /ws; rooms are joined by message
// - Room codes are 6 uppercase letters, client-generated or user-entered
// - First joiner may claim the room as creator and pick the theme
// - Per-player word option lists, independently sampled per theme
// - Simultaneous submission: a round waits for all unsolved players
// - Finished or abandoned rooms are deleted after a grace period
// - In-browser QR button to share the current room, backed by go-qrcode

package main

import (
	"regexp"
	"sync"
	"time"
)

var wordPattern = regexp.MustCompile(`^[A-Z]{5}$`)

const maxRounds = 6

// Session phases, in wire form.
const (
	phaseSetup   = "setup"
	phaseActive  = "game"
	phaseResults = "results"
)

// Player holds the data we store server-side for one room member.
type Player struct {
	ID              string
	Name            string
	SecretWord      string
	Guesses         []string
	Score           int
	CumulativeScore int
	HasWon          bool
	IsCreator       bool
}

// Messages coming from clients
type ClientMessage struct {
	Type       string `json:"type"`                 // "join_room", "set_theme", "set_secret_word", "submit_guess", "restart_game", "leave_room"
	RoomID     string `json:"roomId,omitempty"`     // join_room
	PlayerName string `json:"playerName,omitempty"` // join_room
	IsCreator  bool   `json:"isCreator,omitempty"`  // join_room
	ThemeIndex *int   `json:"themeIndex,omitempty"` // join_room / set_theme
	Word       string `json:"word,omitempty"`       // set_secret_word
	Guess      string `json:"guess,omitempty"`      // submit_guess
}

// PlayerView is the per-player slice of a game state snapshot. The
// secret word is included once set, mirroring the upstream behavior
// that lets clients render an "opponent is ready" state.
type PlayerView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Score           int    `json:"score"`
	HasWon          bool   `json:"hasWon"`
	GuessCount      int    `json:"guessCount"`
	IsCreator       bool   `json:"isCreator"`
	CumulativeScore int    `json:"cumulativeScore"`
	SecretWord      string `json:"secretWord,omitempty"`
}

// GameStateMessage is the broadcast snapshot of a whole session.
type GameStateMessage struct {
	Type                string       `json:"type"` // "game_state_update"
	RoomID              string       `json:"roomId"`
	Theme               Theme        `json:"theme"`
	ThemeIndex          int          `json:"themeIndex"`
	Phase               string       `json:"phase"`
	Round               int          `json:"round"`
	MaxRounds           int          `json:"maxRounds"`
	Players             []PlayerView `json:"players"`
	CurrentRoundGuesses int          `json:"currentRoundGuesses"`
	GameComplete        bool         `json:"gameComplete"`
}

// WordOptionsMessage is sent to a single client, never broadcast.
type WordOptionsMessage struct {
	Type        string   `json:"type"` // "word_options"
	WordOptions []string `json:"wordOptions"`
}

// GuessResult is one player's graded guess within a resolved round.
type GuessResult struct {
	PlayerID   string   `json:"playerId"`
	Guess      string   `json:"guess"`
	TargetWord string   `json:"targetWord"`
	IsCorrect  bool     `json:"isCorrect"`
	Feedback   []string `json:"feedback"`
}

// PlayerSummary accompanies round results with updated standings.
type PlayerSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Score           int    `json:"score"`
	HasWon          bool   `json:"hasWon"`
	GuessCount      int    `json:"guessCount"`
	CumulativeScore int    `json:"cumulativeScore"`
}

// RoundResultsMessage broadcasts the outcome of a resolved round.
type RoundResultsMessage struct {
	Type         string          `json:"type"` // "round_results"
	Round        int             `json:"round"`
	Results      []GuessResult   `json:"results"`
	GameComplete bool            `json:"gameComplete"`
	Players      []PlayerSummary `json:"players"`
}

// WaitingMessage tells a room the round is still collecting guesses.
type WaitingMessage struct {
	Type             string `json:"type"` // "waiting_for_opponent"
	SubmittedPlayers int    `json:"submittedPlayers"`
	TotalPlayers     int    `json:"totalPlayers"`
}

// PlayerDisconnectedMessage notifies remaining members of a departure.
type PlayerDisconnectedMessage struct {
	Type     string `json:"type"` // "player_disconnected"
	PlayerID string `json:"playerId"`
}

// InvalidGuessMessage is sent only to the offending client.
type InvalidGuessMessage struct {
	Type    string `json:"type"` // "invalid_guess"
	Message string `json:"message"`
}

type joinRequest struct {
	client *Client
	msg    ClientMessage
}

type request struct {
	client *Client
	msg    ClientMessage
}

// DuelSession owns all state for one room. Mutation happens only on the
// session's run goroutine; the mutex covers fields read from outside it
// (reaper, cleanup timer, room status endpoint).
type DuelSession struct {
	id  string
	mgr *DuelManager

	clients   map[*Client]bool
	players   map[string]*Player
	joinOrder []string
	creatorID string

	theme          Theme
	themeIndex     int
	phase          string
	round          int
	pendingGuesses map[string]string
	wordOptions    map[string][]string
	resolving      bool
	gameComplete   bool
	active         bool
	lastActivity   time.Time
	cleanupTimer   *time.Timer

	joins    chan joinRequest
	unreg    chan *Client
	requests chan request
	done     chan struct{}

	mu sync.RWMutex
}

func newDuelSession(mgr *DuelManager, roomID string) *DuelSession {
	theme, themeIndex := themeByIndex(0)
	return &DuelSession{
		id:             roomID,
		mgr:            mgr,
		clients:        make(map[*Client]bool),
		players:        make(map[string]*Player),
		theme:          theme,
		themeIndex:     themeIndex,
		phase:          phaseSetup,
		round:          1,
		pendingGuesses: make(map[string]string),
		wordOptions:    make(map[string][]string),
		active:         true,
		lastActivity:   time.Now(),
		joins:          make(chan joinRequest, 8),
		unreg:          make(chan *Client, 8),
		requests:       make(chan request, 8),
		done:           make(chan struct{}),
	}
}

func (s *DuelSession) run(cfg *Config) {
	for {
		select {
		case <-s.done:
			return

		case jr := <-s.joins:
			s.handleJoin(cfg, jr)

		case c := <-s.unreg:
			s.handleLeave(cfg, c)

		case req := <-s.requests:
			s.handleRequest(cfg, req)
		}
	}
}

// handleJoin processes "join_room" messages.
func (s *DuelSession) handleJoin(cfg *Config, jr joinRequest) {
	c := jr.client
	msg := jr.msg

	if msg.PlayerName == "" {
		return
	}

	s.mu.Lock()

	s.lastActivity = time.Now()

	if _, exists := s.players[c.id]; !exists && len(s.players) >= 2 {
		// Room is full; the intent is dropped and the connection never
		// becomes a member.
		s.mu.Unlock()
		return
	}

	if msg.IsCreator && msg.ThemeIndex != nil {
		s.setThemeLocked(*msg.ThemeIndex)
	}

	s.clients[c] = true
	s.addPlayerLocked(c.id, msg.PlayerName, msg.IsCreator)

	// A room that emptied back down and refilled returns to word
	// selection.
	if len(s.players) == 2 && s.phase != phaseSetup {
		s.phase = phaseSetup
	}

	s.cancelCleanupLocked()
	s.active = true

	logf(cfg, "DUEL: Player %q joined %s (%d/2)", msg.PlayerName, s.id, len(s.players))

	s.broadcastStateLocked()
	s.sendLocked(c, WordOptionsMessage{
		Type:        "word_options",
		WordOptions: s.wordOptions[c.id],
	})

	s.mu.Unlock()

	// Membership is recorded only once the join is accepted, so a
	// rejected connection stays free to join another room.
	s.mgr.bind(c, s)
}

func (s *DuelSession) addPlayerLocked(id, name string, isCreator bool) {
	if _, exists := s.players[id]; exists {
		return
	}

	s.players[id] = &Player{
		ID:        id,
		Name:      name,
		IsCreator: isCreator,
	}
	s.joinOrder = append(s.joinOrder, id)
	s.wordOptions[id] = pickWordOptions(s.theme)

	if isCreator {
		s.creatorID = id
	}
}

func (s *DuelSession) removePlayerLocked(id string) {
	delete(s.players, id)
	delete(s.pendingGuesses, id)
	delete(s.wordOptions, id)

	for i, pid := range s.joinOrder {
		if pid == id {
			s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
			break
		}
	}

	if s.creatorID == id {
		s.creatorID = ""
	}
}

// handleLeave covers both explicit "leave_room" intents and websocket
// disconnects; the two are deliberately identical for cleanup purposes.
func (s *DuelSession) handleLeave(cfg *Config, c *Client) {
	s.mu.Lock()

	delete(s.clients, c)

	if _, ok := s.players[c.id]; !ok {
		s.mu.Unlock()
		return
	}

	s.removePlayerLocked(c.id)
	s.lastActivity = time.Now()

	logf(cfg, "DUEL: Player %s left %s (%d remaining)", c.id, s.id, len(s.players))

	if len(s.players) == 0 {
		s.active = false
		s.mu.Unlock()
		s.mgr.remove(s.id)
		return
	}

	s.broadcastLocked(PlayerDisconnectedMessage{
		Type:     "player_disconnected",
		PlayerID: c.id,
	})
	s.broadcastStateLocked()
	s.scheduleCleanupLocked(cfg.cleanupGrace)

	s.mu.Unlock()
}

func (s *DuelSession) handleRequest(cfg *Config, req request) {
	c := req.client
	msg := req.msg

	switch msg.Type {
	case "set_theme":
		s.handleSetTheme(cfg, c, msg)
	case "set_secret_word":
		s.handleSetSecretWord(cfg, c, msg)
	case "submit_guess":
		s.handleSubmitGuess(cfg, c, msg)
	case "restart_game":
		s.handleRestart(cfg, c)
	}
}

// handleSetTheme processes creator-only theme changes. Anything from a
// non-creator is treated as a stale client message and dropped.
func (s *DuelSession) handleSetTheme(cfg *Config, c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.id != s.creatorID || s.creatorID == "" || msg.ThemeIndex == nil {
		return
	}

	s.lastActivity = time.Now()
	s.setThemeLocked(*msg.ThemeIndex)

	logf(cfg, "DUEL: Theme for %s set to %q", s.id, s.theme.Name)

	s.broadcastStateLocked()
	s.sendWordOptionsLocked()
}

// setThemeLocked swaps the word source and regenerates every player's
// option list from the new pool.
func (s *DuelSession) setThemeLocked(index int) {
	s.theme, s.themeIndex = themeByIndex(index)

	for id := range s.players {
		s.wordOptions[id] = pickWordOptions(s.theme)
	}
}

func (s *DuelSession) handleSetSecretWord(cfg *Config, c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[c.id]
	if !ok || !wordPattern.MatchString(msg.Word) {
		return
	}

	player.SecretWord = msg.Word
	s.lastActivity = time.Now()

	logf(cfg, "DUEL: Player %q locked in a word for %s", player.Name, s.id)

	if len(s.players) == 2 && s.allWordsSetLocked() {
		s.phase = phaseActive
	}

	s.broadcastStateLocked()
}

func (s *DuelSession) allWordsSetLocked() bool {
	for _, p := range s.players {
		if p.SecretWord == "" {
			return false
		}
	}
	return true
}

func (s *DuelSession) handleSubmitGuess(cfg *Config, c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[c.id]
	if !ok || s.phase != phaseActive {
		return
	}

	if !wordPattern.MatchString(msg.Guess) {
		s.sendLocked(c, InvalidGuessMessage{
			Type:    "invalid_guess",
			Message: "Invalid guess. Must be exactly 5 letters.",
		})
		return
	}

	// Solved players sit out the rest of the game; a resolving round
	// means this submission raced the transition and is stale.
	if player.HasWon || s.resolving {
		return
	}

	s.pendingGuesses[c.id] = msg.Guess
	s.lastActivity = time.Now()

	if s.allUnsolvedSubmittedLocked() {
		result := s.resolveRoundLocked(cfg)
		if result != nil {
			s.broadcastLocked(*result)
			s.broadcastStateLocked()
		}
		return
	}

	s.broadcastLocked(WaitingMessage{
		Type:             "waiting_for_opponent",
		SubmittedPlayers: len(s.pendingGuesses),
		TotalPlayers:     len(s.players),
	})
}

func (s *DuelSession) allUnsolvedSubmittedLocked() bool {
	for id, p := range s.players {
		if p.HasWon {
			continue
		}
		if _, ok := s.pendingGuesses[id]; !ok {
			return false
		}
	}
	return true
}

// resolveRoundLocked grades every buffered guess against the opponent's
// secret word, then either advances the round or finishes the game.
// The resolving guard makes duplicate triggers for the same round
// observable no-ops.
func (s *DuelSession) resolveRoundLocked(cfg *Config) *RoundResultsMessage {
	if s.resolving {
		return nil
	}
	s.resolving = true
	defer func() {
		s.resolving = false
	}()

	if len(s.players) < 2 {
		return &RoundResultsMessage{
			Type:    "round_results",
			Round:   s.round,
			Results: []GuessResult{},
			Players: s.playerSummariesLocked(),
		}
	}

	results := make([]GuessResult, 0, len(s.players))

	for i, id := range s.joinOrder {
		player := s.players[id]
		opponent := s.players[s.joinOrder[(i+1)%2]]
		guess, submitted := s.pendingGuesses[id]

		// A player whose opponent never set a word has nothing to be
		// graded against.
		if !submitted || opponent.SecretWord == "" {
			continue
		}

		isCorrect := guess == opponent.SecretWord
		player.Guesses = append(player.Guesses, guess)

		if isCorrect && !player.HasWon {
			player.HasWon = true
			player.Score = calculateScore(len(player.Guesses))
			logf(cfg, "DUEL: Player %q solved %s in %d guesses for %d points", player.Name, s.id, len(player.Guesses), player.Score)
		}

		results = append(results, GuessResult{
			PlayerID:   id,
			Guess:      guess,
			TargetWord: opponent.SecretWord,
			IsCorrect:  isCorrect,
			Feedback:   guessFeedback(guess, opponent.SecretWord),
		})
	}

	complete := s.round >= maxRounds
	if !complete {
		complete = true
		for _, p := range s.players {
			if !p.HasWon {
				complete = false
				break
			}
		}
	}

	if complete {
		s.phase = phaseResults
		s.gameComplete = true
		s.active = false
		for _, p := range s.players {
			p.CumulativeScore += p.Score
		}
		s.scheduleCleanupLocked(cfg.cleanupGrace)
		logf(cfg, "DUEL: Game in %s finished after round %d", s.id, s.round)
	} else {
		s.round++
		s.pendingGuesses = make(map[string]string)
	}

	return &RoundResultsMessage{
		Type:         "round_results",
		Round:        s.round,
		Results:      results,
		GameComplete: complete,
		Players:      s.playerSummariesLocked(),
	}
}

// handleRestart resets a finished room for another game, keeping the
// players and their cumulative scores.
func (s *DuelSession) handleRestart(cfg *Config, c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[c.id]; !ok {
		return
	}

	s.phase = phaseSetup
	s.round = 1
	s.gameComplete = false
	s.resolving = false
	s.pendingGuesses = make(map[string]string)
	s.setThemeLocked(s.themeIndex)

	for _, p := range s.players {
		p.SecretWord = ""
		p.Guesses = nil
		p.Score = 0
		p.HasWon = false
	}

	s.active = true
	s.lastActivity = time.Now()
	s.cancelCleanupLocked()

	logf(cfg, "DUEL: Game in %s restarted", s.id)

	s.broadcastStateLocked()
	s.sendWordOptionsLocked()
}

// scheduleCleanupLocked arms (or re-arms) the delayed deletion of a
// room that has gone terminal. The timer only fires through if the room
// is still inactive by then; joins and restarts disarm it.
func (s *DuelSession) scheduleCleanupLocked(grace time.Duration) {
	if s.cleanupTimer != nil {
		s.cleanupTimer.Stop()
	}

	s.cleanupTimer = time.AfterFunc(grace, func() {
		s.mu.RLock()
		stale := !s.active
		s.mu.RUnlock()

		if stale {
			s.mgr.remove(s.id)
		}
	})
}

func (s *DuelSession) cancelCleanupLocked() {
	if s.cleanupTimer != nil {
		s.cleanupTimer.Stop()
		s.cleanupTimer = nil
	}
}

func (s *DuelSession) snapshotLocked() GameStateMessage {
	players := make([]PlayerView, 0, len(s.players))
	for _, id := range s.joinOrder {
		p := s.players[id]
		players = append(players, PlayerView{
			ID:              p.ID,
			Name:            p.Name,
			Score:           p.Score,
			HasWon:          p.HasWon,
			GuessCount:      len(p.Guesses),
			IsCreator:       p.IsCreator,
			CumulativeScore: p.CumulativeScore,
			SecretWord:      p.SecretWord,
		})
	}

	return GameStateMessage{
		Type:                "game_state_update",
		RoomID:              s.id,
		Theme:               s.theme,
		ThemeIndex:          s.themeIndex,
		Phase:               s.phase,
		Round:               s.round,
		MaxRounds:           maxRounds,
		Players:             players,
		CurrentRoundGuesses: len(s.pendingGuesses),
		GameComplete:        s.gameComplete,
	}
}

func (s *DuelSession) playerSummariesLocked() []PlayerSummary {
	summaries := make([]PlayerSummary, 0, len(s.players))
	for _, id := range s.joinOrder {
		p := s.players[id]
		summaries = append(summaries, PlayerSummary{
			ID:              p.ID,
			Name:            p.Name,
			Score:           p.Score,
			HasWon:          p.HasWon,
			GuessCount:      len(p.Guesses),
			CumulativeScore: p.CumulativeScore,
		})
	}
	return summaries
}

func (s *DuelSession) playerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.players)
}

func (s *DuelSession) idle() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastActivity
}

func (s *DuelSession) broadcastStateLocked() {
	s.broadcastLocked(s.snapshotLocked())
}

func (s *DuelSession) sendWordOptionsLocked() {
	for client := range s.clients {
		if _, ok := s.players[client.id]; !ok {
			continue
		}
		s.sendLocked(client, WordOptionsMessage{
			Type:        "word_options",
			WordOptions: s.wordOptions[client.id],
		})
	}
}

func (s *DuelSession) broadcastLocked(msg any) {
	for client := range s.clients {
		select {
		case client.send <- msg:
		default:
			delete(s.clients, client)
			close(client.send)
		}
	}
}

func (s *DuelSession) sendLocked(c *Client, msg any) {
	if !s.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(s.clients, c)
		close(c.send)
	}
}

// closeAll disconnects all clients of this session (used by reaper).
func (s *DuelSession) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(s.clients, c)
	}
}
