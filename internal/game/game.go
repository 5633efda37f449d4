// Package game implements the per-quiz state machine and the registry
// of live and prepared games.
package game

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizler/internal/filter"
	"quizler/internal/protocol"
	"quizler/internal/types"
)

// Countdown durations before the first question and before each
// answering window. Vars so tests can shorten them.
var (
	startDelay       = 5 * time.Second
	preQuestionDelay = 5 * time.Second
)

// Game is one running quiz: a host, its players, and the shared state
// machine driving them. A single mutex guards all state; every public
// method acquires it exclusively. Events emitted under the lock arrive
// at each recipient's outbox in emission order.
type Game struct {
	mu sync.Mutex

	token   types.GameToken
	host    hostSession
	players []*playerSession
	config  *types.GameConfig
	state   types.GameState

	// questionIndex is valid whenever state is at or past AwaitingReady.
	questionIndex int

	// timer is the single pending transition timer, if any. timerEpoch
	// invalidates callbacks from cancelled or superseded timers.
	timer      *time.Timer
	timerEpoch uint64

	// questionStart is reset when each answering window opens.
	questionStart time.Time

	// registry the game was created in, used by timers to confirm the
	// game is still live and by stop to schedule its own removal.
	registry *Games
}

// NewGame creates a game in the lobby state owned by the host session.
func NewGame(token types.GameToken, hostID types.SessionID, hostSink EventSink, config *types.GameConfig, registry *Games) *Game {
	return &Game{
		token:    token,
		host:     hostSession{id: hostID, sink: hostSink},
		config:   config,
		state:    types.StateLobby,
		registry: registry,
	}
}

// Token returns the code this game is registered under.
func (g *Game) Token() types.GameToken { return g.token }

// Config returns the shared immutable configuration.
func (g *Game) Config() *types.GameConfig { return g.config }

// State returns the current state.
func (g *Game) State() types.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// sendAll delivers one event to every player and the host. The event
// value is shared between all recipients.
func (g *Game) sendAll(event protocol.ServerEvent) {
	for _, player := range g.players {
		player.sink.SendShared(event)
	}
	g.host.sink.SendShared(event)
}

// setState updates the state and announces it to everyone.
func (g *Game) setState(state types.GameState) {
	g.state = state
	g.sendAll(protocol.NewGameState(state))
}

// timedNextState arms a timer that advances the state machine after
// the provided duration and announces the countdown to all clients.
// Fired callbacks re-acquire the lock and are discarded if the game
// was advanced, reset or removed in the meantime.
func (g *Game) timedNextState(duration time.Duration) {
	g.timerEpoch++
	epoch := g.timerEpoch
	g.timer = time.AfterFunc(duration, func() {
		g.fireTimer(epoch)
	})

	g.sendAll(protocol.NewTimer(uint32(duration.Milliseconds())))
}

func (g *Game) fireTimer(epoch uint64) {
	// A timer may lose the race against Next/Reset or the game being
	// stopped; it is advisory, never authoritative.
	if g.registry != nil && !g.registry.IsGame(g.token) {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timerEpoch != epoch || g.timer == nil {
		return
	}
	g.timer = nil
	g.nextState()
}

// cancelTimer stops any pending timer and invalidates callbacks that
// have already fired but not yet acquired the lock.
func (g *Game) cancelTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.timerEpoch++
}

// nextState advances the state machine one step from its current
// state, cancelling any pending timer first.
func (g *Game) nextState() {
	g.cancelTimer()

	switch g.state {
	case types.StateLobby:
		g.setState(types.StateStarting)
		g.timedNextState(startDelay)

	case types.StateStarting:
		g.question()

	case types.StateAwaitingReady:
		g.setState(types.StatePreQuestion)
		g.timedNextState(preQuestionDelay)

	case types.StatePreQuestion:
		g.setState(types.StateAwaitingAnswers)
		g.questionStart = time.Now()
		question := g.config.Questions[g.questionIndex]
		g.timedNextState(time.Duration(question.AnswerTime) * time.Millisecond)

	case types.StateAwaitingAnswers:
		g.markAnswers()

	case types.StateMarked:
		g.nextQuestion()

	case types.StateFinished:
		g.resetCompletely()

	case types.StateStopped:
	}
}

// question clears everyone's ready flag, sends the current question
// and begins awaiting readiness.
func (g *Game) question() {
	for _, player := range g.players {
		player.ready = false
	}
	g.host.ready = false

	g.sendAll(protocol.NewQuestion(g.config.Questions[g.questionIndex]))
	g.setState(types.StateAwaitingReady)
}

// nextQuestion advances to the next question or finishes the game.
func (g *Game) nextQuestion() {
	if g.questionIndex+1 >= len(g.config.Questions) {
		g.setState(types.StateFinished)
		return
	}

	g.questionIndex++
	g.question()
}

// updateReady advances to the pre-question countdown once the host and
// every player have reported ready.
func (g *Game) updateReady() {
	if g.state != types.StateAwaitingReady {
		return
	}

	if !g.host.ready {
		return
	}
	for _, player := range g.players {
		if !player.ready {
			return
		}
	}

	g.nextState()
}

// markAnswers scores every player for the current question, sends each
// their own score, then broadcasts the running totals in join order.
func (g *Game) markAnswers() {
	question := g.config.Questions[g.questionIndex]

	scores := make(protocol.Scores, 0, len(g.players))
	for _, player := range g.players {
		record := &player.answers[g.questionIndex]
		score := markAnswer(record, question)
		record.Score = &score

		player.totalScore += score.Points()
		player.sink.Send(protocol.NewScore(score))

		scores = append(scores, protocol.ScoreEntry{ID: player.id, Total: player.totalScore})
	}

	g.sendAll(protocol.NewScores(scores))
	g.setState(types.StateMarked)
}

// resetCompletely returns the game and every player to the lobby:
// question index, answers and scores are all cleared.
func (g *Game) resetCompletely() {
	g.cancelTimer()

	g.questionIndex = 0
	for _, player := range g.players {
		player.answers.Reset()
		player.totalScore = 0
	}

	g.setState(types.StateLobby)
}

// stop ends the game permanently. Idempotent. Registry removal is
// scheduled asynchronously so the game lock is never held across a
// registry write.
func (g *Game) stop() {
	if g.state == types.StateStopped {
		return
	}

	log.Printf("[GAME] Stopped game %s", g.token)

	if g.registry != nil {
		token := g.token
		registry := g.registry
		go registry.RemoveGame(token)
	}

	g.cancelTimer()

	for _, player := range g.players {
		player.sink.Send(protocol.NewKicked(player.id, types.HostDisconnect))
	}
	g.host.sink.Send(protocol.NewKicked(g.host.id, types.Disconnected))

	g.state = types.StateStopped
}

// Join adds a player to the game under the provided display name.
// On success the joiner learns about every existing player and
// everyone else (host included) learns about the joiner.
func (g *Game) Join(id types.SessionID, sink EventSink, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != types.StateLobby && g.state != types.StateStarting {
		return types.ErrNotJoinable
	}

	name, err := types.ValidatePlayerName(name)
	if err != nil {
		return err
	}

	if filter.IsInappropriate(name, g.config.Filtering) {
		return types.ErrInappropriateName
	}

	for _, player := range g.players {
		if strings.EqualFold(player.name, name) {
			return types.ErrUsernameTaken
		}
	}

	if len(g.players) >= g.config.MaxPlayers {
		return types.ErrCapacityReached
	}

	joiner := newPlayerSession(id, sink, name, len(g.config.Questions))

	// One shared event describing the joiner for everyone already here.
	joinerData := protocol.NewPlayerData(joiner.id, joiner.name)
	for _, player := range g.players {
		player.sink.SendShared(joinerData)
		joiner.sink.Send(protocol.NewPlayerData(player.id, player.name))
	}
	g.host.sink.SendShared(joinerData)

	g.players = append(g.players, joiner)

	log.Printf("[GAME] Player %q joined %s", name, g.token)
	return nil
}

// Ready marks the session as ready and advances the game if everyone
// now is.
func (g *Game) Ready(id types.SessionID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id == g.host.id {
		g.host.ready = true
	} else {
		for _, player := range g.players {
			if player.id == id {
				player.ready = true
				break
			}
		}
	}

	g.updateReady()
}

// HostAction executes a Next or Reset issued by the host.
func (g *Game) HostAction(id types.SessionID, action types.HostAction) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id != g.host.id {
		return types.ErrInvalidPermission
	}

	switch action {
	case types.HostActionNext:
		g.nextState()
	case types.HostActionReset:
		g.resetCompletely()
	default:
		return types.ErrMalformedMessage
	}

	return nil
}

// Answer records the session's answer to the current question. When
// the last player answers, the game advances to marking immediately.
func (g *Game) Answer(id types.SessionID, answer types.Answer) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	elapsed := time.Since(g.questionStart)

	if g.state != types.StateAwaitingAnswers {
		return types.ErrUnexpectedMessage
	}

	question := g.config.Questions[g.questionIndex]

	var player *playerSession
	for _, p := range g.players {
		if p.id == id {
			player = p
			break
		}
	}
	if player == nil {
		return types.ErrUnknownPlayer
	}

	if !answer.Matches(&question.Data) {
		return types.ErrInvalidAnswer
	}

	player.answers.Set(g.questionIndex, elapsed, answer)

	allAnswered := true
	for _, p := range g.players {
		if !p.answers.Has(g.questionIndex) {
			allAnswered = false
			break
		}
	}
	if allAnswered {
		g.nextState()
	}

	return nil
}

// RemovePlayer removes the target from the game. Players may remove
// themselves; the host may remove anyone. Removing the host stops the
// game entirely.
func (g *Game) RemovePlayer(actor, target types.SessionID, reason types.RemoveReason) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if target != actor && actor != g.host.id {
		return types.ErrInvalidPermission
	}

	if target == g.host.id {
		g.stop()
		return nil
	}

	index := -1
	for i, player := range g.players {
		if player.id == target {
			index = i
			break
		}
	}
	if index == -1 {
		return types.ErrUnknownPlayer
	}

	// Only the host can kick; self-removal never reports as a kick.
	if reason == types.RemovedByHost && actor != g.host.id {
		reason = types.Disconnected
	}

	kicked := protocol.NewKicked(target, reason)
	for _, player := range g.players {
		player.sink.SendShared(kicked)
	}
	g.host.sink.SendShared(kicked)

	g.players = append(g.players[:index], g.players[index+1:]...)

	g.updateReady()

	// Reset the game if everyone disconnected while in progress.
	if g.state != types.StateFinished && len(g.players) == 0 {
		g.resetCompletely()
	}

	return nil
}

// GetImage returns a copy of the stored image bytes for the reference,
// if this game's config holds it.
func (g *Game) GetImage(id uuid.UUID) (types.Image, bool) {
	image, ok := g.config.Images[id]
	if !ok {
		return types.Image{}, false
	}

	data := make([]byte, len(image.Data))
	copy(data, image.Data)
	return types.Image{Mime: image.Mime, Data: data}, true
}
