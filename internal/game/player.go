package game

import (
	"quizler/internal/protocol"
	"quizler/internal/types"
)

// EventSink is where a game delivers events destined for one session.
// Implementations must never block the caller; the game emits while
// holding its lock.
type EventSink interface {
	// Send delivers an event owned by the recipient.
	Send(event protocol.ServerEvent)
	// SendShared delivers an event whose value is shared between many
	// recipients; it must be treated as immutable.
	SendShared(event protocol.ServerEvent)
}

// hostSession is the single controlling session of a game.
type hostSession struct {
	id    types.SessionID
	sink  EventSink
	ready bool
}

// playerSession is one joined player.
type playerSession struct {
	id    types.SessionID
	sink  EventSink
	ready bool

	name string
	// answers has one record per question for the whole game.
	answers    types.PlayerAnswers
	totalScore uint32
}

func newPlayerSession(id types.SessionID, sink EventSink, name string, questions int) *playerSession {
	return &playerSession{
		id:      id,
		sink:    sink,
		name:    name,
		answers: types.NewPlayerAnswers(questions),
	}
}
