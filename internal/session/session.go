// Package session runs one event loop per persistent client
// connection, multiplexing outbound game events, inbound requests and
// heartbeat supervision over the websocket.
package session

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"quizler/internal/game"
	"quizler/internal/protocol"
	"quizler/internal/types"
)

const (
	// heartbeatInterval is how often the server pings the client.
	heartbeatInterval = 5 * time.Second
	// clientTimeout is how long a client may stay silent before the
	// session is terminated.
	clientTimeout = 15 * time.Second
	// writeWait bounds each outbound write.
	writeWait = 10 * time.Second
)

// sessionCounter allocates process-wide unique session ids.
var sessionCounter atomic.Uint32

// Session is one persistent client connection. The session owns its
// websocket exclusively: no other goroutine writes to the transport.
// Fan-out from games reaches the session through its event queue.
type Session struct {
	id    types.SessionID
	games *game.Games

	conn  *websocket.Conn
	queue *EventQueue

	// inbound receives data frames from the reader goroutine. A nil
	// payload marks a control frame that only refreshes the heartbeat.
	inbound chan []byte
	// done releases the reader once the loop has exited.
	done chan struct{}

	lastHeard time.Time

	// gameToken is the game this session is bound to, if bound. A
	// session belongs to at most one game at a time.
	gameToken types.GameToken
	bound     bool
}

// Start runs a session over the provided connection until the client
// disconnects, times out, or the transport fails. Blocks until the
// session ends.
func Start(conn *websocket.Conn, games *game.Games) {
	s := &Session{
		id:      types.SessionID(sessionCounter.Add(1)),
		games:   games,
		conn:    conn,
		queue:   NewEventQueue(),
		inbound: make(chan []byte),
		done:    make(chan struct{}),
	}

	log.Printf("[SESSION] Started session %d", s.id)

	conn.SetPingHandler(func(appData string) error {
		_ = conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		s.forward(nil)
		return nil
	})
	conn.SetPongHandler(func(string) error {
		s.forward(nil)
		return nil
	})

	go s.readLoop()
	s.run()
}

// readLoop moves frames from the transport to the session loop. Runs
// until the connection errors or closes, then signals the loop by
// closing the inbound channel.
func (s *Session) readLoop() {
	defer close(s.inbound)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		if messageType == websocket.TextMessage {
			if !s.forward(data) {
				return
			}
		} else {
			// Non-text frames are ignored beyond the heartbeat refresh.
			if !s.forward(nil) {
				return
			}
		}
	}
}

// forward hands a frame to the session loop, giving up once the loop
// has exited so the reader never blocks on a dead session.
func (s *Session) forward(data []byte) bool {
	select {
	case s.inbound <- data:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) run() {
	defer s.cleanup()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	s.lastHeard = time.Now()

	for {
		select {
		case <-s.queue.Ready():
			for {
				event, ok := s.queue.Pop()
				if !ok {
					break
				}
				s.deliverEvent(event)
			}

		case data, ok := <-s.inbound:
			if !ok {
				return
			}
			s.lastHeard = time.Now()
			if data != nil {
				s.handleFrame(data)
			}

		case <-ticker.C:
			if time.Since(s.lastHeard) >= clientTimeout {
				log.Printf("[SESSION] Session %d timed out", s.id)
				return
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// cleanup releases everything the session holds. If bound to a game,
// the game is told the connection was lost; for a host this stops the
// whole game.
func (s *Session) cleanup() {
	log.Printf("[SESSION] Stopped session %d", s.id)

	close(s.done)
	s.queue.Close()
	_ = s.conn.Close()

	if s.bound {
		s.bound = false
		if g := s.games.GetGame(s.gameToken); g != nil {
			_ = g.RemovePlayer(s.id, s.id, types.LostConnection)
		}
	}
}

// deliverEvent serializes one event onto the transport. Send failures
// drop the event; the heartbeat will reap a dead connection.
func (s *Session) deliverEvent(event protocol.ServerEvent) {
	// Being kicked (including the host closing the game) unbinds the
	// session before the client learns about it.
	if kicked, ok := event.(*protocol.KickedEvent); ok && kicked.ID == s.id {
		s.bound = false
	}

	data, err := protocol.Encode(event)
	if err != nil {
		log.Printf("[SESSION] Failed to encode event for session %d: %v", s.id, err)
		return
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[SESSION] Failed to send event to session %d: %v", s.id, err)
	}
}

// handleFrame decodes one text frame and replies to it. Malformed
// frames get an error reply and the session continues.
func (s *Session) handleFrame(data []byte) {
	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		s.sendResponse(protocol.NewError(0, err))
		return
	}

	s.sendResponse(s.dispatch(msg))
}

func (s *Session) sendResponse(res *protocol.Response) {
	data, err := protocol.Encode(res)
	if err != nil {
		log.Printf("[SESSION] Failed to encode response for session %d: %v", s.id, err)
		return
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[SESSION] Failed to send response to session %d: %v", s.id, err)
	}
}

func (s *Session) dispatch(msg *protocol.ClientMessage) *protocol.Response {
	var err error
	switch msg.Ty {
	case protocol.ClientInitialize:
		return s.initialize(msg)
	case protocol.ClientConnect:
		return s.connect(msg)
	case protocol.ClientJoin:
		return s.join(msg)
	case protocol.ClientReady:
		err = s.ready()
	case protocol.ClientHostAction:
		err = s.hostAction(msg)
	case protocol.ClientAnswer:
		err = s.answer(msg)
	case protocol.ClientKick:
		err = s.kick(msg)
	default:
		err = types.ErrMalformedMessage
	}

	if err != nil {
		return protocol.NewError(msg.RID, err)
	}
	return protocol.NewOk(msg.RID)
}

// boundGame resolves the game this session is bound to.
func (s *Session) boundGame() (*game.Game, error) {
	if !s.bound {
		return nil, types.ErrUnexpected
	}
	g := s.games.GetGame(s.gameToken)
	if g == nil {
		return nil, types.ErrInvalidToken
	}
	return g, nil
}

// disconnect leaves any game the session is currently bound to.
// Called before re-binding on Initialize and Connect.
func (s *Session) disconnect() {
	if !s.bound {
		return
	}
	s.bound = false
	if g := s.games.GetGame(s.gameToken); g != nil {
		_ = g.RemovePlayer(s.id, s.id, types.Disconnected)
	}
}

func (s *Session) initialize(msg *protocol.ClientMessage) *protocol.Response {
	s.disconnect()

	out, err := s.games.Initialize(msg.UUID, s.id, s.queue)
	if err != nil {
		return protocol.NewError(msg.RID, err)
	}

	s.gameToken = out.Token
	s.bound = true

	return protocol.NewJoined(msg.RID, s.id, out.Token, out.Config)
}

func (s *Session) connect(msg *protocol.ClientMessage) *protocol.Response {
	s.disconnect()

	token, err := types.ParseToken(msg.Token)
	if err != nil {
		return protocol.NewError(msg.RID, err)
	}
	if !s.games.IsGame(token) {
		return protocol.NewError(msg.RID, types.ErrInvalidToken)
	}

	s.gameToken = token
	s.bound = true

	return protocol.NewOk(msg.RID)
}

func (s *Session) join(msg *protocol.ClientMessage) *protocol.Response {
	g, err := s.boundGame()
	if err != nil {
		return protocol.NewError(msg.RID, err)
	}

	if err := g.Join(s.id, s.queue, msg.Name); err != nil {
		// A refused join leaves the session unbound.
		s.bound = false
		return protocol.NewError(msg.RID, err)
	}

	return protocol.NewJoined(msg.RID, s.id, g.Token(), g.Config())
}

func (s *Session) ready() error {
	g, err := s.boundGame()
	if err != nil {
		return err
	}
	g.Ready(s.id)
	return nil
}

func (s *Session) hostAction(msg *protocol.ClientMessage) error {
	if !msg.Action.Valid() {
		return types.ErrMalformedMessage
	}
	g, err := s.boundGame()
	if err != nil {
		return err
	}
	return g.HostAction(s.id, msg.Action)
}

func (s *Session) answer(msg *protocol.ClientMessage) error {
	if msg.Answer == nil {
		return types.ErrMalformedMessage
	}
	g, err := s.boundGame()
	if err != nil {
		return err
	}
	return g.Answer(s.id, *msg.Answer)
}

func (s *Session) kick(msg *protocol.ClientMessage) error {
	g, err := s.boundGame()
	if err != nil {
		return err
	}
	return g.RemovePlayer(s.id, msg.ID, types.RemovedByHost)
}
