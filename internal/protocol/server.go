package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"

	"quizler/internal/types"
)

// ServerEvent is implemented by every server→client event payload.
// Events are broadcast or targeted; they carry no correlation id,
// which is how clients tell them apart from responses.
type ServerEvent interface {
	serverEvent()
}

// PlayerData announces a player to the other participants.
type PlayerData struct {
	Ty   string          `json:"ty"`
	ID   types.SessionID `json:"id"`
	Name string          `json:"name"`
}

// GameStateEvent announces a state transition.
type GameStateEvent struct {
	Ty    string          `json:"ty"`
	State types.GameState `json:"state"`
}

// TimerEvent announces the total duration of a newly armed timer in
// milliseconds. Clients run the countdown locally.
type TimerEvent struct {
	Ty    string `json:"ty"`
	Value uint32 `json:"value"`
}

// QuestionEvent carries the next question, with correct values hidden.
type QuestionEvent struct {
	Ty       string          `json:"ty"`
	Question *types.Question `json:"question"`
}

// ScoreEvent tells one player the score they got for the current
// question.
type ScoreEvent struct {
	Ty    string      `json:"ty"`
	Score types.Score `json:"score"`
}

// ScoresEvent broadcasts every player's running total.
type ScoresEvent struct {
	Ty     string `json:"ty"`
	Scores Scores `json:"scores"`
}

// KickedEvent announces that a participant left the game.
type KickedEvent struct {
	Ty     string             `json:"ty"`
	ID     types.SessionID    `json:"id"`
	Reason types.RemoveReason `json:"reason"`
}

func (*PlayerData) serverEvent()     {}
func (*GameStateEvent) serverEvent() {}
func (*TimerEvent) serverEvent()     {}
func (*QuestionEvent) serverEvent()  {}
func (*ScoreEvent) serverEvent()     {}
func (*ScoresEvent) serverEvent()    {}
func (*KickedEvent) serverEvent()    {}

func NewPlayerData(id types.SessionID, name string) *PlayerData {
	return &PlayerData{Ty: "PlayerData", ID: id, Name: name}
}

func NewGameState(state types.GameState) *GameStateEvent {
	return &GameStateEvent{Ty: "GameState", State: state}
}

func NewTimer(valueMs uint32) *TimerEvent {
	return &TimerEvent{Ty: "Timer", Value: valueMs}
}

func NewQuestion(question *types.Question) *QuestionEvent {
	return &QuestionEvent{Ty: "Question", Question: question}
}

func NewScore(score types.Score) *ScoreEvent {
	return &ScoreEvent{Ty: "Score", Score: score}
}

func NewScores(scores Scores) *ScoresEvent {
	return &ScoresEvent{Ty: "Scores", Scores: scores}
}

func NewKicked(id types.SessionID, reason types.RemoveReason) *KickedEvent {
	return &KickedEvent{Ty: "Kicked", ID: id, Reason: reason}
}

// ScoreEntry pairs a player with their running total.
type ScoreEntry struct {
	ID    types.SessionID
	Total uint32
}

// Scores serializes as a JSON object keyed by session id, preserving
// the join order of the entries rather than sorting the keys.
type Scores []ScoreEntry

func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatUint(uint64(entry.ID), 10))
		buf.WriteString(`":`)
		buf.WriteString(strconv.FormatUint(uint64(entry.Total), 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Response message types.
const (
	ResponseJoined = "Joined"
	ResponseOk     = "Ok"
	ResponseError  = "Error"
)

// Response is the direct reply to one client request. RID echoes the
// request's correlation id so clients can match it up.
type Response struct {
	Ty  string `json:"ty"`
	RID uint32 `json:"rid"`

	ID     types.SessionID   `json:"id,omitempty"`     // Joined
	Token  string            `json:"token,omitempty"`  // Joined
	Config *types.GameConfig `json:"config,omitempty"` // Joined
	Error  types.GameError   `json:"error,omitempty"`  // Error
}

// NewJoined builds the successful join/initialize response.
func NewJoined(rid uint32, id types.SessionID, token types.GameToken, config *types.GameConfig) *Response {
	return &Response{Ty: ResponseJoined, RID: rid, ID: id, Token: token.String(), Config: config}
}

// NewOk builds the generic success response.
func NewOk(rid uint32) *Response {
	return &Response{Ty: ResponseOk, RID: rid}
}

// NewError builds an error response carrying a stable wire tag.
func NewError(rid uint32, err error) *Response {
	return &Response{Ty: ResponseError, RID: rid, Error: types.WireError(err)}
}

// Encode serializes a message for a text frame.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
