package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"quizler/internal/types"
)

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(*testing.T, *ClientMessage)
	}{
		{"Connect", `{"ty":"Connect","rid":3,"token":"AB12C"}`, false, func(t *testing.T, m *ClientMessage) {
			if m.Ty != ClientConnect || m.RID != 3 || m.Token != "AB12C" {
				t.Errorf("Connect not decoded: %+v", m)
			}
		}},
		{"Join", `{"ty":"Join","rid":1,"name":"alice"}`, false, func(t *testing.T, m *ClientMessage) {
			if m.Ty != ClientJoin || m.Name != "alice" {
				t.Errorf("Join not decoded: %+v", m)
			}
		}},
		{"HostAction", `{"ty":"HostAction","action":"Next"}`, false, func(t *testing.T, m *ClientMessage) {
			if m.Action != types.HostActionNext {
				t.Errorf("HostAction not decoded: %+v", m)
			}
		}},
		{"Answer", `{"ty":"Answer","answer":{"ty":"Single","answer":1}}`, false, func(t *testing.T, m *ClientMessage) {
			if m.Answer == nil || m.Answer.Ty != types.QuestionSingle || m.Answer.Index != 1 {
				t.Errorf("Answer not decoded: %+v", m.Answer)
			}
		}},
		{"Kick", `{"ty":"Kick","id":7}`, false, func(t *testing.T, m *ClientMessage) {
			if m.ID != 7 {
				t.Errorf("Kick not decoded: %+v", m)
			}
		}},
		{"Ready", `{"ty":"Ready"}`, false, nil},
		{"Not JSON", `{nope`, true, nil},
		{"Missing type", `{"name":"alice"}`, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeClientMessage([]byte(tt.input))
			if tt.wantErr {
				if err != types.ErrMalformedMessage {
					t.Fatalf("Expected MalformedMessage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, msg)
			}
		})
	}
}

func TestResponseMarshal(t *testing.T) {
	token, err := types.ParseToken("AB12C")
	if err != nil {
		t.Fatalf("Parse token: %v", err)
	}
	config := &types.GameConfig{Name: "Quiz", Text: "Text", MaxPlayers: 4}

	data, err := Encode(NewJoined(5, 2, token, config))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := string(data)
	for _, want := range []string{`"ty":"Joined"`, `"rid":5`, `"id":2`, `"token":"AB12C"`, `"max_players":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("Joined response missing %s: %s", want, out)
		}
	}
}

func TestErrorResponseMarshal(t *testing.T) {
	data, err := Encode(NewError(9, types.ErrCapacityReached))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `"error":"CapacityReached"`) || !strings.Contains(out, `"rid":9`) {
		t.Errorf("Unexpected error response: %s", out)
	}
}

func TestOkResponseKeepsZeroRID(t *testing.T) {
	data, err := Encode(NewOk(0))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// rid must always be present so clients can match responses.
	if !strings.Contains(string(data), `"rid":0`) {
		t.Errorf("Expected rid in response: %s", data)
	}
}

func TestScoresMarshalPreservesOrder(t *testing.T) {
	scores := Scores{
		{ID: 9, Total: 100},
		{ID: 2, Total: 300},
		{ID: 5, Total: 200},
	}

	data, err := json.Marshal(scores)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"9":100,"2":300,"5":200}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestEventMarshal(t *testing.T) {
	tests := []struct {
		name  string
		event ServerEvent
		want  []string
	}{
		{"PlayerData", NewPlayerData(3, "alice"), []string{`"ty":"PlayerData"`, `"id":3`, `"name":"alice"`}},
		{"GameState", NewGameState(types.StateLobby), []string{`"ty":"GameState"`, `"state":"Lobby"`}},
		{"Timer", NewTimer(5000), []string{`"ty":"Timer"`, `"value":5000`}},
		{"Kicked", NewKicked(3, types.HostDisconnect), []string{`"ty":"Kicked"`, `"reason":"HostDisconnect"`}},
		{"Score", NewScore(types.Correct(1110)), []string{`"ty":"Score"`, `"Correct"`, `"value":1110`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.event)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(string(data), want) {
					t.Errorf("Event missing %s: %s", want, data)
				}
			}
		})
	}
}
