package types

import (
	"encoding/json"
	"fmt"
)

// GameState is the shared, host-driven state of a game. Every state
// change is broadcast so clients render in lock-step with the server.
type GameState uint8

const (
	// StateLobby is the initial state, players may join.
	StateLobby GameState = iota
	// StateStarting counts down before the first question.
	StateStarting
	// StateAwaitingReady waits for every participant to load the question.
	StateAwaitingReady
	// StatePreQuestion counts down before answering opens.
	StatePreQuestion
	// StateAwaitingAnswers is the answering window.
	StateAwaitingAnswers
	// StateMarked means the current question has been scored.
	StateMarked
	// StateFinished means the last question has been completed.
	StateFinished
	// StateStopped is terminal, the game accepts nothing further.
	StateStopped
)

var stateNames = [...]string{
	"Lobby",
	"Starting",
	"AwaitingReady",
	"PreQuestion",
	"AwaitingAnswers",
	"Marked",
	"Finished",
	"Stopped",
}

func (s GameState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("GameState(%d)", uint8(s))
}

func (s GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// HostAction is a control action only the host session may issue.
type HostAction string

const (
	// HostActionNext forces the game to its next state.
	HostActionNext HostAction = "Next"
	// HostActionReset returns the game and all player data to the lobby.
	HostActionReset HostAction = "Reset"
)

// Valid reports whether the action is a known host action.
func (a HostAction) Valid() bool {
	return a == HostActionNext || a == HostActionReset
}

// RemoveReason describes why a participant left a game.
type RemoveReason string

const (
	// RemovedByHost means the player was manually kicked by the host.
	RemovedByHost RemoveReason = "RemovedByHost"
	// HostDisconnect means the host left, ending the game.
	HostDisconnect RemoveReason = "HostDisconnect"
	// LostConnection means the player's heartbeat timed out.
	LostConnection RemoveReason = "LostConnection"
	// Disconnected means the player left on their own.
	Disconnected RemoveReason = "Disconnected"
)

// NameFiltering is the per-game profanity filtering level for player
// display names.
type NameFiltering string

const (
	FilteringNone   NameFiltering = "None"
	FilteringLow    NameFiltering = "Low"
	FilteringMedium NameFiltering = "Medium"
	FilteringHigh   NameFiltering = "High"
)

// Valid reports whether the level is one of the known filtering levels.
func (f NameFiltering) Valid() bool {
	switch f {
	case FilteringNone, FilteringLow, FilteringMedium, FilteringHigh:
		return true
	}
	return false
}
