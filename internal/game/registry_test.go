package game

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"quizler/internal/types"
)

func TestPrepareAndInitialize(t *testing.T) {
	games := NewGames()
	cfg := testConfig(4)

	id := games.Prepare(cfg)

	out, err := games.Initialize(id, hostID, &captureSink{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if out.Config != cfg {
		t.Error("Expected the prepared config to be shared, not copied")
	}
	if out.Game == nil {
		t.Fatal("Expected a game handle")
	}
	if !games.IsGame(out.Token) {
		t.Error("Expected the new game to be registered")
	}
	if games.GetGame(out.Token) != out.Game {
		t.Error("Expected GetGame to return the registered handle")
	}
	if _, err := types.ParseToken(out.Token.String()); err != nil {
		t.Errorf("Allocated token %q is not valid: %v", out.Token, err)
	}
}

func TestInitializeConsumesPreparedEntry(t *testing.T) {
	games := NewGames()
	id := games.Prepare(testConfig(4))

	if _, err := games.Initialize(id, hostID, &captureSink{}); err != nil {
		t.Fatalf("First initialize failed: %v", err)
	}

	_, err := games.Initialize(id, hostID, &captureSink{})
	if err != types.ErrInvalidToken {
		t.Errorf("Expected InvalidToken on second initialize, got %v", err)
	}
}

func TestInitializeUnknownUUID(t *testing.T) {
	games := NewGames()

	_, err := games.Initialize(uuid.New(), hostID, &captureSink{})
	if err != types.ErrInvalidToken {
		t.Errorf("Expected InvalidToken, got %v", err)
	}
}

func TestRemoveGame(t *testing.T) {
	games := NewGames()
	out, err := games.Initialize(games.Prepare(testConfig(4)), hostID, &captureSink{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	games.RemoveGame(out.Token)

	if games.IsGame(out.Token) {
		t.Error("Expected game to be gone after removal")
	}
	if games.GetGame(out.Token) != nil {
		t.Error("Expected nil handle after removal")
	}
}

func TestSweepExpired(t *testing.T) {
	games := NewGames()
	id := games.Prepare(testConfig(4))

	// Nothing is old enough yet.
	if removed := games.sweepExpired(time.Now()); removed != 0 {
		t.Fatalf("Expected no removals, got %d", removed)
	}

	// Eleven minutes later the entry is expired and gone.
	if removed := games.sweepExpired(time.Now().Add(11 * time.Minute)); removed != 1 {
		t.Fatalf("Expected one removal, got %d", removed)
	}

	_, err := games.Initialize(id, hostID, &captureSink{})
	if err != types.ErrInvalidToken {
		t.Errorf("Expected InvalidToken after expiry, got %v", err)
	}
}

func TestSweepKeepsFreshEntries(t *testing.T) {
	games := NewGames()
	id := games.Prepare(testConfig(4))

	if removed := games.sweepExpired(time.Now().Add(9 * time.Minute)); removed != 0 {
		t.Fatalf("Fresh entry swept early: %d removals", removed)
	}

	if _, err := games.Initialize(id, hostID, &captureSink{}); err != nil {
		t.Errorf("Expected fresh entry to still initialize, got %v", err)
	}
}

func TestHostDisconnectRemovesFromRegistry(t *testing.T) {
	games := NewGames()
	out, err := games.Initialize(games.Prepare(testConfig(4)), hostID, &captureSink{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := out.Game.RemovePlayer(hostID, hostID, types.LostConnection); err != nil {
		t.Fatalf("Host removal failed: %v", err)
	}

	// Removal is scheduled asynchronously to respect lock ordering.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !games.IsGame(out.Token) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Game was never removed from the registry")
}

func TestTimerIgnoredAfterRegistryRemoval(t *testing.T) {
	oldStart := startDelay
	startDelay = 30 * time.Millisecond
	defer func() { startDelay = oldStart }()

	games := NewGames()
	out, err := games.Initialize(games.Prepare(testConfig(4)), hostID, &captureSink{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	g := out.Game

	// Arm the lobby timer, then drop the game from the registry before
	// it fires.
	if err := g.HostAction(hostID, types.HostActionNext); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	games.RemoveGame(out.Token)

	time.Sleep(100 * time.Millisecond)

	if state := g.State(); state != types.StateStarting {
		t.Errorf("Timer advanced an unregistered game to %s", state)
	}
}
