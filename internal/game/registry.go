package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizler/internal/types"
)

const (
	// preparedExpiry is how long an uploaded quiz waits for its host
	// before being discarded.
	preparedExpiry = 10 * time.Minute
	// sweepInterval is how often expired prepared quizzes are removed.
	sweepInterval = 5 * time.Minute
)

// preparedQuiz is an uploaded configuration waiting for a host socket
// to claim it.
type preparedQuiz struct {
	config    *types.GameConfig
	createdAt time.Time
}

// Games is the process-wide registry of prepared and live games. It is
// constructed exactly once at startup and shared by every session.
// Lock order is always registry before game.
type Games struct {
	mu       sync.RWMutex
	prepared map[uuid.UUID]preparedQuiz
	live     map[types.GameToken]*Game
}

// NewGames creates an empty registry.
func NewGames() *Games {
	return &Games{
		prepared: make(map[uuid.UUID]preparedQuiz),
		live:     make(map[types.GameToken]*Game),
	}
}

// Prepare stores an uploaded configuration and returns the id a host
// uses to claim it.
func (g *Games) Prepare(config *types.GameConfig) uuid.UUID {
	id := uuid.New()

	g.mu.Lock()
	g.prepared[id] = preparedQuiz{config: config, createdAt: time.Now()}
	g.mu.Unlock()

	log.Printf("[REGISTRY] Prepared quiz %s (%q)", id, config.Name)
	return id
}

// Initialized describes a freshly created game.
type Initialized struct {
	Token  types.GameToken
	Config *types.GameConfig
	Game   *Game
}

// Initialize consumes a prepared quiz, allocates a unique token and
// registers a new game hosted by the provided session. Returns
// ErrInvalidToken if the id is unknown or already consumed.
func (g *Games) Initialize(id uuid.UUID, hostID types.SessionID, hostSink EventSink) (*Initialized, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	prep, ok := g.prepared[id]
	if !ok {
		return nil, types.ErrInvalidToken
	}
	delete(g.prepared, id)

	token := types.NewUniqueToken(func(t types.GameToken) bool {
		_, taken := g.live[t]
		return taken
	})

	created := NewGame(token, hostID, hostSink, prep.config, g)
	g.live[token] = created

	log.Printf("[REGISTRY] Created game %s from quiz %s", token, id)

	return &Initialized{Token: token, Config: prep.config, Game: created}, nil
}

// GetGame returns the live game for the token, or nil.
func (g *Games) GetGame(token types.GameToken) *Game {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.live[token]
}

// IsGame reports whether a live game exists for the token.
func (g *Games) IsGame(token types.GameToken) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.live[token]
	return ok
}

// RemoveGame deletes the live game for the token, if present.
func (g *Games) RemoveGame(token types.GameToken) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.live, token)
}

// StartSweeper launches the background loop that discards prepared
// quizzes older than the expiry. Missed ticks collapse into one.
func (g *Games) StartSweeper() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			if removed := g.sweepExpired(time.Now()); removed > 0 {
				log.Printf("[REGISTRY] Swept %d expired prepared quizzes", removed)
			}
		}
	}()
}

// sweepExpired removes every prepared entry at least preparedExpiry
// old relative to now, returning how many were removed.
func (g *Games) sweepExpired(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for id, prep := range g.prepared {
		if now.Sub(prep.createdAt) >= preparedExpiry {
			delete(g.prepared, id)
			removed++
		}
	}
	return removed
}
