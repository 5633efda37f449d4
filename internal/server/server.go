// Package server exposes the HTTP boundary: quiz upload, image and QR
// serving, the socket upgrade, and the embedded frontend assets.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quizler/internal/game"
	"quizler/internal/session"
)

// Server holds the dependencies of the HTTP layer.
type Server struct {
	games    *game.Games
	upgrader websocket.Upgrader
}

// New creates a server around the shared game registry.
func New(games *game.Games) *Server {
	return &Server{
		games: games,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router configures all HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	// Permissive CORS so the frontend can be developed separately.
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}))

	r.POST("/api/quiz", s.handleCreateQuiz)
	r.GET("/api/quiz/socket", s.handleSocket)
	r.GET("/api/quiz/:token/:image", s.handleQuizImage)
	r.GET("/api/qr/:token", s.handleShareCode)

	r.NoRoute(s.handleAsset)

	return r
}

// handleSocket upgrades the connection and runs the session until it
// ends. The session owns the connection from here on.
func (s *Server) handleSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[HTTP] WebSocket upgrade error: %v", err)
		return
	}

	session.Start(conn, s.games)
}
