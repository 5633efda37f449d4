package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"quizler/internal/types"
)

// handleQuizImage serves an image stored in a live game's config.
func (s *Server) handleQuizImage(c *gin.Context) {
	token, err := types.ParseToken(c.Param("token"))
	if err != nil {
		c.String(http.StatusBadRequest, "The target game could not be found")
		return
	}

	g := s.games.GetGame(token)
	if g == nil {
		c.String(http.StatusBadRequest, "The target game could not be found")
		return
	}

	imageID, err := uuid.Parse(c.Param("image"))
	if err != nil {
		c.String(http.StatusBadRequest, "The target image could not be found")
		return
	}

	image, ok := g.GetImage(imageID)
	if !ok {
		c.String(http.StatusBadRequest, "The target image could not be found")
		return
	}

	c.Data(http.StatusOK, image.Mime, image.Data)
}

// qrSize is the pixel size of generated share codes, sized for phones.
const qrSize = 320

// handleShareCode renders a PNG QR code that opens the join page with
// the game code pre-filled.
func (s *Server) handleShareCode(c *gin.Context) {
	token, err := types.ParseToken(c.Param("token"))
	if err != nil || !s.games.IsGame(token) {
		c.String(http.StatusBadRequest, "The target game could not be found")
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	url := fmt.Sprintf("%s://%s/?connect=%s", scheme, c.Request.Host, token)

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
