package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quizler/internal/types"
)

// maxPartBytes caps each uploaded multipart part at 15 MB.
const maxPartBytes = 15 * 1024 * 1024

// configUpload is the JSON shape of the "config" part of an upload.
type configUpload struct {
	Name       string              `json:"name"`
	Text       string              `json:"text"`
	MaxPlayers int                 `json:"max_players"`
	Filtering  types.NameFiltering `json:"filtering"`
	Questions  []*types.Question   `json:"questions"`
}

// handleCreateQuiz accepts a multipart form holding one "config" part
// and any number of image parts whose field name is the image UUID.
// Responds 201 with the preparation id, or 400 with an error message.
func (s *Server) handleCreateQuiz(c *gin.Context) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		c.String(http.StatusBadRequest, "Expected multipart form data")
		return
	}

	var upload *configUpload
	images := make(map[uuid.UUID]types.Image)

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.String(http.StatusBadRequest, "Malformed multipart body")
			return
		}

		name := part.FormName()
		if name == "" {
			continue
		}

		data, err := readPart(part)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		if name == "config" {
			var cfg configUpload
			if err := json.Unmarshal(data, &cfg); err != nil {
				c.String(http.StatusBadRequest, "Invalid quiz config: %v", err)
				return
			}
			upload = &cfg
			continue
		}

		imageID, err := uuid.Parse(name)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid image UUID %q", name)
			return
		}

		mime := part.Header.Get("Content-Type")
		if mime == "" {
			c.String(http.StatusBadRequest, "Missing image mime type for %s", imageID)
			return
		}

		log.Printf("[HTTP] Received uploaded image (UUID: %s, Mime: %s, Size: %d)", imageID, mime, len(data))

		images[imageID] = types.Image{Mime: mime, Data: data}
	}

	if upload == nil {
		c.String(http.StatusBadRequest, "Missing config data")
		return
	}

	config := &types.GameConfig{
		Name:       upload.Name,
		Text:       upload.Text,
		MaxPlayers: upload.MaxPlayers,
		Filtering:  upload.Filtering,
		Questions:  upload.Questions,
		Images:     images,
	}

	if err := types.ValidateConfig(config); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	id := s.games.Prepare(config)

	c.JSON(http.StatusCreated, gin.H{"uuid": id})
}

// readPart reads one part fully, enforcing the per-part size cap.
func readPart(part *multipart.Part) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(part, maxPartBytes+1))
	if err != nil {
		return nil, errors.New("Failed to read multipart content")
	}
	if len(data) > maxPartBytes {
		return nil, errors.New("Uploaded content was too large")
	}
	return data, nil
}
