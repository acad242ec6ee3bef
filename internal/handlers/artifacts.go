package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

const (
	defaultArtifactLimit = 50
	maxArtifactLimit     = 500
)

// ArtifactsHandler serves the artifact index
type ArtifactsHandler struct {
	db *storage.MetadataDB
}

// NewArtifactsHandler creates a new artifacts handler
func NewArtifactsHandler(db *storage.MetadataDB) *ArtifactsHandler {
	return &ArtifactsHandler{db: db}
}

// List returns indexed artifacts, newest first. Supports ?kind= and ?limit=.
func (h *ArtifactsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultArtifactLimit)
	if limit <= 0 || limit > maxArtifactLimit {
		limit = defaultArtifactLimit
	}

	artifacts, err := h.db.ListArtifacts(c.Query("kind"), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(artifacts)
}

// TranscriptText returns the stored transcript text for an ID
func (h *ArtifactsHandler) TranscriptText(c *fiber.Ctx) error {
	a, err := h.db.GetArtifact(c.Params("id"))
	if errors.Is(err, storage.ErrArtifactNotFound) || (err == nil && a.Kind != types.KindTranscript) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Transcript not found"})
	}
	if err != nil {
		return errorResponse(c, err)
	}

	content, err := os.ReadFile(a.LocalPath)
	if err != nil {
		return errorResponse(c, types.Storage("reading transcript file", err))
	}
	return c.SendString(string(content))
}
