package handlers

import (
	"fmt"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/dreamwhisper/internal/queue"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// TranscribeHandler handles multipart audio uploads
type TranscribeHandler struct {
	pool      Submitter
	maxSizeMB int
}

// NewTranscribeHandler creates a new upload handler
func NewTranscribeHandler(pool Submitter, maxSizeMB int) *TranscribeHandler {
	return &TranscribeHandler{
		pool:      pool,
		maxSizeMB: maxSizeMB,
	}
}

// Handle transcribes the multipart field "audio" and replies with the text
// and the saved transcript path.
func (h *TranscribeHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return errorResponse(c, types.InvalidInput("reading upload", fmt.Errorf("no audio file uploaded: %w", err)))
	}

	log.Printf("Received file: %s", file.Filename)

	if h.maxSizeMB > 0 && file.Size > int64(h.maxSizeMB)*1024*1024 {
		return errorResponse(c, types.InvalidInput("reading upload", fmt.Errorf("file too large (max %dMB)", h.maxSizeMB)))
	}

	f, err := file.Open()
	if err != nil {
		return errorResponse(c, types.Storage("opening upload", err))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return errorResponse(c, types.Storage("reading upload", err))
	}

	job := queue.NewJob(types.SourceUpload, types.UploadedAudio{
		Filename: file.Filename,
		Content:  content,
	})

	result, err := h.pool.Submit(c.UserContext(), job)
	if err != nil {
		return errorResponse(c, err)
	}

	log.Printf("Transcription received for job %s", job.ID)
	return c.JSON(newTranscribeResponse(result))
}
