package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/dreamwhisper/internal/queue"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Submitter runs a transcription job to completion
type Submitter interface {
	Submit(ctx context.Context, job *queue.Job) (*types.TranscriptionResult, error)
}

// transcribeResponse is the success body shared by every transcription route
type transcribeResponse struct {
	Transcript string `json:"transcript"`
	FilePath   string `json:"file_path"`
}

func newTranscribeResponse(result *types.TranscriptionResult) transcribeResponse {
	return transcribeResponse{Transcript: result.Text, FilePath: result.LocalPath}
}

// errorStatus maps a failure to its HTTP status and detail message. Every
// kind shares one status; the kind only reaches the log.
func errorStatus(err error) (int, string) {
	return fiber.StatusInternalServerError, "An error occurred: " + err.Error()
}

func errorResponse(c *fiber.Ctx, err error) error {
	status, detail := errorStatus(err)
	kind := types.KindOf(err)
	if kind == "" {
		kind = "unclassified"
	}
	log.Printf("%s %s failed (%d, %s): %v", c.Method(), c.Path(), status, kind, err)
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}
