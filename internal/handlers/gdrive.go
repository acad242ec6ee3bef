package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/dreamwhisper/internal/queue"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

const driveDownloadURL = "https://drive.google.com/uc?export=download&id=%s"

var (
	driveFilePattern  = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveQueryPattern = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	driveBarePattern  = regexp.MustCompile(`^([a-zA-Z0-9_-]{25,40})$`)
)

// GDriveHandler transcribes audio shared through a Google Drive link
type GDriveHandler struct {
	pool        Submitter
	maxSizeMB   int
	client      *http.Client
	downloadURL string
}

// NewGDriveHandler creates a new Google Drive handler
func NewGDriveHandler(pool Submitter, maxSizeMB int) *GDriveHandler {
	return &GDriveHandler{
		pool:        pool,
		maxSizeMB:   maxSizeMB,
		client:      &http.Client{Timeout: 5 * time.Minute},
		downloadURL: driveDownloadURL,
	}
}

// GDriveRequest represents the request body
type GDriveRequest struct {
	URL string `json:"url"`
}

// Handle downloads the linked file and transcribes it
func (h *GDriveHandler) Handle(c *fiber.Ctx) error {
	var req GDriveRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, types.InvalidInput("parsing request body", err))
	}
	if req.URL == "" {
		return errorResponse(c, types.InvalidInput("parsing request body", errors.New("url is required")))
	}

	fileID := extractGDriveFileID(req.URL)
	if fileID == "" {
		return errorResponse(c, types.InvalidInput("parsing drive link", fmt.Errorf("invalid Google Drive URL %q", req.URL)))
	}

	audio, err := h.download(c, fileID)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.pool.Submit(c.UserContext(), queue.NewJob(types.SourceGDrive, audio))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(newTranscribeResponse(result))
}

func (h *GDriveHandler) download(c *fiber.Ctx, fileID string) (types.UploadedAudio, error) {
	log.Printf("Downloading from Google Drive: %s", fileID)

	req, err := http.NewRequestWithContext(c.UserContext(), http.MethodGet, fmt.Sprintf(h.downloadURL, fileID), nil)
	if err != nil {
		return types.UploadedAudio{}, types.InvalidInput("building drive request", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return types.UploadedAudio{}, types.Upstream("downloading from drive", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.UploadedAudio{}, types.InvalidInput("downloading from drive",
			fmt.Errorf("file not accessible (status %d); it may be private or not exist", resp.StatusCode))
	}

	var body io.Reader = resp.Body
	limit := int64(h.maxSizeMB) * 1024 * 1024
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return types.UploadedAudio{}, types.Upstream("downloading from drive", err)
	}
	if limit > 0 && int64(len(content)) > limit {
		return types.UploadedAudio{}, types.InvalidInput("downloading from drive", fmt.Errorf("file too large (max %dMB)", h.maxSizeMB))
	}

	log.Printf("Downloaded %s (%d bytes)", fileID, len(content))
	return types.UploadedAudio{
		Filename: driveFilename(resp.Header.Get("Content-Disposition"), fileID),
		Content:  content,
	}, nil
}

// driveFilename prefers the served filename and falls back to {id}.mp3
func driveFilename(disposition, fileID string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "." && name != "/" && filepath.Ext(name) != "" {
			return name
		}
	}
	return fileID + ".mp3"
}

// extractGDriveFileID extracts the file ID from various Google Drive URL formats
func extractGDriveFileID(url string) string {
	// https://drive.google.com/file/d/{ID}/view
	if matches := driveFilePattern.FindStringSubmatch(url); len(matches) > 1 {
		return matches[1]
	}

	// https://drive.google.com/open?id={ID}
	if matches := driveQueryPattern.FindStringSubmatch(url); len(matches) > 1 {
		return matches[1]
	}

	if matches := driveBarePattern.FindStringSubmatch(url); len(matches) > 1 {
		return matches[1]
	}

	return ""
}
