package transcription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/dreamwhisper/internal/gateway"
	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Stage is a step of one transcription run.
type Stage string

const (
	StageReceived     Stage = "received"
	StageStaged       Stage = "staged"
	StageTranscribing Stage = "transcribing"
	StagePersisted    Stage = "persisted"
	StageCleanedUp    Stage = "cleaned_up"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

const mirrorAttempts = 3

var (
	errNoAudio           = errors.New("uploaded audio is empty")
	errUnsupportedFormat = errors.New("unsupported audio format")
)

// Options configures a Pipeline. DB and Mirror are optional.
type Options struct {
	TempDir        string
	TranscriptsDir string
	DB             *storage.MetadataDB
	Mirror         storage.Mirror
}

// Pipeline stages an upload, transcribes it and persists the transcript.
// Each run stages to its own file, so runs may proceed concurrently.
type Pipeline struct {
	transcriber    gateway.Transcriber
	store          *storage.LocalStorage
	db             *storage.MetadataDB
	mirror         storage.Mirror
	tempDir        string
	transcriptsDir string
	mirrorBackoff  func(attempt int) time.Duration
}

// NewPipeline creates a transcription pipeline
func NewPipeline(transcriber gateway.Transcriber, store *storage.LocalStorage, opts Options) *Pipeline {
	return &Pipeline{
		transcriber:    transcriber,
		store:          store,
		db:             opts.DB,
		mirror:         opts.Mirror,
		tempDir:        opts.TempDir,
		transcriptsDir: opts.TranscriptsDir,
		mirrorBackoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
	}
}

// Run executes one transcription. An empty jobID gets a fresh UUID.
// The staged file is removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, jobID, sourceType string, audio types.UploadedAudio) (*types.TranscriptionResult, error) {
	if jobID == "" {
		jobID = uuid.New().String()
	}

	stage := StageReceived
	log.Printf("Job %s: processing file %q (%s)", jobID, audio.Filename, sourceType)

	fail := func(err error) (*types.TranscriptionResult, error) {
		log.Printf("Job %s: %s at stage %s: %v", jobID, StageFailed, stage, err)
		return nil, err
	}

	if len(audio.Content) == 0 {
		return fail(types.InvalidInput("validating upload", errNoAudio))
	}
	if !ValidateAudioFormat(audio.Filename) {
		return fail(types.InvalidInput("validating upload",
			fmt.Errorf("%w %q (supported: %s)", errUnsupportedFormat, filepath.Ext(audio.Filename), SupportedFormats())))
	}

	stagedPath, err := p.stage(jobID, audio)
	if err != nil {
		return fail(err)
	}
	defer func() {
		cleanupTempFile(stagedPath)
		log.Printf("Job %s: %s %s", jobID, StageCleanedUp, stagedPath)
	}()
	stage = StageStaged

	staged, err := os.ReadFile(stagedPath)
	if err != nil {
		return fail(types.Storage("reading staged audio", err))
	}

	stage = StageTranscribing
	text, err := p.transcriber.Transcribe(ctx, staged, filepath.Base(stagedPath))
	if err != nil {
		return fail(err)
	}

	localPath, err := p.store.SaveText(text, p.transcriptsDir, "transcript")
	if err != nil {
		return fail(err)
	}
	stage = StagePersisted

	result := &types.TranscriptionResult{
		JobID:       jobID,
		Text:        text,
		WordCount:   len(strings.Fields(text)),
		ProcessedAt: time.Now(),
		LocalPath:   localPath,
	}

	p.index(sourceType, audio.Filename, result)
	p.mirrorTranscript(ctx, result)

	log.Printf("Job %s: %s (local: %s, words: %d)", jobID, StageDone, localPath, result.WordCount)
	return result, nil
}

// stage writes the upload to {tempDir}/{jobID}{ext}
func (p *Pipeline) stage(jobID string, audio types.UploadedAudio) (string, error) {
	if err := os.MkdirAll(p.tempDir, 0755); err != nil {
		return "", types.Storage("creating temp directory", err)
	}

	ext := strings.ToLower(filepath.Ext(audio.Filename))
	stagedPath := filepath.Join(p.tempDir, jobID+ext)

	if err := os.WriteFile(stagedPath, audio.Content, 0644); err != nil {
		cleanupTempFile(stagedPath)
		return "", types.Storage("staging upload", err)
	}

	log.Printf("Job %s: saved file to %s, size: %d bytes", jobID, stagedPath, len(audio.Content))
	return stagedPath, nil
}

// index records the transcript; failures never fail the run
func (p *Pipeline) index(sourceType, filename string, result *types.TranscriptionResult) {
	if p.db == nil {
		return
	}

	err := p.db.SaveArtifact(&types.Artifact{
		ID:         result.JobID,
		Kind:       types.KindTranscript,
		SourceType: sourceType,
		Name:       filename,
		LocalPath:  result.LocalPath,
		SizeBytes:  int64(len(result.Text)),
		WordCount:  result.WordCount,
		CreatedAt:  result.ProcessedAt,
	})
	if err != nil {
		log.Printf("Job %s: database save failed: %v", result.JobID, err)
	}
}

// mirrorTranscript uploads with retry; the local copy stays authoritative
func (p *Pipeline) mirrorTranscript(ctx context.Context, result *types.TranscriptionResult) {
	if p.mirror == nil {
		return
	}

	name := filepath.Base(result.LocalPath)
	var err error
	for attempt := 1; attempt <= mirrorAttempts; attempt++ {
		var url string
		url, err = p.mirror.Upload(ctx, name, []byte(result.Text))
		if err == nil {
			result.RemoteURL = url
			break
		}
		log.Printf("Job %s: %s upload attempt %d/%d failed: %v", result.JobID, p.mirror.Name(), attempt, mirrorAttempts, err)
		if attempt < mirrorAttempts {
			select {
			case <-ctx.Done():
				log.Printf("Job %s: WARNING - mirror upload abandoned: %v", result.JobID, ctx.Err())
				return
			case <-time.After(p.mirrorBackoff(attempt)):
			}
		}
	}
	if err != nil {
		log.Printf("Job %s: WARNING - %s upload failed after %d attempts, continuing with local save only", result.JobID, p.mirror.Name(), mirrorAttempts)
		return
	}

	if p.db != nil {
		if err := p.db.SetRemoteURL(result.JobID, result.RemoteURL); err != nil {
			log.Printf("Job %s: recording remote url failed: %v", result.JobID, err)
		}
	}
}

// cleanupTempFile removes a temporary file
func cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to cleanup temp file %s: %v", filePath, err)
	}
}
