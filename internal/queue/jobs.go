package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Job represents a transcription job
type Job struct {
	ID         string
	SourceType string
	Audio      types.UploadedAudio
	Status     string
	Error      error
	Result     *types.TranscriptionResult
	CreatedAt  time.Time

	done chan struct{}
}

// NewJob creates a new job with default values
func NewJob(sourceType string, audio types.UploadedAudio) *Job {
	return &Job{
		ID:         uuid.New().String(),
		SourceType: sourceType,
		Audio:      audio,
		Status:     types.StatusQueued,
		CreatedAt:  time.Now(),
		done:       make(chan struct{}),
	}
}

// Done is closed once the job has completed or failed
func (j *Job) Done() <-chan struct{} {
	return j.done
}
