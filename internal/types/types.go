package types

import "time"

// Job status constants
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Source type constants
const (
	SourceUpload    = "upload"
	SourceGDrive    = "gdrive"
	SourceStream    = "stream"
	SourceInterpret = "interpret"
)

// Artifact kinds recorded in the metadata index
const (
	KindTranscript = "transcript"
	KindImage      = "image"
	KindQAHistory  = "qa_history"
)

// TimestampLayout is the second-granularity stamp embedded in artifact filenames.
const TimestampLayout = "20060102_150405"

// ISOTimestampLayout matches Python's datetime.isoformat() for local times.
const ISOTimestampLayout = "2006-01-02T15:04:05.000000"

// UploadedAudio is one inbound audio blob. It lives only for a single request.
type UploadedAudio struct {
	Filename string
	Content  []byte
}

// TranscriptionResult represents the output of one transcription run
type TranscriptionResult struct {
	JobID       string
	Text        string
	WordCount   int
	ProcessedAt time.Time
	LocalPath   string
	RemoteURL   string
}

// QAPair is one answered follow-up question.
type QAPair struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Artifact is a row of the metadata index.
type Artifact struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	SourceType string    `json:"source_type"`
	Name       string    `json:"name"`
	LocalPath  string    `json:"local_path"`
	RemoteURL  string    `json:"remote_url,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	WordCount  int       `json:"word_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
