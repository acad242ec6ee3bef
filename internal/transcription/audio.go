package transcription

import (
	"path/filepath"
	"strings"
)

// supportedFormats are the containers the Whisper API accepts
var supportedFormats = []string{".flac", ".m4a", ".mp3", ".mp4", ".mpeg", ".mpga", ".oga", ".ogg", ".wav", ".webm"}

// ValidateAudioFormat checks if the file format is supported
func ValidateAudioFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// SupportedFormats lists accepted extensions, for error messages
func SupportedFormats() string {
	return strings.Join(supportedFormats, " ")
}
