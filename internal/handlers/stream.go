package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"

	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/dreamwhisper/internal/queue"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

const (
	streamEndSignal       = "END"
	defaultStreamFilename = "stream_recording.webm"
)

// frameConn is the part of a websocket connection the stream handler uses
type frameConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
}

// StreamHandler transcribes audio streamed over a WebSocket
type StreamHandler struct {
	pool Submitter
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(pool Submitter) *StreamHandler {
	return &StreamHandler{
		pool: pool,
	}
}

// Handle processes WebSocket connections
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()
	h.serve(context.Background(), c)
}

// serve buffers binary frames until END, then replies with one JSON frame
func (h *StreamHandler) serve(ctx context.Context, c frameConn) {
	var (
		buffer   bytes.Buffer
		filename = defaultStreamFilename
	)

	log.Printf("WebSocket connection established")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Printf("WebSocket closed before END: %v", err)
			return
		}

		if messageType == websocket.TextMessage {
			msg := string(message)
			if msg == streamEndSignal {
				log.Printf("Received END signal, processing stream (%d bytes)", buffer.Len())
				break
			}
			if len(msg) > 0 && len(msg) < 200 {
				filename = msg
				if filepath.Ext(filename) == "" {
					filename += filepath.Ext(defaultStreamFilename)
				}
				log.Printf("Stream filename set to: %s", filename)
			}
			continue
		}

		if messageType == websocket.BinaryMessage {
			buffer.Write(message)
		}
	}

	var reply interface{}
	if buffer.Len() == 0 {
		_, detail := errorStatus(types.InvalidInput("reading stream", errors.New("no audio data received")))
		reply = map[string]string{"detail": detail}
	} else {
		job := queue.NewJob(types.SourceStream, types.UploadedAudio{
			Filename: filename,
			Content:  buffer.Bytes(),
		})
		result, err := h.pool.Submit(ctx, job)
		if err != nil {
			_, detail := errorStatus(err)
			reply = map[string]string{"detail": detail}
		} else {
			reply = newTranscribeResponse(result)
		}
	}

	if err := c.WriteJSON(reply); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}
