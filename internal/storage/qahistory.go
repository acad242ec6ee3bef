package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

const qaHistorySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question", "answer", "timestamp"],
    "properties": {
      "question": {"type": "string"},
      "answer": {"type": "string"},
      "timestamp": {"type": "string"}
    }
  }
}`

var qaHistorySchema = mustCompileSchema(qaHistorySchemaJSON, "qa_history.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// QAHistory is the cumulative question/answer log, one JSON array on disk.
// Appends within a process are serialized; separate processes still race
// and the last writer wins.
type QAHistory struct {
	path string
	mu   sync.Mutex
}

// NewQAHistory creates a history backed by path
func NewQAHistory(path string) *QAHistory {
	return &QAHistory{path: path}
}

// Path returns the backing file.
func (h *QAHistory) Path() string {
	return h.path
}

// Load returns the stored pairs in append order. A missing, unreadable as
// JSON, or schema-invalid file reads as empty.
func (h *QAHistory) Load() ([]types.QAPair, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

// Append adds pairs after the existing entries and rewrites the whole file.
// It returns the total number of stored pairs.
func (h *QAHistory) Append(pairs []types.QAPair) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	existing, err := h.load()
	if err != nil {
		return 0, err
	}

	all := append(existing, pairs...)
	if all == nil {
		all = []types.QAPair{}
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return 0, types.Storage("encoding qa history", err)
	}

	if err := writeFileAtomic(h.path, data); err != nil {
		return 0, types.Storage("writing qa history", err)
	}

	return len(all), nil
}

func (h *QAHistory) load() ([]types.QAPair, error) {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, types.Storage("reading qa history", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("QA history %s is not valid JSON, starting empty: %v", h.path, err)
		return nil, nil
	}
	if err := qaHistorySchema.Validate(doc); err != nil {
		log.Printf("QA history %s does not match schema, starting empty: %v", h.path, err)
		return nil, nil
	}

	var pairs []types.QAPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		log.Printf("QA history %s could not be decoded, starting empty: %v", h.path, err)
		return nil, nil
	}
	return pairs, nil
}

// writeFileAtomic writes data to a sibling temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
