package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

func makePairs(prefix string, n int) []types.QAPair {
	pairs := make([]types.QAPair, n)
	for i := range pairs {
		pairs[i] = types.QAPair{
			Question:  fmt.Sprintf("%s question %d?", prefix, i),
			Answer:    fmt.Sprintf("%s answer %d", prefix, i),
			Timestamp: "2024-01-02T03:04:05.000006",
		}
	}
	return pairs
}

func readRawHistory(t *testing.T, path string) []types.QAPair {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var pairs []types.QAPair
	require.NoError(t, json.Unmarshal(data, &pairs))
	return pairs
}

func TestQAHistoryAppendAcrossInvocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_history.json")

	first := makePairs("first", 3)
	second := makePairs("second", 2)

	total, err := NewQAHistory(path).Append(first)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	// A fresh instance stands in for a second process run.
	total, err = NewQAHistory(path).Append(second)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	stored := readRawHistory(t, path)
	assert.Equal(t, append(append([]types.QAPair{}, first...), second...), stored)
}

func TestQAHistoryCorruptFileStartsEmpty(t *testing.T) {
	cases := map[string]string{
		"invalid json":   "{not json",
		"wrong shape":    `{"question": "q"}`,
		"missing fields": `[{"question": "q"}]`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "qa_history.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			total, err := NewQAHistory(path).Append(makePairs("new", 1))
			require.NoError(t, err)
			assert.Equal(t, 1, total)
			assert.Len(t, readRawHistory(t, path), 1)
		})
	}
}

func TestQAHistoryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "qa_history.json")
	h := NewQAHistory(path)

	pairs, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, pairs)

	_, err = h.Append(makePairs("x", 2))
	require.NoError(t, err)

	pairs, err = h.Load()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "x question 0?", pairs[0].Question)
}

func TestQAHistoryEmptyAppendWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_history.json")

	total, err := NewQAHistory(path).Append(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
