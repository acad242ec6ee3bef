package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

func TestReadMessageStopsAtBlankLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("I was flying\nover a city\n\nleftover\n"), &out)

	msg, err := p.ReadMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "I was flying\nover a city", msg)
	assert.Contains(t, out.String(), "press Enter twice to finish")
}

func TestReadMessageAtEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader("no trailing newline"), &bytes.Buffer{})

	msg, err := p.ReadMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no trailing newline", msg)
}

func TestReadMessageEmpty(t *testing.T) {
	p := NewPrompter(strings.NewReader("\n"), &bytes.Buffer{})

	_, err := p.ReadMessage(context.Background())
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestAnswerSharesInputWithMessage(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("dream\n\n  blue  \r\nyes\n"), &out)
	ctx := context.Background()

	_, err := p.ReadMessage(ctx)
	require.NoError(t, err)

	a1, err := p.Answer(ctx, 1, "What colour?")
	require.NoError(t, err)
	a2, err := p.Answer(ctx, 2, "Again?")
	require.NoError(t, err)

	assert.Equal(t, "blue", a1)
	assert.Equal(t, "yes", a2)
	assert.Contains(t, out.String(), "Question 1: What colour?")
	assert.Contains(t, out.String(), "Your answer: ")
}

func TestAnswerInputClosed(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Answer(context.Background(), 1, "Anything?")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}
