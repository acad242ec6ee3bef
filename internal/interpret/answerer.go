package interpret

import (
	"context"
	"fmt"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Answerer supplies the user's answer to one generated question. index is
// 1-based. Implementations may block on external input.
type Answerer interface {
	Answer(ctx context.Context, index int, question string) (string, error)
}

// ScriptedAnswerer answers from a fixed list in order.
type ScriptedAnswerer struct {
	answers []string
}

// NewScriptedAnswerer creates an answerer that replays answers
func NewScriptedAnswerer(answers []string) *ScriptedAnswerer {
	return &ScriptedAnswerer{answers: answers}
}

func (s *ScriptedAnswerer) Answer(ctx context.Context, index int, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if index < 1 || index > len(s.answers) {
		return "", types.InvalidInput("scripted answer",
			fmt.Errorf("no answer for question %d of %d scripted: %q", index, len(s.answers), question))
	}
	return s.answers[index-1], nil
}
