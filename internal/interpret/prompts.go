package interpret

import (
	"fmt"
	"strings"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Reply budgets per step.
const (
	interpretationMaxTokens = 300
	imagePromptMaxTokens    = 200
	questionsMaxTokens      = 300
	updatedPromptMaxTokens  = 200
)

func interpretationPrompt(message string) string {
	return "Please provide a thoughtful interpretation of this message, analyzing its main points and underlying meaning: " + message
}

func imagePromptPrompt(interpretation string) string {
	return fmt.Sprintf("Based on this interpretation: '%s', create a detailed visual description that could be used as a prompt for Stable Diffusion image generation. "+
		"Make it vivid and specific, but keep it under 75 words. Focus on visual elements that would make a compelling image.", interpretation)
}

func questionsPrompt(message string) string {
	return "Based on this message, generate 5 thought-provoking but simple questions that would help understand the message better. " +
		"Format each question on a new line with a number: " + message
}

func updatedImagePromptPrompt(interpretation string, pairs []types.QAPair) string {
	var b strings.Builder
	b.WriteString("Based on this interpretation and the user's answers to follow-up questions, create a detailed visual description for image generation.\n\n")
	fmt.Fprintf(&b, "Original interpretation: %s\n\n", interpretation)
	b.WriteString("Q&A Context:\n")
	b.WriteString(formatQA(pairs))
	b.WriteString("\n\nCreate a vivid and specific visual description under 75 words that incorporates both the interpretation and the personal insights from the Q&A. ")
	b.WriteString("Focus on visual elements that would make a compelling image.")
	return b.String()
}

// formatQA renders pairs as "Q: ...\nA: ..." blocks joined by newlines.
func formatQA(pairs []types.QAPair) string {
	lines := make([]string, 0, len(pairs))
	for _, qa := range pairs {
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", qa.Question, qa.Answer))
	}
	return strings.Join(lines, "\n")
}
