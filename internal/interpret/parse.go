package interpret

import (
	"strings"
	"unicode"
)

// ParseQuestions extracts numbered questions from a model reply. A line is
// kept when one of its first two characters is a digit and it contains
// ". "; everything up to the first ". " is dropped. Other lines are ignored.
func ParseQuestions(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !numbered(line) {
			continue
		}
		_, question, ok := strings.Cut(line, ". ")
		if !ok {
			continue
		}
		if question = strings.TrimSpace(question); question != "" {
			questions = append(questions, question)
		}
	}
	return questions
}

func numbered(line string) bool {
	for i, r := range line {
		if i >= 2 {
			break
		}
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
