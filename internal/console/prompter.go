// Package console reads the dream message and interview answers from the
// user's terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

var errInputClosed = errors.New("input closed before an answer was given")

// Prompter asks questions on a terminal using huh forms, or reads plain
// lines when the input is not a terminal (pipes, tests).
type Prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
	tty    bool
}

// NewPrompter creates a prompter over in and out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: in, out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = true
	} else {
		p.reader = bufio.NewReader(in)
	}
	return p
}

// Answer prompts for the answer to question number index.
func (p *Prompter) Answer(ctx context.Context, index int, question string) (string, error) {
	if p.tty {
		var answer string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Question %d: %s", index, question)).
					Prompt("Your answer: ").
					Value(&answer),
			),
		).WithInput(p.in).WithOutput(p.out).RunWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("prompting question %d: %w", index, err)
		}
		return strings.TrimSpace(answer), nil
	}

	fmt.Fprintf(p.out, "\nQuestion %d: %s\n", index, question)
	fmt.Fprint(p.out, "Your answer: ")
	line, err := p.readLine()
	if err != nil {
		return "", types.InvalidInput(fmt.Sprintf("reading answer %d", index), err)
	}
	return strings.TrimSpace(line), nil
}

// ReadMessage collects the message to interpret. On a terminal it opens a
// multi-line editor; otherwise it reads lines until the first blank line.
func (p *Prompter) ReadMessage(ctx context.Context) (string, error) {
	var message string

	if p.tty {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewText().
					Title("Please enter your message").
					Description("Describe the dream or message to interpret").
					Value(&message),
			),
		).WithInput(p.in).WithOutput(p.out).RunWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("reading message: %w", err)
		}
	} else {
		fmt.Fprintln(p.out, "Please enter your message (press Enter twice to finish):")
		var lines []string
		for {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			line, err := p.readLine()
			if err != nil && !errors.Is(err, errInputClosed) {
				return "", err
			}
			if line == "" {
				break
			}
			lines = append(lines, line)
		}
		message = strings.Join(lines, "\n")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", types.InvalidInput("reading message", errors.New("message is empty"))
	}
	return message, nil
}

// readLine returns one line without its terminator. A final unterminated
// line is returned as is; EOF with nothing read is errInputClosed.
func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", errInputClosed
		}
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
