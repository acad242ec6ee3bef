package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Exit codes for different failure modes
const (
	ExitSuccess  = 0
	ExitError    = 1 // Upstream or storage failure
	ExitBadInput = 2 // Invalid input or configuration
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		if errors.Is(err, types.ErrInvalidInput) || errors.Is(err, errConfig) {
			os.Exit(ExitBadInput)
		}
		os.Exit(ExitError)
	}
}
