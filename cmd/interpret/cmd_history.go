package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

const (
	historyTimeWidth     = 26
	historyQuestionWidth = 48
	historyAnswerWidth   = 40
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored question and answer pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			pairs, err := storage.NewQAHistory(cfg.Storage.QAHistoryFile).Load()
			if err != nil {
				return err
			}
			if limit > 0 && len(pairs) > limit {
				pairs = pairs[len(pairs)-limit:]
			}

			printHistory(cmd.OutOrStdout(), pairs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show only the most recent N pairs (0 for all)")
	return cmd
}

func printHistory(w io.Writer, pairs []types.QAPair) {
	if len(pairs) == 0 {
		fmt.Fprintln(w, "No questions answered yet.")
		return
	}

	fmt.Fprintf(w, "%s  %s  %s\n",
		padRight("TIME", historyTimeWidth),
		padRight("QUESTION", historyQuestionWidth),
		"ANSWER")
	fmt.Fprintln(w, strings.Repeat("-", historyTimeWidth+historyQuestionWidth+historyAnswerWidth+4))

	for _, qa := range pairs {
		fmt.Fprintf(w, "%s  %s  %s\n",
			padRight(truncate(qa.Timestamp, historyTimeWidth), historyTimeWidth),
			padRight(truncate(qa.Question, historyQuestionWidth), historyQuestionWidth),
			truncate(qa.Answer, historyAnswerWidth))
	}
}

// truncate shortens s to width display cells, ending in "…" when cut.
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
