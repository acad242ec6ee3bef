package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/console"
	"github.com/codebuildervaibhav/dreamwhisper/internal/gateway"
	"github.com/codebuildervaibhav/dreamwhisper/internal/interpret"
	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

var version = "dev"

var errConfig = errors.New("configuration error")

type rootOptions struct {
	configFile    string
	envFile       string
	message       string
	messageFile   string
	answersFile   string
	skipQuestions bool
	debug         bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dreamwhisper",
		Short: "DreamWhisper - interpret a dream and picture it",
		Long: `DreamWhisper interprets a message with a language model, renders an image
from the interpretation, asks follow-up questions and renders a refined image
from your answers.

Answers are appended to the QA history file.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterpret(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "config/config.yaml", "Path to the YAML config file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to the .env file")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Message to interpret (prompted for when empty)")
	cmd.Flags().StringVar(&opts.messageFile, "message-file", "", "Read the message from a file")
	cmd.Flags().StringVar(&opts.answersFile, "answers", "", "YAML list of answers to use instead of prompting")
	cmd.Flags().BoolVar(&opts.skipQuestions, "skip-questions", false, "Stop after the first image")
	cmd.MarkFlagsMutuallyExclusive("message", "message-file")
	cmd.MarkFlagsMutuallyExclusive("answers", "skip-questions")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
	}

	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newEnvCommand(opts))

	return cmd
}

// execute runs the root command under a context cancelled by SIGINT or SIGTERM
func execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return newRootCommand().ExecuteContext(ctx)
}

// loadConfig loads .env without overriding the environment, then the YAML config
func loadConfig(opts *rootOptions) (*config.Config, error) {
	config.LoadEnv(false, opts.envFile)

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}
	return cfg, nil
}

func runInterpret(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateInterpret(); err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	chat, err := newCompleter(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	images, err := newImageGenerator(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	db, err := storage.NewMetadataDB(cfg.Storage.Database)
	if err != nil {
		log.Printf("Artifact index unavailable, continuing without it: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	prompter := console.NewPrompter(cmd.InOrStdin(), out)

	message, err := readMessage(ctx, opts, prompter)
	if err != nil {
		return err
	}

	var answerer interpret.Answerer = prompter
	switch {
	case opts.skipQuestions:
		answerer = nil
	case opts.answersFile != "":
		answers, err := loadAnswers(opts.answersFile)
		if err != nil {
			return err
		}
		answerer = interpret.NewScriptedAnswerer(answers)
	}

	in := interpret.NewInterpreter(chat, images, storage.NewLocalStorage(), storage.NewQAHistory(cfg.Storage.QAHistoryFile), interpret.Options{
		ImagesDir: cfg.Storage.ImagesDir,
		DB:        db,
		Progress:  progressPrinter(out, cfg.Interpret.ImageProvider),
	})

	_, err = in.Run(ctx, message, answerer)
	return err
}

func readMessage(ctx context.Context, opts *rootOptions, prompter *console.Prompter) (string, error) {
	switch {
	case opts.message != "":
		return opts.message, nil
	case opts.messageFile != "":
		data, err := os.ReadFile(opts.messageFile)
		if err != nil {
			return "", types.InvalidInput("reading message file", err)
		}
		message := strings.TrimSpace(string(data))
		if message == "" {
			return "", types.InvalidInput("reading message file", errors.New("message file is empty"))
		}
		return message, nil
	default:
		return prompter.ReadMessage(ctx)
	}
}

// loadAnswers reads a YAML sequence of strings
func loadAnswers(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.InvalidInput("reading answers file", err)
	}
	var answers []string
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, types.InvalidInput("parsing answers file", err)
	}
	return answers, nil
}

func newCompleter(cfg *config.Config) (gateway.Completer, error) {
	switch cfg.Interpret.ChatProvider {
	case "openai":
		return gateway.NewOpenAIClient(cfg.OpenAI)
	default:
		return gateway.NewAnthropicClient(cfg.Anthropic)
	}
}

func newImageGenerator(cfg *config.Config) (gateway.ImageGenerator, error) {
	switch cfg.Interpret.ImageProvider {
	case "stablediffusion":
		return gateway.NewStableDiffusionClient(cfg.StableDiffusion), nil
	default:
		return gateway.NewOpenAIClient(cfg.OpenAI)
	}
}

var imageProviderNames = map[string]string{
	"openai":          "DALL-E",
	"stablediffusion": "Stable Diffusion",
}

// progressPrinter writes each stage's output as the run advances
func progressPrinter(w io.Writer, imageProvider string) interpret.Progress {
	provider := imageProviderNames[imageProvider]
	if provider == "" {
		provider = imageProvider
	}

	return func(stage interpret.Stage, done bool, output string) {
		if !done {
			switch stage {
			case interpret.StageInterpreting:
				fmt.Fprintln(w, "\nGenerating interpretation...")
			case interpret.StageImagePrompt:
				fmt.Fprintln(w, "\nGenerating image prompt...")
			case interpret.StageImage:
				fmt.Fprintf(w, "\nGenerating image using %s...\n", provider)
			case interpret.StageQuestions:
				fmt.Fprintln(w, "\nGenerating questions...")
			case interpret.StageInterview:
				fmt.Fprintln(w, "\nPlease answer each question:")
			case interpret.StageUpdatedPrompt:
				fmt.Fprintln(w, "\nGenerating updated image prompt based on interpretation and your answers...")
			case interpret.StageUpdatedImage:
				fmt.Fprintf(w, "\nReGenerating image using %s...\n", provider)
			}
			return
		}

		switch stage {
		case interpret.StageInterpreting:
			fmt.Fprintf(w, "\nInterpretation:\n%s\n", output)
		case interpret.StageImagePrompt:
			fmt.Fprintf(w, "\nImage Prompt:\n%s\n", output)
		case interpret.StageImage, interpret.StageUpdatedImage:
			fmt.Fprintf(w, "\nImage saved to: %s\n", output)
		case interpret.StageQuestions:
			fmt.Fprintln(w, "\nQuestions:")
			for i, q := range strings.Split(output, "\n") {
				if q != "" {
					fmt.Fprintf(w, "%d. %s\n", i+1, q)
				}
			}
		case interpret.StageInterview:
			fmt.Fprintf(w, "\nStored Question-Answer Pairs:\n%s\n", output)
		case interpret.StageUpdatedPrompt:
			fmt.Fprintf(w, "\nUpdated Image Prompt:\n%s\n", output)
		}
	}
}
