// Package interpret runs the dream interpretation chain: interpretation,
// image prompt, image, follow-up interview, refined prompt, second image.
package interpret

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/dreamwhisper/internal/gateway"
	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Stage names a step of Run.
type Stage string

const (
	StageInterpreting  Stage = "interpreting"
	StageImagePrompt   Stage = "image_prompt"
	StageImage         Stage = "image"
	StageQuestions     Stage = "questions"
	StageInterview     Stage = "interview"
	StageUpdatedPrompt Stage = "updated_prompt"
	StageUpdatedImage  Stage = "updated_image"
	StageDone          Stage = "done"
)

var (
	errEmptyMessage = errors.New("message is empty")
	errEmptyReply   = errors.New("model returned an empty reply")
)

// Progress is told when a stage starts (done=false) and when it finishes
// (done=true) with that stage's output.
type Progress func(stage Stage, done bool, output string)

// Session collects everything one Run produced.
type Session struct {
	ID                 string
	Message            string
	Interpretation     string
	ImagePrompt        string
	ImagePath          string
	Questions          []string
	QAPairs            []types.QAPair
	UpdatedImagePrompt string
	UpdatedImagePath   string
}

// Options configures an Interpreter. DB and Progress are optional.
type Options struct {
	ImagesDir string
	DB        *storage.MetadataDB
	Progress  Progress
}

// Interpreter drives the interpretation chain against the gateway ports
type Interpreter struct {
	chat      gateway.Completer
	images    gateway.ImageGenerator
	store     *storage.LocalStorage
	history   *storage.QAHistory
	db        *storage.MetadataDB
	imagesDir string
	progress  Progress
	now       func() time.Time
}

// NewInterpreter creates an interpreter
func NewInterpreter(chat gateway.Completer, images gateway.ImageGenerator, store *storage.LocalStorage, history *storage.QAHistory, opts Options) *Interpreter {
	progress := opts.Progress
	if progress == nil {
		progress = func(Stage, bool, string) {}
	}
	return &Interpreter{
		chat:      chat,
		images:    images,
		store:     store,
		history:   history,
		db:        opts.DB,
		imagesDir: opts.ImagesDir,
		progress:  progress,
		now:       time.Now,
	}
}

// Interpret asks the model for a reading of the message.
func (in *Interpreter) Interpret(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", types.InvalidInput("interpreting message", errEmptyMessage)
	}
	return in.complete(ctx, "interpreting message", interpretationPrompt(message), interpretationMaxTokens)
}

// ImagePrompt turns an interpretation into a short visual description.
func (in *Interpreter) ImagePrompt(ctx context.Context, interpretation string) (string, error) {
	return in.complete(ctx, "generating image prompt", imagePromptPrompt(interpretation), imagePromptMaxTokens)
}

// GenerateImage renders prompt and persists it as images/image_{stamp}.png.
// Nothing is written when generation fails.
func (in *Interpreter) GenerateImage(ctx context.Context, prompt string) (string, error) {
	png, err := in.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}

	path, err := in.store.Save(png, in.imagesDir, "image", "png")
	if err != nil {
		return "", err
	}

	in.index(&types.Artifact{
		Kind:      types.KindImage,
		Name:      filepath.Base(path),
		LocalPath: path,
		SizeBytes: int64(len(png)),
	})
	return path, nil
}

// GenerateQuestions asks for follow-up questions about the message and
// returns them parsed.
func (in *Interpreter) GenerateQuestions(ctx context.Context, message string) ([]string, error) {
	reply, err := in.complete(ctx, "generating questions", questionsPrompt(message), questionsMaxTokens)
	if err != nil {
		return nil, err
	}
	questions := ParseQuestions(reply)
	if len(questions) == 0 {
		log.Printf("No numbered questions found in reply: %q", reply)
	}
	return questions, nil
}

// Interview collects an answer to each question in order and appends the
// pairs to the QA history. Nothing is appended if any answer fails.
func (in *Interpreter) Interview(ctx context.Context, questions []string, answerer Answerer) ([]types.QAPair, error) {
	pairs := make([]types.QAPair, 0, len(questions))
	for i, question := range questions {
		answer, err := answerer.Answer(ctx, i+1, question)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, types.QAPair{
			Question:  question,
			Answer:    strings.TrimSpace(answer),
			Timestamp: in.now().Format(types.ISOTimestampLayout),
		})
	}

	total, err := in.history.Append(pairs)
	if err != nil {
		return nil, err
	}
	log.Printf("QA history %s now holds %d pairs", in.history.Path(), total)

	var size int64
	if info, err := os.Stat(in.history.Path()); err == nil {
		size = info.Size()
	}
	in.index(&types.Artifact{
		Kind:      types.KindQAHistory,
		Name:      filepath.Base(in.history.Path()),
		LocalPath: in.history.Path(),
		SizeBytes: size,
	})
	return pairs, nil
}

// UpdatedImagePrompt refines the visual description with the interview.
func (in *Interpreter) UpdatedImagePrompt(ctx context.Context, interpretation string, pairs []types.QAPair) (string, error) {
	return in.complete(ctx, "generating updated image prompt", updatedImagePromptPrompt(interpretation, pairs), updatedPromptMaxTokens)
}

type step struct {
	stage Stage
	run   func() (string, error)
}

// Run executes the whole chain and stops at the first failure, returning
// the partial session alongside the error. A nil answerer ends the run after
// the first image.
func (in *Interpreter) Run(ctx context.Context, message string, answerer Answerer) (*Session, error) {
	s := &Session{ID: uuid.New().String(), Message: message}
	log.Printf("Session %s: started", s.ID)

	var err error
	steps := []step{
		{StageInterpreting, func() (string, error) {
			s.Interpretation, err = in.Interpret(ctx, message)
			return s.Interpretation, err
		}},
		{StageImagePrompt, func() (string, error) {
			s.ImagePrompt, err = in.ImagePrompt(ctx, s.Interpretation)
			return s.ImagePrompt, err
		}},
		{StageImage, func() (string, error) {
			s.ImagePath, err = in.GenerateImage(ctx, s.ImagePrompt)
			return s.ImagePath, err
		}},
	}
	if answerer != nil {
		steps = append(steps, []step{
			{StageQuestions, func() (string, error) {
				s.Questions, err = in.GenerateQuestions(ctx, message)
				return strings.Join(s.Questions, "\n"), err
			}},
			{StageInterview, func() (string, error) {
				s.QAPairs, err = in.Interview(ctx, s.Questions, answerer)
				return formatQA(s.QAPairs), err
			}},
			{StageUpdatedPrompt, func() (string, error) {
				s.UpdatedImagePrompt, err = in.UpdatedImagePrompt(ctx, s.Interpretation, s.QAPairs)
				return s.UpdatedImagePrompt, err
			}},
			{StageUpdatedImage, func() (string, error) {
				s.UpdatedImagePath, err = in.GenerateImage(ctx, s.UpdatedImagePrompt)
				return s.UpdatedImagePath, err
			}},
		}...)
	}

	for _, st := range steps {
		in.progress(st.stage, false, "")
		output, err := st.run()
		if err != nil {
			log.Printf("Session %s: failed at stage %s: %v", s.ID, st.stage, err)
			return s, fmt.Errorf("%s: %w", st.stage, err)
		}
		in.progress(st.stage, true, output)
	}

	in.progress(StageDone, true, "")
	log.Printf("Session %s: %s", s.ID, StageDone)
	return s, nil
}

func (in *Interpreter) complete(ctx context.Context, op, prompt string, maxTokens int) (string, error) {
	reply, err := in.chat.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", types.Upstream(op, errEmptyReply)
	}
	return reply, nil
}

// index records an artifact; failures never fail the run
func (in *Interpreter) index(a *types.Artifact) {
	if in.db == nil {
		return
	}
	a.ID = uuid.New().String()
	a.SourceType = types.SourceInterpret
	a.CreatedAt = in.now()
	if err := in.db.SaveArtifact(a); err != nil {
		log.Printf("Indexing %s %s failed: %v", a.Kind, a.Name, err)
	}
}
