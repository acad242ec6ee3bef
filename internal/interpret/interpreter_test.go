package interpret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/codebuildervaibhav/dreamwhisper/internal/gateway/gatewaymock"
	"github.com/codebuildervaibhav/dreamwhisper/internal/storage"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

type fixture struct {
	chat      *gatewaymock.MockCompleter
	images    *gatewaymock.MockImageGenerator
	history   *storage.QAHistory
	imagesDir string
	stages    []Stage
	in        *Interpreter
}

func newFixture(t *testing.T, db *storage.MetadataDB) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	f := &fixture{
		chat:      gatewaymock.NewMockCompleter(ctrl),
		images:    gatewaymock.NewMockImageGenerator(ctrl),
		history:   storage.NewQAHistory(filepath.Join(root, "qa_history.json")),
		imagesDir: filepath.Join(root, "generated_images"),
	}
	f.in = NewInterpreter(f.chat, f.images, storage.NewLocalStorage(), f.history, Options{
		ImagesDir: f.imagesDir,
		DB:        db,
		Progress: func(stage Stage, done bool, _ string) {
			if done {
				f.stages = append(f.stages, stage)
			}
		},
	})
	f.in.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.Local) }
	return f
}

func imageFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunHappyPath(t *testing.T) {
	db, err := storage.NewMetadataDB(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer db.Close()

	f := newFixture(t, db)
	ctx := context.Background()
	png := []byte{0x89, 'P', 'N', 'G'}

	gomock.InOrder(
		f.chat.EXPECT().Complete(ctx, interpretationPrompt("I was flying"), 300).Return("Freedom.", nil),
		f.chat.EXPECT().Complete(ctx, imagePromptPrompt("Freedom."), 200).Return("A bird over hills", nil),
		f.images.EXPECT().GenerateImage(ctx, "A bird over hills").Return(png, nil),
		f.chat.EXPECT().Complete(ctx, questionsPrompt("I was flying"), 300).Return("1. Where?\n2. How high?", nil),
		f.chat.EXPECT().Complete(ctx, gomock.Any(), 200).DoAndReturn(func(_ context.Context, prompt string, _ int) (string, error) {
			assert.Contains(t, prompt, "Original interpretation: Freedom.")
			assert.Contains(t, prompt, "Q: Where?\nA: Over the sea\nQ: How high?\nA: Very")
			return "A bird above the sea at dawn", nil
		}),
		f.images.EXPECT().GenerateImage(ctx, "A bird above the sea at dawn").Return(png, nil),
	)

	s, err := f.in.Run(ctx, "I was flying", NewScriptedAnswerer([]string{"Over the sea", " Very "}))
	require.NoError(t, err)

	assert.Equal(t, "Freedom.", s.Interpretation)
	assert.Equal(t, []string{"Where?", "How high?"}, s.Questions)
	assert.Equal(t, "A bird above the sea at dawn", s.UpdatedImagePrompt)
	assert.NotEqual(t, s.ImagePath, s.UpdatedImagePath)
	assert.Len(t, imageFiles(t, f.imagesDir), 2)

	got, err := os.ReadFile(s.UpdatedImagePath)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	stored, err := f.history.Load()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, types.QAPair{Question: "How high?", Answer: "Very", Timestamp: "2024-03-01T09:30:00.123456"}, stored[1])

	assert.Equal(t, []Stage{
		StageInterpreting, StageImagePrompt, StageImage, StageQuestions,
		StageInterview, StageUpdatedPrompt, StageUpdatedImage, StageDone,
	}, f.stages)

	images, err := db.ListArtifacts(types.KindImage, 10)
	require.NoError(t, err)
	assert.Len(t, images, 2)
	assert.Equal(t, types.SourceInterpret, images[0].SourceType)
}

func TestRunInterpretationFailureWritesNoImage(t *testing.T) {
	f := newFixture(t, nil)

	f.chat.EXPECT().Complete(gomock.Any(), gomock.Any(), 300).
		Return("", types.Upstream("claude messages", errors.New("overloaded")))

	s, err := f.in.Run(context.Background(), "I was flying", NewScriptedAnswerer(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
	assert.True(t, strings.HasPrefix(err.Error(), string(StageInterpreting)))
	assert.Empty(t, s.ImagePath)
	assert.Empty(t, imageFiles(t, f.imagesDir))
}

func TestRunImageFailureWritesNoImage(t *testing.T) {
	f := newFixture(t, nil)

	f.chat.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("text", nil).Times(2)
	f.images.EXPECT().GenerateImage(gomock.Any(), "text").
		Return(nil, types.Upstream("dall-e generation", errors.New("rate limited")))

	_, err := f.in.Run(context.Background(), "dream", nil)
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
	assert.Empty(t, imageFiles(t, f.imagesDir))
}

func TestRunWithoutAnswererStopsAfterFirstImage(t *testing.T) {
	f := newFixture(t, nil)

	f.chat.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("text", nil).Times(2)
	f.images.EXPECT().GenerateImage(gomock.Any(), "text").Return([]byte("png"), nil)

	s, err := f.in.Run(context.Background(), "dream", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ImagePath)
	assert.Empty(t, s.UpdatedImagePath)
	assert.Equal(t, []Stage{StageInterpreting, StageImagePrompt, StageImage, StageDone}, f.stages)
}

func TestInterpretRejectsEmptyMessage(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.in.Interpret(context.Background(), "  \n")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestInterviewAppendsNothingWhenAnswersRunOut(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.in.Interview(context.Background(), []string{"One?", "Two?"}, NewScriptedAnswerer([]string{"only one"}))
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, statErr := os.Stat(f.history.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestInterviewAppendsAcrossSessions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.in.Interview(ctx, []string{"A?", "B?"}, NewScriptedAnswerer([]string{"a", "b"}))
	require.NoError(t, err)
	_, err = f.in.Interview(ctx, []string{"C?"}, NewScriptedAnswerer([]string{"c"}))
	require.NoError(t, err)

	stored, err := f.history.Load()
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, []string{"A?", "B?", "C?"}, []string{stored[0].Question, stored[1].Question, stored[2].Question})
}

func TestInterviewIndexesHistoryFileSize(t *testing.T) {
	db, err := storage.NewMetadataDB(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer db.Close()

	f := newFixture(t, db)
	_, err = f.in.Interview(context.Background(), []string{"A?", "B?", "C?"}, NewScriptedAnswerer([]string{"a", "b", "c"}))
	require.NoError(t, err)

	info, err := os.Stat(f.history.Path())
	require.NoError(t, err)

	rows, err := db.ListArtifacts(types.KindQAHistory, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, info.Size(), rows[0].SizeBytes)
	assert.Greater(t, rows[0].SizeBytes, int64(3))
}

func TestCompleteTreatsBlankReplyAsUpstreamFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.chat.EXPECT().Complete(gomock.Any(), gomock.Any(), 200).Return("   ", nil)

	_, err := f.in.ImagePrompt(context.Background(), "Freedom.")
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
}
