package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

func openTestDB(t *testing.T) *MetadataDB {
	t.Helper()
	db, err := NewMetadataDB(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMetadataSaveAndGet(t *testing.T) {
	db := openTestDB(t)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveArtifact(&types.Artifact{
		ID:         "job-1",
		Kind:       types.KindTranscript,
		SourceType: types.SourceUpload,
		Name:       "../dream.m4a",
		LocalPath:  "transcripts/transcript_20240501_120000.txt",
		SizeBytes:  11,
		WordCount:  2,
		CreatedAt:  created,
	}))

	a, err := db.GetArtifact("job-1")
	require.NoError(t, err)
	assert.Equal(t, types.KindTranscript, a.Kind)
	assert.Equal(t, "dream.m4a", a.Name)
	assert.Equal(t, int64(11), a.SizeBytes)
	assert.Equal(t, 2, a.WordCount)
	assert.True(t, created.Equal(a.CreatedAt))

	_, err = db.GetArtifact("missing")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestMetadataListFiltersAndOrders(t *testing.T) {
	db := openTestDB(t)

	for _, a := range []types.Artifact{
		{ID: "t1", Kind: types.KindTranscript, SourceType: types.SourceUpload, Name: "a", LocalPath: "a"},
		{ID: "i1", Kind: types.KindImage, SourceType: types.SourceInterpret, Name: "b", LocalPath: "b"},
		{ID: "t2", Kind: types.KindTranscript, SourceType: types.SourceStream, Name: "c", LocalPath: "c"},
	} {
		a := a
		require.NoError(t, db.SaveArtifact(&a))
	}

	all, err := db.ListArtifacts("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t2", all[0].ID)

	transcripts, err := db.ListArtifacts(types.KindTranscript, 10)
	require.NoError(t, err)
	require.Len(t, transcripts, 2)
	assert.Equal(t, []string{"t2", "t1"}, []string{transcripts[0].ID, transcripts[1].ID})

	limited, err := db.ListArtifacts("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMetadataSetRemoteURL(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveArtifact(&types.Artifact{ID: "t1", Kind: types.KindTranscript, SourceType: types.SourceUpload, Name: "a", LocalPath: "a"}))
	require.NoError(t, db.SetRemoteURL("t1", "https://example.test/t1"))

	a, err := db.GetArtifact("t1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/t1", a.RemoteURL)

	assert.ErrorIs(t, db.SetRemoteURL("nope", "x"), ErrArtifactNotFound)
}
