package retrieval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"eduplatform/internal/models"
)

type fakeSegmentStore struct {
	segments map[string][]models.Segment
	replaces int
	failList bool
}

func newFakeSegmentStore() *fakeSegmentStore {
	return &fakeSegmentStore{segments: map[string][]models.Segment{}}
}

func (f *fakeSegmentStore) ReplaceSegments(_ context.Context, courseID string, segs []models.Segment) error {
	f.segments[courseID] = segs
	f.replaces++
	return nil
}

func (f *fakeSegmentStore) ListSegments(_ context.Context, courseID string) ([]models.Segment, error) {
	if f.failList {
		return nil, fmt.Errorf("store down")
	}
	return f.segments[courseID], nil
}

func (f *fakeSegmentStore) CountSegments(_ context.Context, courseID string) (int, error) {
	return len(f.segments[courseID]), nil
}

func seedSegments(n int) []models.Segment {
	out := make([]models.Segment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Segment{
			SegmentID:     fmt.Sprintf("seg-%d", i),
			CourseID:      "course-1",
			SequenceIndex: i,
			Text:          fmt.Sprintf("segment %d body", i),
		})
	}
	return out
}

func TestSampleSegmentsEvenStride(t *testing.T) {
	segs := seedSegments(10)

	got, err := SampleSegments(segs, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 0, got[0].SequenceIndex)
	require.Equal(t, 3, got[1].SequenceIndex)
	require.Equal(t, 6, got[2].SequenceIndex)

	// Deterministic: same input, same pick.
	again, err := SampleSegments(segs, 3)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestSampleSegmentsBounds(t *testing.T) {
	segs := seedSegments(4)

	all, err := SampleSegments(segs, 10)
	require.NoError(t, err)
	require.Len(t, all, 4, "fewer segments than requested returns everything")

	one, err := SampleSegments(segs, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	require.Equal(t, 0, one[0].SequenceIndex)

	_, err = SampleSegments(segs, 0)
	require.Error(t, err)

	empty, err := SampleSegments(nil, 3)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRetrieverFullContext(t *testing.T) {
	store := newFakeSegmentStore()
	store.segments["course-1"] = []models.Segment{
		{Text: "first part"},
		{Text: "second part"},
	}
	r := NewRetriever(store)

	ctx, err := r.FullContext(context.Background(), "course-1")
	require.NoError(t, err)
	require.Equal(t, "first part\n\nsecond part", ctx)
}

func TestRetrieverByKeyword(t *testing.T) {
	store := newFakeSegmentStore()
	store.segments["course-1"] = []models.Segment{
		{SequenceIndex: 0, Text: "Photosynthesis converts light"},
		{SequenceIndex: 1, Text: "Mitochondria produce energy"},
		{SequenceIndex: 2, Text: "More on PHOTOSYNTHESIS here"},
	}
	r := NewRetriever(store)

	got, err := r.ByKeyword(context.Background(), "course-1", "photosynthesis")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 0, got[0].SequenceIndex)
	require.Equal(t, 2, got[1].SequenceIndex)

	all, err := r.ByKeyword(context.Background(), "course-1", "  ")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestRetrieverIsIndexed(t *testing.T) {
	store := newFakeSegmentStore()
	r := NewRetriever(store)

	indexed, err := r.IsIndexed(context.Background(), "course-1")
	require.NoError(t, err)
	require.False(t, indexed)

	store.segments["course-1"] = seedSegments(2)
	indexed, err = r.IsIndexed(context.Background(), "course-1")
	require.NoError(t, err)
	require.True(t, indexed)
}

func TestRetrieverStoreErrorPropagates(t *testing.T) {
	store := newFakeSegmentStore()
	store.failList = true
	r := NewRetriever(store)

	_, err := r.Sample(context.Background(), "course-1", 2)
	require.Error(t, err)
}

func TestIndexerReindex(t *testing.T) {
	store := newFakeSegmentStore()
	dataRoot := t.TempDir()
	ix := NewIndexer(store, dataRoot, 200, 30)

	course := models.Course{
		CourseID: "course-9",
		Content:  "Paragraph one about biology.\n\nParagraph two about chemistry.\n\nParagraph three about physics.",
	}
	n, err := ix.Reindex(context.Background(), course)
	require.NoError(t, err)
	require.Equal(t, 1, store.replaces)
	require.Equal(t, n, len(store.segments["course-9"]))

	for _, s := range store.segments["course-9"] {
		require.NotEmpty(t, s.SegmentID)
		require.Equal(t, "course-9", s.CourseID)
	}

	artifact := filepath.Join(dataRoot, "courses", "course-9", "segments.jsonl")
	_, statErr := os.Stat(artifact)
	require.NoError(t, statErr, "segment artifact should be written")
}

func TestIndexerReindexEmptyContentClearsSegments(t *testing.T) {
	store := newFakeSegmentStore()
	store.segments["course-9"] = seedSegments(3)
	ix := NewIndexer(store, "", 200, 30)

	n, err := ix.Reindex(context.Background(), models.Course{CourseID: "course-9", Content: "   "})
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, store.segments["course-9"])
}
