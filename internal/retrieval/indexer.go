package retrieval

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"eduplatform/internal/models"
	"eduplatform/internal/util"
)

// Indexer rebuilds the stored segment set for a course from its content.
type Indexer struct {
	store        SegmentStore
	dataRoot     string
	targetSize   int
	overlapWidth int
}

func NewIndexer(store SegmentStore, dataRoot string, targetSize, overlapWidth int) *Indexer {
	return &Indexer{
		store:        store,
		dataRoot:     dataRoot,
		targetSize:   targetSize,
		overlapWidth: overlapWidth,
	}
}

// Reindex chunks the course content and replaces the stored segments
// wholesale, so readers only ever see the old set or the new set. Returns
// the number of segments written.
func (ix *Indexer) Reindex(ctx context.Context, course models.Course) (int, error) {
	segments := ChunkContent(course.Content, ix.targetSize, ix.overlapWidth)
	for i := range segments {
		segments[i].SegmentID = uuid.NewString()
		segments[i].CourseID = course.CourseID
	}
	if err := ix.store.ReplaceSegments(ctx, course.CourseID, segments); err != nil {
		return 0, fmt.Errorf("replace segments: %w", err)
	}
	ix.writeArtifact(course.CourseID, segments)
	log.Info().Str("course_id", course.CourseID).Int("segments", len(segments)).Msg("course indexed")
	return len(segments), nil
}

// writeArtifact mirrors the segment set to disk for inspection. Failures are
// logged and ignored; the database copy is authoritative.
func (ix *Indexer) writeArtifact(courseID string, segments []models.Segment) {
	if ix.dataRoot == "" {
		return
	}
	rows := make([]any, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, s)
	}
	path := filepath.Join(ix.dataRoot, "courses", courseID, "segments.jsonl")
	if err := util.WriteJSONLinesAtomic(path, rows); err != nil {
		log.Warn().Err(err).Str("course_id", courseID).Msg("segment artifact write failed")
	}
}
