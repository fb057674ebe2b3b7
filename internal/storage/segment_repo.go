package storage

import (
	"context"
	"fmt"

	"eduplatform/internal/models"
)

type SegmentRepo struct {
	db *DB
}

func NewSegmentRepo(db *DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

// ReplaceSegments swaps the stored segment set for a course in one
// transaction so readers never observe a partially indexed course.
func (r *SegmentRepo) ReplaceSegments(ctx context.Context, courseID string, segments []models.Segment) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace segments: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM segments WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear segments for course %s: %w", courseID, err)
	}
	for _, seg := range segments {
		_, err := tx.Exec(ctx, `
			INSERT INTO segments (segment_id, course_id, sequence_index, text, start_offset, end_offset)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			seg.SegmentID, courseID, seg.SequenceIndex, seg.Text, seg.StartOffset, seg.EndOffset,
		)
		if err != nil {
			return fmt.Errorf("insert segment %d for course %s: %w", seg.SequenceIndex, courseID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace segments: %w", err)
	}
	return nil
}

func (r *SegmentRepo) ListSegments(ctx context.Context, courseID string) ([]models.Segment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT segment_id, course_id, sequence_index, text, start_offset, end_offset, created_at
		FROM segments
		WHERE course_id = $1
		ORDER BY sequence_index ASC`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list segments for course %s: %w", courseID, err)
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		var seg models.Segment
		if err := rows.Scan(
			&seg.SegmentID, &seg.CourseID, &seg.SequenceIndex,
			&seg.Text, &seg.StartOffset, &seg.EndOffset, &seg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

func (r *SegmentRepo) CountSegments(ctx context.Context, courseID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM segments WHERE course_id = $1`, courseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count segments for course %s: %w", courseID, err)
	}
	return count, nil
}
