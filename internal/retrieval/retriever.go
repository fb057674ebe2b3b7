package retrieval

import (
	"context"
	"fmt"
	"strings"

	"eduplatform/internal/models"
)

// SegmentStore is the persistence surface the retriever and indexer need.
type SegmentStore interface {
	ReplaceSegments(ctx context.Context, courseID string, segments []models.Segment) error
	ListSegments(ctx context.Context, courseID string) ([]models.Segment, error)
	CountSegments(ctx context.Context, courseID string) (int, error)
}

type Retriever struct {
	store SegmentStore
}

func NewRetriever(store SegmentStore) *Retriever {
	return &Retriever{store: store}
}

// All returns every stored segment in sequence order.
func (r *Retriever) All(ctx context.Context, courseID string) ([]models.Segment, error) {
	segments, err := r.store.ListSegments(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return segments, nil
}

// FullContext joins every stored segment in sequence order.
func (r *Retriever) FullContext(ctx context.Context, courseID string) (string, error) {
	segments, err := r.store.ListSegments(ctx, courseID)
	if err != nil {
		return "", fmt.Errorf("list segments: %w", err)
	}
	return JoinSegments(segments), nil
}

// ByKeyword returns the segments whose text contains keyword,
// case-insensitively, preserving sequence order. An empty keyword matches
// everything.
func (r *Retriever) ByKeyword(ctx context.Context, courseID, keyword string) ([]models.Segment, error) {
	segments, err := r.store.ListSegments(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return segments, nil
	}
	out := make([]models.Segment, 0, len(segments))
	for _, s := range segments {
		if strings.Contains(strings.ToLower(s.Text), needle) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Sample returns up to n segments spread evenly across the course.
func (r *Retriever) Sample(ctx context.Context, courseID string, n int) ([]models.Segment, error) {
	segments, err := r.store.ListSegments(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return SampleSegments(segments, n)
}

// IsIndexed reports whether the course has any stored segments.
func (r *Retriever) IsIndexed(ctx context.Context, courseID string) (bool, error) {
	n, err := r.store.CountSegments(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("count segments: %w", err)
	}
	return n > 0, nil
}

// SampleSegments picks every (len/n)-th segment so the sample covers the
// whole document instead of just its head. When there are no more than n
// segments it returns all of them.
func SampleSegments(segments []models.Segment, n int) ([]models.Segment, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample size must be at least 1, got %d", n)
	}
	if len(segments) <= n {
		return segments, nil
	}
	stride := len(segments) / n
	out := make([]models.Segment, 0, n)
	for i := 0; i < n && i*stride < len(segments); i++ {
		out = append(out, segments[i*stride])
	}
	return out, nil
}

func JoinSegments(segments []models.Segment) string {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, "\n\n")
}
