package retrieval

import (
	"regexp"
	"strings"

	"eduplatform/internal/models"
)

const (
	DefaultSegmentSize  = 500
	DefaultOverlapWidth = 50
)

var paragraphPattern = regexp.MustCompile(`\n\n+`)

// ChunkContent splits course content into ordered segments on paragraph
// boundaries. Paragraphs accumulate until adding the next one would push the
// buffer past targetSize; the buffer is then emitted and its last
// overlapWidth characters carry over into the next segment so context is not
// lost at the seam. A single paragraph larger than targetSize is emitted
// whole, never split.
//
// Offsets are rune positions into the original content and are best-effort:
// after an overlap carry they point at the carried tail, and the final
// segment's end includes a trailing separator allowance.
func ChunkContent(content string, targetSize, overlapWidth int) []models.Segment {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if targetSize <= 0 {
		targetSize = DefaultSegmentSize
	}
	if overlapWidth < 0 || overlapWidth >= targetSize {
		overlapWidth = 0
	}

	paragraphs := paragraphPattern.Split(content, -1)
	segments := make([]models.Segment, 0, len(content)/targetSize+1)

	var buf []rune
	seq := 0
	pos := 0   // running rune position in the original content
	start := 0 // position where the current buffer began

	for _, paragraph := range paragraphs {
		para := []rune(paragraph)
		if len(buf)+len(para) > targetSize && len(buf) > 0 {
			if text := strings.TrimSpace(string(buf)); text != "" {
				segments = append(segments, models.Segment{
					SequenceIndex: seq,
					Text:          text,
					StartOffset:   start,
					EndOffset:     pos,
				})
				seq++
			}
			carryFrom := len(buf) - overlapWidth
			if carryFrom < 0 {
				carryFrom = 0
			}
			buf = buf[carryFrom:]
			start = pos - len(buf)
		}
		buf = append(buf, para...)
		buf = append(buf, '\n', '\n')
		pos += len(para) + 2
	}
	if text := strings.TrimSpace(string(buf)); text != "" {
		segments = append(segments, models.Segment{
			SequenceIndex: seq,
			Text:          text,
			StartOffset:   start,
			EndOffset:     pos,
		})
	}
	return segments
}
