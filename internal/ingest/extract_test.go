package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"eduplatform/internal/util"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestExtractTextFromPlainFile(t *testing.T) {
	path := writeTemp(t, "notes.txt", "Course intro.\n\nSecond paragraph.\x00")
	text, err := ExtractTextFromFile(path)
	if err != nil {
		t.Fatalf("ExtractTextFromFile: %v", err)
	}
	if text != "Course intro.\n\nSecond paragraph." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromMarkdown(t *testing.T) {
	path := writeTemp(t, "notes.MD", "# Heading\n\nBody text.")
	text, err := ExtractTextFromFile(path)
	if err != nil {
		t.Fatalf("ExtractTextFromFile: %v", err)
	}
	if text == "" {
		t.Fatalf("expected markdown content")
	}
}

func TestExtractTextEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.txt", "   \x00\x01  ")
	_, err := ExtractTextFromFile(path)
	if !errors.Is(err, util.ErrNoExtractableText) {
		t.Fatalf("expected ErrNoExtractableText, got %v", err)
	}
}

func TestExtractTextUnsupportedType(t *testing.T) {
	path := writeTemp(t, "slides.ppt", "binary-ish")
	_, err := ExtractTextFromFile(path)
	if !errors.Is(err, util.ErrUnsupportedMaterial) {
		t.Fatalf("expected ErrUnsupportedMaterial, got %v", err)
	}
}
