package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"eduplatform/internal/util"
)

// ExtractTextFromFile pulls course text out of an uploaded material file.
// PDFs go through the pdf reader; plain text and markdown are read as-is.
// All paths sanitize the result and fail with ErrNoExtractableText when
// nothing readable remains.
func ExtractTextFromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		return extractPlain(path)
	default:
		return "", fmt.Errorf("%w: %s", util.ErrUnsupportedMaterial, filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(strings.TrimSpace(buf.String()))
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

func extractPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read material: %w", err)
	}
	text := util.SanitizeText(string(b))
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}
