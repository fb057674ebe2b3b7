package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestToAPIErrorMapsDatabaseFailures(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		err      error
		wantCode string
	}{
		{"missing schema", 500, fmt.Errorf(`relation "courses" does not exist`), "EP-DB-5001"},
		{"connection refused", 500, fmt.Errorf("dial tcp 127.0.0.1:5432: connection refused"), "EP-DB-5002"},
		{"generic internal", 500, fmt.Errorf("boom"), "EP-API-5000"},
		{"bad request", 400, fmt.Errorf("invalid json: unexpected EOF"), "EP-API-4001"},
		{"not found", 404, fmt.Errorf("not found"), "EP-API-4004"},
		{"conflict", 409, fmt.Errorf("course is not indexed"), "EP-API-4009"},
		{"unprocessable", 422, fmt.Errorf("no extractable text found in material"), "EP-API-4022"},
		{"method", 405, fmt.Errorf("method not allowed"), "EP-API-4005"},
	}
	for _, tc := range cases {
		got := toAPIError(tc.status, tc.err)
		if got.Code != tc.wantCode {
			t.Fatalf("%s: code = %q, want %q", tc.name, got.Code, tc.wantCode)
		}
		if got.Message == "" {
			t.Fatalf("%s: empty message", tc.name)
		}
	}
}

func TestToAPIErrorKeepsValidationContext(t *testing.T) {
	cases := []struct {
		status  int
		err     error
		wantMsg string
	}{
		{400, fmt.Errorf("title is required"), "Course title is required."},
		{400, fmt.Errorf("answers must match question count"), "Submit exactly one answer per question."},
		{409, fmt.Errorf("course cannot be published"), "Course needs content and draft status before publishing."},
		{409, fmt.Errorf("course must be published before indexing"), "Course must be published before indexing."},
		{409, fmt.Errorf("course is not indexed"), "Course must be indexed before generating a quiz."},
		{400, fmt.Errorf("unsupported material file type: .ppt"), "Unsupported material file type. Upload a PDF, TXT or Markdown file."},
	}
	for _, tc := range cases {
		got := toAPIError(tc.status, tc.err)
		if got.Message != tc.wantMsg {
			t.Fatalf("message for %v = %q, want %q", tc.err, got.Message, tc.wantMsg)
		}
	}
}

func TestSaveUploadedFileFingerprintsContent(t *testing.T) {
	content := "Photosynthesis converts light into chemical energy."
	wantSum := "c7103936b8f144d8af0278252f446803699eaf477f2921fdba84aee4ffaf7ca8"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	defer func() {
		_ = form.RemoveAll()
	}()

	dir := t.TempDir()
	sum, path, err := saveUploadedFile(dir, form.File["file"][0])
	if err != nil {
		t.Fatalf("save upload: %v", err)
	}
	if sum != wantSum {
		t.Fatalf("sha256 = %q, want %q", sum, wantSum)
	}
	if path != filepath.Join(dir, "notes.txt") {
		t.Fatalf("saved path = %q", path)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(saved) != content {
		t.Fatalf("saved content = %q, want %q", saved, content)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the renamed upload in %s, found %d entries", dir, len(entries))
	}
}

func TestWithCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := withCORS(next, "https://app.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/courses", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/courses", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("passthrough status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
