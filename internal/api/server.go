package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eduplatform/internal/config"
	"eduplatform/internal/ingest"
	"eduplatform/internal/models"
	"eduplatform/internal/quiz"
	"eduplatform/internal/retrieval"
	"eduplatform/internal/storage"
	"eduplatform/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg       config.Config
	courses   *storage.CourseRepo
	quizzes   *storage.QuizRepo
	attempts  *storage.AttemptRepo
	retriever *retrieval.Retriever
	indexer   *retrieval.Indexer
	generator *quiz.Generator
}

// NewServer wires the handlers to already-constructed dependencies. The
// database pool and the quiz generator are built once at startup and
// injected here.
func NewServer(cfg config.Config, db *storage.DB, gen *quiz.Generator) *Server {
	segments := storage.NewSegmentRepo(db)
	return &Server{
		cfg:       cfg,
		courses:   storage.NewCourseRepo(db),
		quizzes:   storage.NewQuizRepo(db),
		attempts:  storage.NewAttemptRepo(db),
		retriever: retrieval.NewRetriever(segments),
		indexer:   retrieval.NewIndexer(segments, cfg.DataRoot, cfg.ChunkSize, cfg.ChunkOverlap),
		generator: gen,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/courses", s.handleCourses)
	mux.HandleFunc("/courses/", s.handleCourseScoped)
	mux.HandleFunc("/quizzes/", s.handleQuizScoped)
	return withCORS(mux, s.cfg.CORSAllowedOrigin)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		courses, err := s.courses.ListCourses(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courses": courses, "count": len(courses)})
	case http.MethodPost:
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
			Difficulty  string `json:"difficulty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("title is required"))
			return
		}

		course := models.Course{
			CourseID:    uuid.NewString(),
			Title:       req.Title,
			Description: strings.TrimSpace(req.Description),
			Content:     util.SanitizeText(req.Content),
			Difficulty:  models.ParseDifficulty(req.Difficulty),
			Status:      models.CourseStatusDraft,
		}
		if err := s.courses.CreateCourse(r.Context(), course); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		created, err := s.courses.GetCourse(r.Context(), course.CourseID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"course": created})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleCourseScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/courses/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	courseID := parts[0]
	if _, err := uuid.Parse(courseID); err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetCourse(w, r, courseID)
		case http.MethodPut:
			s.handleUpdateCourse(w, r, courseID)
		case http.MethodDelete:
			s.handleDeleteCourse(w, r, courseID)
		default:
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		}
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "material":
			if r.Method != http.MethodPost {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handleMaterialUpload(w, r, courseID)
			return
		case "publish":
			if r.Method != http.MethodPost {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handlePublish(w, r, courseID)
			return
		case "index":
			if r.Method != http.MethodPost {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handleIndex(w, r, courseID)
			return
		case "segments":
			if r.Method != http.MethodGet {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handleSegments(w, r, courseID)
			return
		case "quiz":
			if r.Method != http.MethodPost {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			s.handleCreateQuiz(w, r, courseID)
			return
		case "quizzes":
			if r.Method != http.MethodGet {
				writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
				return
			}
			quizzes, err := s.quizzes.ListQuizzesByCourse(r.Context(), courseID)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes, "count": len(quizzes)})
			return
		}
	}

	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"course": course})
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Content     *string `json:"content"`
		Difficulty  *string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("title is required"))
			return
		}
		course.Title = title
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.Content != nil {
		content := util.SanitizeText(*req.Content)
		if content != course.Content {
			course.Content = content
			course.Indexed = false
		}
	}
	if req.Difficulty != nil {
		course.Difficulty = models.ParseDifficulty(*req.Difficulty)
	}

	if err := s.courses.UpdateCourse(r.Context(), course); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	updated, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"course": updated})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	deleted, err := s.courses.DeleteCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleMaterialUpload(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh := materialFileHeader(r.MultipartForm.File)
	if fh == nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided"))
		return
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf", ".txt", ".md":
	default:
		writeErr(w, http.StatusBadRequest, fmt.Errorf("%w: %s", util.ErrUnsupportedMaterial, filepath.Ext(fh.Filename)))
		return
	}

	courseDir := filepath.Join(s.cfg.DataRoot, "courses", course.CourseID)
	if err := util.EnsureDir(courseDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	sha256Hex, savedPath, err := saveUploadedFile(courseDir, fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	text, err := ingest.ExtractTextFromFile(savedPath)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUnsupportedMaterial):
			writeErr(w, http.StatusBadRequest, err)
		case errors.Is(err, util.ErrNoExtractableText):
			writeErr(w, http.StatusUnprocessableEntity, err)
		default:
			writeErr(w, http.StatusInternalServerError, err)
		}
		return
	}

	fileName := filepath.Base(savedPath)
	if err := s.courses.SetMaterial(r.Context(), courseID, fileName, sha256Hex, text); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := util.WriteTextAtomic(filepath.Join(courseDir, "material.txt"), text); err != nil {
		log.Warn().Err(err).Str("course_id", courseID).Msg("write extracted material artifact")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"course_id":      courseID,
		"material_file":  fileName,
		"sha256":         sha256Hex,
		"content_length": len(text),
	})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}
	if !course.CanBePublished() {
		writeErr(w, http.StatusConflict, fmt.Errorf("course cannot be published"))
		return
	}
	if err := s.courses.MarkPublished(r.Context(), courseID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	published, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"course": published})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}
	if course.Status != models.CourseStatusPublished {
		writeErr(w, http.StatusConflict, fmt.Errorf("course must be published before indexing"))
		return
	}
	count, err := s.indexer.Reindex(r.Context(), course)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if count == 0 {
		writeErr(w, http.StatusConflict, fmt.Errorf("course has no indexable content"))
		return
	}
	if err := s.courses.MarkIndexed(r.Context(), courseID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"course_id": courseID, "segments": count, "indexed": true})
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request, courseID string) {
	if _, err := s.courses.GetCourse(r.Context(), courseID); err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}

	q := r.URL.Query()
	var (
		segments []models.Segment
		err      error
	)
	switch {
	case q.Get("sample") != "":
		n, convErr := strconv.Atoi(q.Get("sample"))
		if convErr != nil || n < 1 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("sample must be a positive integer"))
			return
		}
		segments, err = s.retriever.Sample(r.Context(), courseID, n)
	case q.Get("keyword") != "":
		segments, err = s.retriever.ByKeyword(r.Context(), courseID, q.Get("keyword"))
	default:
		segments, err = s.retriever.All(r.Context(), courseID)
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments, "count": len(segments)})
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := s.courses.GetCourse(r.Context(), courseID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}
	indexed, err := s.retriever.IsIndexed(r.Context(), courseID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if !indexed {
		writeErr(w, http.StatusConflict, fmt.Errorf("course is not indexed"))
		return
	}

	var req struct {
		QuestionCount int    `json:"question_count"`
		Difficulty    string `json:"difficulty"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
	}
	count := req.QuestionCount
	if count < 1 {
		count = s.cfg.DefaultQuestions
	}
	difficulty := course.Difficulty
	if strings.TrimSpace(req.Difficulty) != "" {
		difficulty = models.ParseDifficulty(req.Difficulty)
	}

	sampled, err := s.retriever.Sample(r.Context(), courseID, count)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	contextText := retrieval.JoinSegments(sampled)

	result, err := s.generator.GenerateQuiz(r.Context(), models.GenerationRequest{
		CourseID:      courseID,
		CourseTitle:   course.Title,
		QuestionCount: count,
		Difficulty:    difficulty,
	}, contextText)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	created := models.Quiz{
		QuizID:           uuid.NewString(),
		CourseID:         courseID,
		Title:            course.Title + " Quiz",
		Difficulty:       difficulty,
		Questions:        result.Questions,
		ModelUsed:        result.ModelUsed,
		GeneratedByModel: result.GeneratedByModel,
	}
	if err := s.quizzes.InsertQuiz(r.Context(), created); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	stored, err := s.quizzes.GetQuiz(r.Context(), created.QuizID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"quiz": stored})
}

func (s *Server) handleQuizScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/quizzes/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	quizID := parts[0]
	if _, err := uuid.Parse(quizID); err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		stored, err := s.quizzes.GetQuiz(r.Context(), quizID)
		if err != nil {
			writeErr(w, lookupStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"quiz": stored})
		return
	}

	if len(parts) == 2 && parts[1] == "attempts" {
		switch r.Method {
		case http.MethodPost:
			s.handleSubmitAttempt(w, r, quizID)
		case http.MethodGet:
			attempts, err := s.attempts.ListAttemptsByQuiz(r.Context(), quizID)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts, "count": len(attempts)})
		default:
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		}
		return
	}

	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request, quizID string) {
	stored, err := s.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		writeErr(w, lookupStatus(err), err)
		return
	}

	var req struct {
		Answers []int `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if len(req.Answers) != len(stored.Questions) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("answers must match question count"))
		return
	}

	stats := quiz.ScoreAnswers(stored.Questions, req.Answers)
	evaluation, err := s.generator.EvaluateAttempt(r.Context(), stored.CourseID, stats)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	attempt := models.QuizAttempt{
		AttemptID:    uuid.NewString(),
		QuizID:       quizID,
		Answers:      req.Answers,
		CorrectCount: stats.CorrectAnswers,
		TotalCount:   stats.TotalQuestions,
		ScorePercent: stats.ScorePercent,
		Evaluation:   evaluation,
	}
	if err := s.attempts.InsertAttempt(r.Context(), attempt); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"attempt": attempt, "stats": stats})
}

// materialFileHeader returns the uploaded file, preferring the "file" field
// but accepting any single-file form.
func materialFileHeader(m map[string][]*multipart.FileHeader) *multipart.FileHeader {
	if files := m["file"]; len(files) > 0 {
		return files[0]
	}
	for _, v := range m {
		if len(v) > 0 {
			return v[0]
		}
	}
	return nil
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (sha256Hex, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "material-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	sum, err := util.SHA256HexFromReader(io.TeeReader(src, tmp))
	if err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", err
	}

	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}
	return sum, finalPath, nil
}

func lookupStatus(err error) int {
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "EP-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "EP-DB-5001",
				Message: "Database schema is not initialized. Restart the service to bootstrap it.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "EP-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "EP-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "EP-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "EP-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "EP-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "EP-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusUnprocessableEntity:
		code = "EP-API-4022"
		msg = "Uploaded material could not be processed."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "title is required"):
			msg = "Course title is required."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(low, "no file provided"):
			msg = "No material file was provided."
		case strings.Contains(low, "unsupported material"):
			msg = "Unsupported material file type. Upload a PDF, TXT or Markdown file."
		case strings.Contains(low, "no extractable text"):
			msg = "No extractable text found in the uploaded material."
		case strings.Contains(low, "cannot be published"):
			msg = "Course needs content and draft status before publishing."
		case strings.Contains(low, "must be published"):
			msg = "Course must be published before indexing."
		case strings.Contains(low, "no indexable content"):
			msg = "Course content is empty, upload material or set content first."
		case strings.Contains(low, "not indexed"):
			msg = "Course must be indexed before generating a quiz."
		case strings.Contains(low, "answers must match"):
			msg = "Submit exactly one answer per question."
		case strings.Contains(low, "sample must be"):
			msg = "Sample size must be a positive integer."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler, origin string) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
