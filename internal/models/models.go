package models

import (
	"strings"
	"time"
)

// Difficulty levels, ordered from easiest to hardest.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
	DifficultyExpert Difficulty = "EXPERT"
)

// ParseDifficulty maps free-form input to a known level. Unknown or empty
// values fall back to MEDIUM so a sloppy request or model reply never
// produces an invalid level.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToUpper(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyMedium:
		return DifficultyMedium
	case DifficultyHard:
		return DifficultyHard
	case DifficultyExpert:
		return DifficultyExpert
	default:
		return DifficultyMedium
	}
}

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

type Course struct {
	CourseID       string     `json:"course_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Content        string     `json:"content,omitempty"`
	Difficulty     Difficulty `json:"difficulty"`
	Status         string     `json:"status"`
	Indexed        bool       `json:"indexed"`
	MaterialFile   string     `json:"material_file,omitempty"`
	MaterialSHA256 string     `json:"material_sha256,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	IndexedAt      *time.Time `json:"indexed_at,omitempty"`
}

// CanBePublished reports whether the course is eligible for the
// draft -> published transition.
func (c Course) CanBePublished() bool {
	return strings.TrimSpace(c.Content) != "" && c.Status == CourseStatusDraft
}

type Segment struct {
	SegmentID     string    `json:"segment_id"`
	CourseID      string    `json:"course_id"`
	SequenceIndex int       `json:"sequence_index"`
	Text          string    `json:"text"`
	StartOffset   int       `json:"start_offset"`
	EndOffset     int       `json:"end_offset"`
	CreatedAt     time.Time `json:"created_at"`
}

type Option struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

type Question struct {
	QuestionText       string   `json:"question_text"`
	Options            []Option `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation"`
	SourceContext      string   `json:"source_context"`
}

type GenerationRequest struct {
	CourseID      string     `json:"course_id"`
	CourseTitle   string     `json:"course_title"`
	QuestionCount int        `json:"question_count"`
	Difficulty    Difficulty `json:"difficulty"`
}

// QuizResult is the outcome of one generation request, whether it came from
// the model or from the deterministic fallback.
type QuizResult struct {
	Questions        []Question `json:"questions"`
	ModelUsed        string     `json:"model_used"`
	GeneratedByModel bool       `json:"generated_by_model"`
}

type EvaluationResult struct {
	Feedback              string     `json:"feedback"`
	Strengths             []string   `json:"strengths"`
	Weaknesses            []string   `json:"weaknesses"`
	Recommendations       []string   `json:"recommendations"`
	RecommendedDifficulty Difficulty `json:"recommended_difficulty"`
	CourseValidated       bool       `json:"course_validated"`
}

// AttemptStats summarizes a scored quiz attempt for evaluation.
type AttemptStats struct {
	ScorePercent   float64  `json:"score_percent"`
	CorrectAnswers int      `json:"correct_answers"`
	TotalQuestions int      `json:"total_questions"`
	WeakTopics     []string `json:"weak_topics,omitempty"`
}

type Quiz struct {
	QuizID           string     `json:"quiz_id"`
	CourseID         string     `json:"course_id"`
	Title            string     `json:"title"`
	Difficulty       Difficulty `json:"difficulty"`
	Questions        []Question `json:"questions"`
	ModelUsed        string     `json:"model_used"`
	GeneratedByModel bool       `json:"generated_by_model"`
	CreatedAt        time.Time  `json:"created_at"`
}

type QuizAttempt struct {
	AttemptID    string           `json:"attempt_id"`
	QuizID       string           `json:"quiz_id"`
	Answers      []int            `json:"answers"`
	CorrectCount int              `json:"correct_count"`
	TotalCount   int              `json:"total_count"`
	ScorePercent float64          `json:"score_percent"`
	Evaluation   EvaluationResult `json:"evaluation"`
	CreatedAt    time.Time        `json:"created_at"`
}

// LLMCallRecord is one audit row for an outbound model call.
type LLMCallRecord struct {
	Operation string `json:"operation"`
	CourseID  string `json:"course_id,omitempty"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	ErrorType string `json:"error_type,omitempty"`
}
