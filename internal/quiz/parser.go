package quiz

import (
	"encoding/json"
	"strings"

	"eduplatform/internal/models"
)

// ExtractJSONPayload isolates the JSON object in a model reply. Models wrap
// payloads in code fences and conversational filler, so fence markers are
// stripped and everything between the first '{' and the last '}' is taken.
func ExtractJSONPayload(raw string) (string, bool) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// ParseQuizPayload decodes a model reply into questions. Missing scalar
// fields take defaults and malformed entries are dropped rather than failing
// the whole payload. ok is false when no usable question survives.
func ParseQuizPayload(raw string) ([]models.Question, bool) {
	payload, ok := ExtractJSONPayload(raw)
	if !ok {
		return nil, false
	}
	var root map[string]any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return nil, false
	}
	items, _ := root["questions"].([]any)
	out := make([]models.Question, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q := models.Question{
			QuestionText:       asString(obj["question_text"]),
			CorrectOptionIndex: asInt(obj["correct_option_index"]),
			Explanation:        asString(obj["explanation"]),
			SourceContext:      asString(obj["source_context"]),
		}
		opts, _ := obj["options"].([]any)
		for _, o := range opts {
			oo, ok := o.(map[string]any)
			if !ok {
				continue
			}
			q.Options = append(q.Options, models.Option{
				Text:        asString(oo["text"]),
				Explanation: asString(oo["explanation"]),
			})
		}
		if nq, ok := normalizeQuestion(q); ok {
			out = append(out, nq)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// normalizeQuestion enforces the answer-shape invariants: exactly four
// options, and a correct index inside them. An out-of-range index resets to
// 0 instead of invalidating the question.
func normalizeQuestion(q models.Question) (models.Question, bool) {
	q.QuestionText = strings.TrimSpace(q.QuestionText)
	q.SourceContext = strings.TrimSpace(q.SourceContext)
	if len(q.Options) != 4 {
		return models.Question{}, false
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		q.CorrectOptionIndex = 0
	}
	return q, true
}

// ParseEvaluationPayload decodes an evaluation reply. Defaults keep the
// result usable when the model omits fields: feedback falls back to a stock
// phrase and course_validated falls back to the pass threshold.
func ParseEvaluationPayload(raw string, scorePercent float64) (models.EvaluationResult, bool) {
	payload, ok := ExtractJSONPayload(raw)
	if !ok {
		return models.EvaluationResult{}, false
	}
	var root map[string]any
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return models.EvaluationResult{}, false
	}
	return models.EvaluationResult{
		Feedback:              asStringDefault(root["feedback"], DefaultFeedback),
		Strengths:             asStringList(root["strengths"]),
		Weaknesses:            asStringList(root["weaknesses"]),
		Recommendations:       asStringList(root["recommendations"]),
		RecommendedDifficulty: models.ParseDifficulty(asString(root["recommended_difficulty"])),
		CourseValidated:       asBoolDefault(root["course_validated"], scorePercent >= PassThreshold),
	}, true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringDefault(v any, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func asInt(v any) int {
	if n, ok := v.(float64); ok {
		return int(n)
	}
	return 0
}

func asBoolDefault(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
