package quiz

import (
	"eduplatform/internal/models"
	"eduplatform/internal/util"
)

// ScoreAnswers grades an attempt against the quiz questions. answers[i] is
// the chosen option index for question i; a missing or out-of-range answer
// counts as wrong. Weak topics are compact snippets of the source contexts
// behind the wrongly answered questions, deduplicated in question order.
func ScoreAnswers(questions []models.Question, answers []int) models.AttemptStats {
	stats := models.AttemptStats{TotalQuestions: len(questions)}
	if len(questions) == 0 {
		return stats
	}
	seen := map[string]struct{}{}
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectOptionIndex {
			stats.CorrectAnswers++
			continue
		}
		topic := util.DisplaySnippet(q.SourceContext, 80)
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		stats.WeakTopics = append(stats.WeakTopics, topic)
	}
	stats.ScorePercent = float64(stats.CorrectAnswers) / float64(len(questions)) * 100
	return stats
}
