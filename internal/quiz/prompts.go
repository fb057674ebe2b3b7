package quiz

import (
	"fmt"
	"strings"

	"eduplatform/internal/models"
)

const quizPromptTemplate = `You are an expert educational quiz creator. Generate a multiple-choice quiz based EXCLUSIVELY on the following course content.

COURSE TITLE: %s
DIFFICULTY LEVEL: %s
NUMBER OF QUESTIONS: %d

COURSE CONTENT:
%s

REQUIREMENTS:
1. Each question must have exactly 4 answer options
2. Exactly ONE option must be correct
3. Questions must be derived ONLY from the provided content
4. source_context must quote the exact sentence(s) the question is based on

Respond ONLY with valid JSON in this exact format:
{
  "questions": [
    {
      "question_text": "string",
      "options": [
        {"text": "string", "explanation": "why this option is correct or incorrect"},
        {"text": "string", "explanation": "why this option is correct or incorrect"},
        {"text": "string", "explanation": "why this option is correct or incorrect"},
        {"text": "string", "explanation": "why this option is correct or incorrect"}
      ],
      "correct_option_index": 0,
      "explanation": "overall explanation",
      "source_context": "exact sentence(s) from the content"
    }
  ]
}`

func BuildQuizPrompt(courseTitle string, difficulty models.Difficulty, questionCount int, contextText string) string {
	return fmt.Sprintf(quizPromptTemplate, courseTitle, difficulty, questionCount, contextText)
}

const evaluationPromptTemplate = `Evaluate quiz results: Score: %.1f%%, Correct: %d/%d, Weak topics: %s

Return JSON: {"feedback": "string", "strengths": [], "weaknesses": [], "recommendations": [], "recommended_difficulty": "EASY|MEDIUM|HARD|EXPERT", "course_validated": true}`

func BuildEvaluationPrompt(stats models.AttemptStats) string {
	topics := "none"
	if len(stats.WeakTopics) > 0 {
		topics = strings.Join(stats.WeakTopics, ", ")
	}
	return fmt.Sprintf(evaluationPromptTemplate, stats.ScorePercent, stats.CorrectAnswers, stats.TotalQuestions, topics)
}
