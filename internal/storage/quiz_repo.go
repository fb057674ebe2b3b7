package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"eduplatform/internal/models"
)

type QuizRepo struct {
	db *DB
}

func NewQuizRepo(db *DB) *QuizRepo {
	return &QuizRepo{db: db}
}

func (r *QuizRepo) InsertQuiz(ctx context.Context, q models.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal quiz questions: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO quizzes (quiz_id, course_id, title, difficulty, questions, model_used, generated_by_model)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`,
		q.QuizID, q.CourseID, q.Title, string(q.Difficulty), string(questions), q.ModelUsed, q.GeneratedByModel,
	)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepo) GetQuiz(ctx context.Context, quizID string) (models.Quiz, error) {
	var q models.Quiz
	var difficulty string
	var questions []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT quiz_id, course_id, title, difficulty, questions, model_used, generated_by_model, created_at
		FROM quizzes WHERE quiz_id = $1`, quizID,
	).Scan(&q.QuizID, &q.CourseID, &q.Title, &difficulty, &questions, &q.ModelUsed, &q.GeneratedByModel, &q.CreatedAt)
	if err != nil {
		return models.Quiz{}, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return models.Quiz{}, fmt.Errorf("decode quiz questions %s: %w", quizID, err)
	}
	q.Difficulty = models.ParseDifficulty(difficulty)
	return q, nil
}

func (r *QuizRepo) ListQuizzesByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT quiz_id, course_id, title, difficulty, questions, model_used, generated_by_model, created_at
		FROM quizzes
		WHERE course_id = $1
		ORDER BY created_at DESC`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list quizzes for course %s: %w", courseID, err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var q models.Quiz
		var difficulty string
		var questions []byte
		if err := rows.Scan(
			&q.QuizID, &q.CourseID, &q.Title, &difficulty, &questions,
			&q.ModelUsed, &q.GeneratedByModel, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		if err := json.Unmarshal(questions, &q.Questions); err != nil {
			return nil, fmt.Errorf("decode quiz questions %s: %w", q.QuizID, err)
		}
		q.Difficulty = models.ParseDifficulty(difficulty)
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return quizzes, nil
}
