package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"eduplatform/internal/models"
)

type AttemptRepo struct {
	db *DB
}

func NewAttemptRepo(db *DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

func (r *AttemptRepo) InsertAttempt(ctx context.Context, a models.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal attempt answers: %w", err)
	}
	evaluation, err := json.Marshal(a.Evaluation)
	if err != nil {
		return fmt.Errorf("marshal attempt evaluation: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO quiz_attempts (attempt_id, quiz_id, answers, correct_count, total_count, score_percent, evaluation)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7::jsonb)`,
		a.AttemptID, a.QuizID, string(answers), a.CorrectCount, a.TotalCount, a.ScorePercent, string(evaluation),
	)
	if err != nil {
		return fmt.Errorf("insert quiz attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepo) ListAttemptsByQuiz(ctx context.Context, quizID string) ([]models.QuizAttempt, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT attempt_id, quiz_id, answers, correct_count, total_count, score_percent, evaluation, created_at
		FROM quiz_attempts
		WHERE quiz_id = $1
		ORDER BY created_at DESC`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts for quiz %s: %w", quizID, err)
	}
	defer rows.Close()

	var attempts []models.QuizAttempt
	for rows.Next() {
		var a models.QuizAttempt
		var answers, evaluation []byte
		if err := rows.Scan(
			&a.AttemptID, &a.QuizID, &answers, &a.CorrectCount, &a.TotalCount,
			&a.ScorePercent, &evaluation, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quiz attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode attempt answers %s: %w", a.AttemptID, err)
		}
		if err := json.Unmarshal(evaluation, &a.Evaluation); err != nil {
			return nil, fmt.Errorf("decode attempt evaluation %s: %w", a.AttemptID, err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz attempts: %w", err)
	}
	return attempts, nil
}
