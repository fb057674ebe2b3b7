package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		course_id       uuid PRIMARY KEY,
		title           text NOT NULL,
		description     text,
		content         text NOT NULL DEFAULT '',
		difficulty      text NOT NULL DEFAULT 'MEDIUM',
		status          text NOT NULL DEFAULT 'draft',
		indexed         boolean NOT NULL DEFAULT false,
		material_file   text,
		material_sha256 text,
		created_at      timestamptz NOT NULL DEFAULT now(),
		updated_at      timestamptz NOT NULL DEFAULT now(),
		published_at    timestamptz,
		indexed_at      timestamptz
	)`,
	`CREATE TABLE IF NOT EXISTS segments (
		segment_id     uuid PRIMARY KEY,
		course_id      uuid NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		sequence_index int NOT NULL,
		text           text NOT NULL,
		start_offset   int NOT NULL,
		end_offset     int NOT NULL,
		created_at     timestamptz NOT NULL DEFAULT now(),
		UNIQUE (course_id, sequence_index)
	)`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		quiz_id            uuid PRIMARY KEY,
		course_id          uuid NOT NULL REFERENCES courses(course_id) ON DELETE CASCADE,
		title              text NOT NULL DEFAULT '',
		difficulty         text NOT NULL,
		questions          jsonb NOT NULL,
		model_used         text NOT NULL DEFAULT '',
		generated_by_model boolean NOT NULL DEFAULT false,
		created_at         timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		attempt_id    uuid PRIMARY KEY,
		quiz_id       uuid NOT NULL REFERENCES quizzes(quiz_id) ON DELETE CASCADE,
		answers       jsonb NOT NULL,
		correct_count int NOT NULL,
		total_count   int NOT NULL,
		score_percent double precision NOT NULL,
		evaluation    jsonb NOT NULL,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS llm_calls (
		call_id       uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		operation     text NOT NULL,
		course_id     uuid,
		provider_name text NOT NULL DEFAULT '',
		model         text NOT NULL DEFAULT '',
		request_id    text NOT NULL DEFAULT '',
		status        text NOT NULL,
		error_type    text,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_segments_course ON segments (course_id, sequence_index)`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_course ON quizzes (course_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_quiz ON quiz_attempts (quiz_id, created_at DESC)`,
}

// Bootstrap creates the schema so a fresh database works without a separate
// migration step. Every statement is idempotent.
func Bootstrap(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
