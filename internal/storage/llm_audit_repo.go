package storage

import (
	"context"
	"fmt"

	"eduplatform/internal/models"
)

// LLMAuditRepo persists one row per outbound model call, successful or not.
// It satisfies the quiz generator's call sink.
type LLMAuditRepo struct {
	db *DB
}

func NewLLMAuditRepo(db *DB) *LLMAuditRepo {
	return &LLMAuditRepo{db: db}
}

func (r *LLMAuditRepo) RecordCall(ctx context.Context, rec models.LLMCallRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO llm_calls(call_id, operation, course_id, provider_name, model, request_id, status, error_type)
VALUES (gen_random_uuid(), $1, NULLIF($2,'')::uuid, $3, $4, $5, $6, NULLIF($7,''))`,
		rec.Operation, rec.CourseID, rec.Provider, rec.Model, rec.RequestID, rec.Status, rec.ErrorType)
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}
