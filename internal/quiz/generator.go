package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"eduplatform/internal/models"
	"eduplatform/internal/providers"
)

const (
	OpQuizGenerate    = "quiz_generate"
	OpAttemptEvaluate = "attempt_evaluate"
)

// CallSink records outbound model calls for auditing. Recording is
// best-effort; failures never block generation.
type CallSink interface {
	RecordCall(ctx context.Context, rec models.LLMCallRecord) error
}

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sink        CallSink
}

// Generator turns course context into quizzes and attempt evaluations.
// When no provider is configured, or the provider fails for good, it
// degrades to deterministic mock output instead of returning an error.
type Generator struct {
	client      providers.LLMProvider
	maxAttempts int
	baseDelay   time.Duration
	sink        CallSink
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewGenerator wires a generator around an already-constructed provider
// handle. client may be nil, which forces mock output for every request.
func NewGenerator(client providers.LLMProvider, opts Options) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 5 * time.Second
	}
	return &Generator{
		client:      client,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		sink:        opts.Sink,
		sleep:       sleepContext,
	}
}

// GenerateQuiz asks the model for a quiz over contextText. Rate-limited
// calls are retried with doubling delays up to maxAttempts; fatal errors and
// unusable replies fall back to the mock generator without further calls.
// Only caller cancellation surfaces as an error.
func (g *Generator) GenerateQuiz(ctx context.Context, req models.GenerationRequest, contextText string) (models.QuizResult, error) {
	if g.client == nil {
		log.Warn().Str("course_id", req.CourseID).Msg("no model provider configured, using mock quiz")
		return MockQuiz(contextText, req.QuestionCount), nil
	}
	prompt := BuildQuizPrompt(req.CourseTitle, req.Difficulty, req.QuestionCount, contextText)

	rateLimited := false
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, info, err := g.client.Generate(ctx, providers.GenerateRequest{Operation: OpQuizGenerate, Prompt: prompt})
		if err == nil {
			g.record(ctx, req.CourseID, OpQuizGenerate, info, attempt, "ok", "")
			if questions, ok := ParseQuizPayload(resp.Text); ok {
				log.Info().Str("course_id", req.CourseID).Str("model", info.Model).Int("questions", len(questions)).Msg("quiz generated")
				return models.QuizResult{Questions: questions, ModelUsed: info.Model, GeneratedByModel: true}, nil
			}
			log.Warn().Str("course_id", req.CourseID).Int("attempt", attempt).Msg("model reply had no usable quiz payload")
			rateLimited = false
			break
		}
		if ctx.Err() != nil {
			return models.QuizResult{}, fmt.Errorf("quiz generation canceled: %w", ctx.Err())
		}
		errType := providers.ClassifyError(err)
		g.record(ctx, req.CourseID, OpQuizGenerate, info, attempt, "failed", string(errType))
		if errType != providers.ErrorRateLimit {
			log.Error().Err(err).Str("course_id", req.CourseID).Int("attempt", attempt).Msg("model call failed")
			rateLimited = false
			break
		}
		rateLimited = true
		if attempt == g.maxAttempts {
			break
		}
		delay := g.baseDelay << (attempt - 1)
		log.Warn().Err(err).Str("course_id", req.CourseID).Int("attempt", attempt).Dur("retry_in", delay).Msg("model rate limited")
		if err := g.sleep(ctx, delay); err != nil {
			return models.QuizResult{}, fmt.Errorf("quiz generation canceled: %w", err)
		}
	}

	out := MockQuiz(contextText, req.QuestionCount)
	if rateLimited {
		out.ModelUsed = MockRateLimitedTag
	}
	log.Warn().Str("course_id", req.CourseID).Str("model", out.ModelUsed).Msg("falling back to mock quiz")
	return out, nil
}

// EvaluateAttempt asks the model to grade a scored attempt. This path makes
// a single call; any failure falls back to the threshold evaluation.
func (g *Generator) EvaluateAttempt(ctx context.Context, courseID string, stats models.AttemptStats) (models.EvaluationResult, error) {
	if g.client == nil {
		return MockEvaluation(stats.ScorePercent), nil
	}
	prompt := BuildEvaluationPrompt(stats)
	resp, info, err := g.client.Generate(ctx, providers.GenerateRequest{Operation: OpAttemptEvaluate, Prompt: prompt})
	if err != nil {
		if ctx.Err() != nil {
			return models.EvaluationResult{}, fmt.Errorf("attempt evaluation canceled: %w", ctx.Err())
		}
		g.record(ctx, courseID, OpAttemptEvaluate, info, 1, "failed", string(providers.ClassifyError(err)))
		log.Warn().Err(err).Str("course_id", courseID).Msg("evaluation call failed, using mock evaluation")
		return MockEvaluation(stats.ScorePercent), nil
	}
	g.record(ctx, courseID, OpAttemptEvaluate, info, 1, "ok", "")
	if eval, ok := ParseEvaluationPayload(resp.Text, stats.ScorePercent); ok {
		return eval, nil
	}
	log.Warn().Str("course_id", courseID).Msg("evaluation reply had no usable payload, using mock evaluation")
	return MockEvaluation(stats.ScorePercent), nil
}

func (g *Generator) record(ctx context.Context, courseID, operation string, info providers.ProviderInfo, attempt int, status, errType string) {
	if g.sink == nil {
		return
	}
	rec := models.LLMCallRecord{
		Operation: operation,
		CourseID:  courseID,
		Provider:  info.Name,
		Model:     info.Model,
		RequestID: fmt.Sprintf("%s-%d", operation, attempt),
		Status:    status,
		ErrorType: errType,
	}
	if err := g.sink.RecordCall(ctx, rec); err != nil {
		log.Warn().Err(err).Str("operation", operation).Msg("llm call audit failed")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
