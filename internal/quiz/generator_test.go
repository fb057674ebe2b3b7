package quiz

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eduplatform/internal/models"
	"eduplatform/internal/providers"
)

type scriptedReply struct {
	text string
	err  error
}

type scriptedProvider struct {
	replies    []scriptedReply
	calls      int
	lastOp     string
	lastPrompt string
}

func (s *scriptedProvider) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	s.lastOp = req.Operation
	s.lastPrompt = req.Prompt
	idx := s.calls
	s.calls++
	if idx >= len(s.replies) {
		return providers.GenerateResponse{}, s.info(), fmt.Errorf("unexpected call %d", idx+1)
	}
	r := s.replies[idx]
	if r.err != nil {
		return providers.GenerateResponse{}, s.info(), r.err
	}
	return providers.GenerateResponse{Text: r.text}, s.info(), nil
}

func (s *scriptedProvider) Configured() bool { return true }

func (s *scriptedProvider) info() providers.ProviderInfo {
	return providers.ProviderInfo{Name: "scripted", Model: "scripted-model"}
}

type recordingSink struct {
	records []models.LLMCallRecord
}

func (r *recordingSink) RecordCall(_ context.Context, rec models.LLMCallRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func newTestGenerator(p providers.LLMProvider, sink CallSink) (*Generator, *[]time.Duration) {
	g := NewGenerator(p, Options{MaxAttempts: 3, BaseDelay: 5 * time.Second, Sink: sink})
	delays := &[]time.Duration{}
	g.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return g, delays
}

func genRequest() models.GenerationRequest {
	return models.GenerationRequest{
		CourseID:      "course-1",
		CourseTitle:   "Cell Biology",
		QuestionCount: 2,
		Difficulty:    models.DifficultyHard,
	}
}

func TestGenerateQuizRetriesRateLimitThenSucceeds(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{err: fmt.Errorf("gemini error 429: slow down")},
		{err: fmt.Errorf("quota exceeded for quota metric")},
		{text: validQuizJSON},
	}}
	sink := &recordingSink{}
	g, delays := newTestGenerator(p, sink)

	result, err := g.GenerateQuiz(context.Background(), genRequest(), mockContext)
	require.NoError(t, err)
	require.True(t, result.GeneratedByModel)
	require.Equal(t, "scripted-model", result.ModelUsed)
	require.Len(t, result.Questions, 1)
	require.Equal(t, 3, p.calls)

	// Exactly two delayed retries: baseDelay, then twice that.
	require.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, *delays)

	require.Len(t, sink.records, 3)
	require.Equal(t, "failed", sink.records[0].Status)
	require.Equal(t, "rate_limit", sink.records[0].ErrorType)
	require.Equal(t, "failed", sink.records[1].Status)
	require.Equal(t, "ok", sink.records[2].Status)
	require.Equal(t, OpQuizGenerate, sink.records[0].Operation)

	// Prompt carries the request parameters and the course context.
	require.Contains(t, p.lastPrompt, "COURSE TITLE: Cell Biology")
	require.Contains(t, p.lastPrompt, "DIFFICULTY LEVEL: HARD")
	require.Contains(t, p.lastPrompt, "NUMBER OF QUESTIONS: 2")
	require.Contains(t, p.lastPrompt, "Photosynthesis converts light")
}

func TestGenerateQuizFatalErrorShortCircuits(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{err: fmt.Errorf("gemini error 401: invalid api key")},
	}}
	g, delays := newTestGenerator(p, nil)

	result, err := g.GenerateQuiz(context.Background(), genRequest(), mockContext)
	require.NoError(t, err)
	require.Equal(t, 1, p.calls, "fatal errors must not be retried")
	require.Empty(t, *delays)
	require.False(t, result.GeneratedByModel)
	require.Equal(t, MockModelTag, result.ModelUsed)
	require.Len(t, result.Questions, 2, "fallback still honors the question count")
}

func TestGenerateQuizRateLimitExhausted(t *testing.T) {
	rateErr := fmt.Errorf("gemini error 429: RESOURCE_EXHAUSTED")
	p := &scriptedProvider{replies: []scriptedReply{{err: rateErr}, {err: rateErr}, {err: rateErr}}}
	g, delays := newTestGenerator(p, nil)

	result, err := g.GenerateQuiz(context.Background(), genRequest(), mockContext)
	require.NoError(t, err)
	require.Equal(t, 3, p.calls)
	require.Len(t, *delays, 2, "no delay after the final attempt")
	require.Equal(t, MockRateLimitedTag, result.ModelUsed)
	require.False(t, result.GeneratedByModel)
}

func TestGenerateQuizMalformedReplyFallsBack(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{text: "Sure! ```json\n{\"questions\":[]}\n```"},
	}}
	sink := &recordingSink{}
	g, delays := newTestGenerator(p, sink)

	result, err := g.GenerateQuiz(context.Background(), genRequest(), mockContext)
	require.NoError(t, err)
	require.Equal(t, 1, p.calls, "unusable replies must not be retried")
	require.Empty(t, *delays)
	require.Equal(t, MockModelTag, result.ModelUsed, "parse failure is not a rate-limit fallback")
	require.NotEmpty(t, result.Questions)
	require.Equal(t, "ok", sink.records[0].Status, "the call itself succeeded")
}

func TestGenerateQuizNoProviderUsesMock(t *testing.T) {
	g := NewGenerator(nil, Options{})

	result, err := g.GenerateQuiz(context.Background(), genRequest(), mockContext)
	require.NoError(t, err)
	require.Equal(t, MockModelTag, result.ModelUsed)
	require.Len(t, result.Questions, 2)
}

func TestGenerateQuizCancellationPropagates(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{err: fmt.Errorf("gemini error 429: slow down")},
	}}
	g, _ := newTestGenerator(p, nil)
	g.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := g.GenerateQuiz(context.Background(), genRequest(), mockContext)
	require.ErrorIs(t, err, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p2 := &scriptedProvider{replies: []scriptedReply{{err: context.Canceled}}}
	g2, _ := newTestGenerator(p2, nil)
	_, err = g2.GenerateQuiz(ctx, genRequest(), mockContext)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateAttemptSingleCall(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{text: `{"feedback":"Solid","strengths":["recall"],"weaknesses":[],"recommendations":[],"recommended_difficulty":"EXPERT","course_validated":true}`},
	}}
	sink := &recordingSink{}
	g, _ := newTestGenerator(p, sink)

	stats := models.AttemptStats{ScorePercent: 80, CorrectAnswers: 4, TotalQuestions: 5}
	eval, err := g.EvaluateAttempt(context.Background(), "course-1", stats)
	require.NoError(t, err)
	require.Equal(t, 1, p.calls)
	require.Equal(t, "Solid", eval.Feedback)
	require.Equal(t, models.DifficultyExpert, eval.RecommendedDifficulty)
	require.Equal(t, OpAttemptEvaluate, p.lastOp)
	require.Contains(t, p.lastPrompt, "Score: 80.0%")
	require.Contains(t, p.lastPrompt, "Correct: 4/5")
}

func TestEvaluateAttemptErrorFallsBackWithoutRetry(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{err: fmt.Errorf("gemini error 429: slow down")},
	}}
	g, delays := newTestGenerator(p, nil)

	eval, err := g.EvaluateAttempt(context.Background(), "course-1", models.AttemptStats{ScorePercent: 40, CorrectAnswers: 2, TotalQuestions: 5})
	require.NoError(t, err)
	require.Equal(t, 1, p.calls, "evaluation never retries")
	require.Empty(t, *delays)
	require.False(t, eval.CourseValidated)
	require.Equal(t, "Keep studying! Review the material.", eval.Feedback)
}

func TestEvaluateAttemptMalformedReplyFallsBack(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{{text: "I cannot help with that."}}}
	g, _ := newTestGenerator(p, nil)

	eval, err := g.EvaluateAttempt(context.Background(), "course-1", models.AttemptStats{ScorePercent: 90, CorrectAnswers: 9, TotalQuestions: 10})
	require.NoError(t, err)
	require.True(t, eval.CourseValidated)
	require.Equal(t, "Good job! You passed the quiz.", eval.Feedback)
}
