package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eduplatform/internal/config"
	"eduplatform/internal/ingest"
	"eduplatform/internal/models"
	"eduplatform/internal/providers"
	"eduplatform/internal/quiz"
	"eduplatform/internal/retrieval"
	"eduplatform/internal/util"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// quizgen turns a single material file into a quiz without a database or a
// running API, useful for trying out prompts and providers locally.
func main() {
	_ = godotenv.Load(".env")
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		file       = flag.String("file", "", "course material to read (.pdf, .txt or .md)")
		title      = flag.String("title", "", "course title used in the prompt (defaults to the file name)")
		count      = flag.Int("count", 0, "number of questions (defaults to EDUPLATFORM_DEFAULT_QUESTIONS)")
		difficulty = flag.String("difficulty", "MEDIUM", "quiz difficulty: EASY, MEDIUM, HARD or EXPERT")
		out        = flag.String("out", "", "write the quiz JSON to this file instead of stdout")
	)
	flag.Parse()
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: quizgen -file material.pdf [-title ...] [-count N] [-difficulty HARD] [-out quiz.json]")
		os.Exit(2)
	}

	cfg := config.Load()
	questionCount := *count
	if questionCount < 1 {
		questionCount = cfg.DefaultQuestions
	}
	courseTitle := strings.TrimSpace(*title)
	if courseTitle == "" {
		base := filepath.Base(*file)
		courseTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	text, err := ingest.ExtractTextFromFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("extract material")
	}
	segments := retrieval.ChunkContent(text, cfg.ChunkSize, cfg.ChunkOverlap)
	sampled, err := retrieval.SampleSegments(segments, questionCount)
	if err != nil {
		log.Fatal().Err(err).Msg("sample segments")
	}
	contextText := retrieval.JoinSegments(sampled)

	manager, err := providers.NewManager(cfg.LLMProviders)
	if err != nil {
		log.Fatal().Err(err).Msg("configure providers")
	}
	client, ref, ok := manager.ActiveLLMProvider()
	if ok {
		log.Info().Str("provider", ref.Name).Msg("llm provider active")
	} else {
		log.Warn().Msg("no llm provider configured, using the mock fallback")
	}

	gen := quiz.NewGenerator(client, quiz.Options{
		MaxAttempts: cfg.GenMaxAttempts,
		BaseDelay:   time.Duration(cfg.GenBaseDelaySecs) * time.Second,
	})
	result, err := gen.GenerateQuiz(context.Background(), models.GenerationRequest{
		CourseTitle:   courseTitle,
		QuestionCount: questionCount,
		Difficulty:    models.ParseDifficulty(*difficulty),
	}, contextText)
	if err != nil {
		log.Fatal().Err(err).Msg("generate quiz")
	}
	log.Info().Int("segments", len(segments)).Int("sampled", len(sampled)).
		Int("questions", len(result.Questions)).Str("model", result.ModelUsed).Msg("quiz generated")

	if *out != "" {
		if err := util.WriteJSONAtomic(*out, result); err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("write quiz")
		}
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("encode quiz")
	}
}
