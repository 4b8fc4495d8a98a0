package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hackeval",
		Subsystem: "ai",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of rubric analysis requests",
	}, []string{"model", "kind"})

	analysisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackeval",
		Subsystem: "ai",
		Name:      "analysis_failures_total",
		Help:      "Number of rubric analysis failures",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI analyzer.
type OpenAIConfig struct {
	APIKey             string
	ChatModel          string
	TranscriptionModel string
	MaxTokens          int
	Temperature        float32
	Logger             zerolog.Logger
}

// OpenAIAnalyzer implements Analyzer against the OpenAI API. Audio content is
// transcribed first, then the transcript runs through the same rubric prompt
// as text content.
type OpenAIAnalyzer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAnalyzer builds a new analyzer using the provided configuration.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/hackeval-go-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// AnalyzeText scores extracted text content against the rubric.
func (a *OpenAIAnalyzer) AnalyzeText(parent context.Context, rubric RubricContext, text string) (RubricFeedback, error) {
	ctx, span := a.tracer.Start(parent, "openai.analyze_text", trace.WithAttributes(
		attribute.String("model", a.cfg.ChatModel),
		attribute.Int("rubric.parameter_count", len(rubric.Parameters)),
	))
	defer span.End()

	return a.analyze(ctx, span, rubric, text, "text")
}

// AnalyzeAudio transcribes the audio file and scores the transcript against
// the rubric. The transcription is part of content preparation; the single
// analysis call happens on the transcript.
func (a *OpenAIAnalyzer) AnalyzeAudio(parent context.Context, rubric RubricContext, audioPath string) (RubricFeedback, error) {
	ctx, span := a.tracer.Start(parent, "openai.analyze_audio", trace.WithAttributes(
		attribute.String("model", a.cfg.ChatModel),
		attribute.String("transcription_model", a.cfg.TranscriptionModel),
		attribute.Int("rubric.parameter_count", len(rubric.Parameters)),
	))
	defer span.End()

	start := time.Now()
	transcript, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.cfg.TranscriptionModel,
		FilePath: audioPath,
	})
	analysisDuration.WithLabelValues(a.cfg.TranscriptionModel, "transcription").Observe(time.Since(start).Seconds())
	if err != nil {
		analysisFailures.WithLabelValues(a.cfg.TranscriptionModel, "transcription").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RubricFeedback{}, fmt.Errorf("%w: openai transcribe: %v", ErrAnalysisFailed, err)
	}

	if strings.TrimSpace(transcript.Text) == "" {
		err := fmt.Errorf("%w: transcription produced no text", ErrAnalysisFailed)
		analysisFailures.WithLabelValues(a.cfg.TranscriptionModel, "transcription").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RubricFeedback{}, err
	}

	return a.analyze(ctx, span, rubric, transcript.Text, "audio")
}

func (a *OpenAIAnalyzer) analyze(ctx context.Context, span trace.Span, rubric RubricContext, content, kind string) (RubricFeedback, error) {
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.ChatModel,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analyzerSystemPrompt(rubric),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildRubricPrompt(rubric, content),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, request)
	analysisDuration.WithLabelValues(a.cfg.ChatModel, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		analysisFailures.WithLabelValues(a.cfg.ChatModel, kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RubricFeedback{}, fmt.Errorf("%w: openai analyze: %v", ErrAnalysisFailed, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned from openai", ErrAnalysisFailed)
		analysisFailures.WithLabelValues(a.cfg.ChatModel, kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RubricFeedback{}, err
	}

	feedback, err := parseRubricFeedback(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		analysisFailures.WithLabelValues(a.cfg.ChatModel, kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RubricFeedback{}, err
	}

	a.logger.Debug().
		Int("parameters", len(feedback.ParameterFeedback)).
		Float64("raw_score", feedback.OverallScore).
		Msg("rubric analysis completed")

	return feedback, nil
}

func analyzerSystemPrompt(rubric RubricContext) string {
	b := strings.Builder{}
	b.WriteString("You are a hackathon judge. Evaluate the submission against each judging parameter, ")
	b.WriteString("awarding 0 to 2 points per parameter. Respond with a JSON object containing ")
	b.WriteString("parameter_feedback (array of {parameter, feedback}, one entry per parameter in order), ")
	b.WriteString("overall_score (the sum of points across parameters), overall_reason, summary, ")
	b.WriteString("strengths, improvement, actionable_steps, skill_gap, and keywords (string arrays).")
	if rubric.CustomPrompt != "" {
		b.WriteString("\nAdditional judging instructions: ")
		b.WriteString(rubric.CustomPrompt)
	}
	return b.String()
}

func buildRubricPrompt(rubric RubricContext, content string) string {
	b := strings.Builder{}
	b.WriteString("# Hackathon\n")
	b.WriteString("Title: ")
	b.WriteString(rubric.Title)
	b.WriteString("\nDescription: ")
	b.WriteString(rubric.Description)
	b.WriteString("\nProblem Statement: ")
	b.WriteString(rubric.ProblemStatement)
	b.WriteString("\nContext: ")
	b.WriteString(rubric.Context)
	b.WriteString("\n\n# Judging Parameters\n")
	for i, param := range rubric.Parameters {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, param))
	}
	b.WriteString("\n# Submission\n")
	b.WriteString(content)
	b.WriteString("\nReturn JSON.")
	return b.String()
}
