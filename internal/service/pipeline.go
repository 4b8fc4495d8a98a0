package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/hackeval-go-api/internal/extract"
	"github.com/noah-isme/hackeval-go-api/internal/middleware"
	"github.com/noah-isme/hackeval-go-api/internal/models"
	"github.com/noah-isme/hackeval-go-api/internal/observability"
	"github.com/noah-isme/hackeval-go-api/internal/queue"
	"github.com/noah-isme/hackeval-go-api/internal/repository"
	"github.com/noah-isme/hackeval-go-api/pkg/ai"
)

// Pipeline stages, in execution order. A run moves strictly forward; any
// fallible stage can drop into failed, and cleanup runs on every exit path.
const (
	StageStaged         = "staged"
	StageExtracting     = "extracting"
	StageAnalyzing      = "analyzing"
	StageNormalizing    = "normalizing"
	StagePersisting     = "persisting"
	StageRollupUpdating = "rollup_updating"
	StageCleanup        = "cleanup"
	StageDone           = "done"
)

// AggregationSink receives skill-gap and keyword enrichment per hackathon.
// Sink failures never fail a pipeline run.
type AggregationSink interface {
	UpdateHackathonData(ctx context.Context, hackathonID uint, skillGaps, keywords []string) error
}

// SubmissionPipeline executes the post-acknowledgment processing of one
// submission: extraction, analysis, normalization, persistence, rollups, and
// staging cleanup. Runs are independent; the only shared state is behind the
// repositories and the sink.
type SubmissionPipeline struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	rollups     repository.RollupRepository
	extractor   extract.Extractor
	analyzer    ai.Analyzer
	aggregator  AggregationSink
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewSubmissionPipeline wires the pipeline's collaborators.
func NewSubmissionPipeline(
	hackathons repository.HackathonRepository,
	submissions repository.SubmissionRepository,
	evaluations repository.EvaluationRepository,
	rollups repository.RollupRepository,
	extractor extract.Extractor,
	analyzer ai.Analyzer,
	aggregator AggregationSink,
	logger zerolog.Logger,
) *SubmissionPipeline {
	return &SubmissionPipeline{
		hackathons:  hackathons,
		submissions: submissions,
		evaluations: evaluations,
		rollups:     rollups,
		extractor:   extractor,
		analyzer:    analyzer,
		aggregator:  aggregator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_pipeline").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/hackeval-go-api/internal/service/pipeline"),
	}
}

// Run processes one job to Done or Failed. It never returns before the
// staging file has been released; errors are terminal for the run and only
// reported through logs and metrics, since the caller was already
// acknowledged.
func (p *SubmissionPipeline) Run(parent context.Context, job queue.Job) (err error) {
	parent = middleware.ContextWithCorrelation(parent, job.CorrelationID)
	ctx, span := p.tracer.Start(parent, "pipeline.run", trace.WithAttributes(
		attribute.Int("submission_id", int(job.SubmissionID)),
		attribute.Int("hackathon_id", int(job.HackathonID)),
		attribute.Int("student_id", int(job.StudentID)),
		attribute.String("correlation_id", job.CorrelationID),
	))
	defer span.End()

	stage := StageStaged
	start := time.Now()

	defer func() {
		p.cleanupStaging(job.StagingPath)
		observability.PipelineDuration().Observe(time.Since(start).Seconds())

		if err != nil {
			observability.PipelineRuns().WithLabelValues("failed").Inc()
			observability.PipelineFailures().WithLabelValues(stage).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, stage)
			p.logger.Error().Err(err).
				Uint("submission_id", job.SubmissionID).
				Str("stage", stage).
				Str("correlation_id", job.CorrelationID).
				Msg("pipeline run failed")
			return
		}

		observability.PipelineRuns().WithLabelValues("completed").Inc()
		span.SetStatus(codes.Ok, StageDone)
	}()

	hackathon, err := p.hackathons.GetByID(ctx, job.HackathonID)
	if err != nil {
		return fmt.Errorf("load hackathon %d: %w", job.HackathonID, err)
	}
	rubric := p.buildRubric(hackathon)

	stage = StageExtracting
	span.AddEvent(stage)
	content, err := p.extractor.Extract(ctx, job.StagingPath, job.MediaType)
	if err != nil {
		return fmt.Errorf("extract submission %d: %w", job.SubmissionID, err)
	}
	defer func() {
		if closeErr := content.Close(); closeErr != nil {
			p.logger.Warn().Err(closeErr).
				Uint("submission_id", job.SubmissionID).
				Msg("failed to release derived content")
		}
	}()

	stage = StageAnalyzing
	span.AddEvent(stage)
	var feedback ai.RubricFeedback
	if content.IsAudio() {
		feedback, err = p.analyzer.AnalyzeAudio(ctx, rubric, content.AudioPath)
	} else {
		feedback, err = p.analyzer.AnalyzeText(ctx, rubric, content.Text)
	}
	if err != nil {
		return fmt.Errorf("analyze submission %d: %w", job.SubmissionID, err)
	}

	stage = StageNormalizing
	span.AddEvent(stage)
	score, category := NormalizeScore(feedback.OverallScore, len(feedback.ParameterFeedback))

	stage = StagePersisting
	span.AddEvent(stage)
	evaluation := models.Evaluation{
		SubmissionID:      job.SubmissionID,
		Status:            models.EvaluationStatusCompleted,
		Category:          category,
		ParameterFeedback: toParameterFeedback(feedback.ParameterFeedback),
		OverallScore:      score,
		OverallReason:     feedback.OverallReason,
		Summary:           feedback.Summary,
		Strengths:         datatypes.JSONSlice[string](feedback.Strengths),
		Improvement:       datatypes.JSONSlice[string](feedback.Improvement),
		ActionableSteps:   datatypes.JSONSlice[string](feedback.ActionableSteps),
	}
	if err = p.evaluations.Create(ctx, &evaluation); err != nil {
		return fmt.Errorf("persist evaluation for submission %d: %w", job.SubmissionID, err)
	}
	if err = p.submissions.SetEvaluation(ctx, job.SubmissionID, evaluation.ID); err != nil {
		// The evaluation row now exists but nothing references it. There is
		// no compensating delete; log both ids for out-of-band reconciliation.
		p.logger.Error().
			Uint("submission_id", job.SubmissionID).
			Uint("evaluation_id", evaluation.ID).
			Msg("evaluation persisted but submission back-reference failed")
		return fmt.Errorf("attach evaluation %d to submission %d: %w", evaluation.ID, job.SubmissionID, err)
	}

	stage = StageRollupUpdating
	span.AddEvent(stage)
	if err = p.rollups.UpsertCategory(ctx, job.HackathonID, job.StudentID, job.SubmissionID, category); err != nil {
		return fmt.Errorf("update category rollup: %w", err)
	}
	if err = p.rollups.AddParticipant(ctx, job.HackathonID, job.StudentID); err != nil {
		return fmt.Errorf("update participant rollup: %w", err)
	}
	if p.aggregator != nil {
		if aggErr := p.aggregator.UpdateHackathonData(ctx, job.HackathonID, feedback.SkillGap, feedback.Keywords); aggErr != nil {
			p.logger.Warn().Err(aggErr).
				Uint("hackathon_id", job.HackathonID).
				Msg("aggregation sink update failed")
		}
	}

	stage = StageDone
	p.logger.Info().
		Uint("submission_id", job.SubmissionID).
		Uint("evaluation_id", evaluation.ID).
		Str("category", category).
		Float64("score", score).
		Str("correlation_id", job.CorrelationID).
		Msg("submission evaluated")

	return nil
}

// cleanupStaging deletes the staging file. A missing file is fine: cleanup
// must be idempotent, and deletion failures are logged, never escalated.
func (p *SubmissionPipeline) cleanupStaging(path string) {
	if path == "" {
		return
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn().Err(err).Str("path", path).Msg("failed to delete staging file")
	}
}

func (p *SubmissionPipeline) buildRubric(hackathon models.Hackathon) ai.RubricContext {
	return ai.RubricContext{
		Title:            p.clean(hackathon.Title),
		Description:      p.clean(hackathon.Description),
		ProblemStatement: p.clean(hackathon.ProblemStatement),
		Context:          p.clean(hackathon.Context),
		Parameters:       hackathon.JudgingParameters,
		CustomPrompt:     p.clean(hackathon.CustomPrompt),
	}
}

func (p *SubmissionPipeline) clean(s string) string {
	return strings.TrimSpace(p.sanitizer.Sanitize(s))
}

func toParameterFeedback(entries []ai.ParameterFeedback) datatypes.JSONSlice[models.ParameterFeedback] {
	converted := make([]models.ParameterFeedback, 0, len(entries))
	for _, entry := range entries {
		converted = append(converted, models.ParameterFeedback{
			Parameter: entry.Parameter,
			Feedback:  entry.Feedback,
		})
	}
	return datatypes.JSONSlice[models.ParameterFeedback](converted)
}
