package ai

import (
	"context"
	"errors"
)

// ErrAnalysisFailed wraps every analysis failure: transport errors, empty
// transcriptions, and responses that fail schema validation.
var ErrAnalysisFailed = errors.New("analysis failed")

// RubricContext carries the hackathon brief and judging parameters supplied
// to analysis. It is assembled per run and never persisted.
type RubricContext struct {
	Title            string
	Description      string
	ProblemStatement string
	Context          string
	Parameters       []string
	CustomPrompt     string
}

// ParameterFeedback is the model's feedback on one judging parameter.
type ParameterFeedback struct {
	Parameter string `json:"parameter"`
	Feedback  string `json:"feedback"`
}

// RubricFeedback is the structured result returned by the analysis service.
// OverallScore is a raw sum over parameters, each contributing 0-2 points;
// normalization to the 0-10 scale happens downstream.
type RubricFeedback struct {
	ParameterFeedback []ParameterFeedback `json:"parameter_feedback"`
	OverallScore      float64             `json:"overall_score"`
	OverallReason     string              `json:"overall_reason"`
	Summary           string              `json:"summary"`
	Strengths         []string            `json:"strengths"`
	Improvement       []string            `json:"improvement"`
	ActionableSteps   []string            `json:"actionable_steps"`
	SkillGap          []string            `json:"skill_gap"`
	Keywords          []string            `json:"keywords"`
}

// Analyzer scores extracted submission content against a rubric. Each entry
// point performs a single analysis call and never retries; callers treat any
// error as terminal for the run.
type Analyzer interface {
	AnalyzeText(ctx context.Context, rubric RubricContext, text string) (RubricFeedback, error)
	AnalyzeAudio(ctx context.Context, rubric RubricContext, audioPath string) (RubricFeedback, error)
}
