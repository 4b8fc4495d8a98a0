package dto

import (
	"time"

	"github.com/noah-isme/hackeval-go-api/internal/models"
)

// SubmissionCreateRequest carries the identifiers accompanying an upload.
type SubmissionCreateRequest struct {
	HackathonID uint `json:"hackathon_id" validate:"required"`
	StudentID   uint `json:"student_id" validate:"required"`
}

// SubmissionAckResponse is returned as soon as the submission row is durable,
// before the evaluation pipeline runs.
type SubmissionAckResponse struct {
	SubmissionID  uint   `json:"submission_id"`
	SubmissionURL string `json:"submission_url"`
}

// ParameterFeedbackResponse mirrors one rubric parameter's feedback.
type ParameterFeedbackResponse struct {
	Parameter string `json:"parameter"`
	Feedback  string `json:"feedback"`
}

// EvaluationResponse is the read model of a completed evaluation.
type EvaluationResponse struct {
	ID                uint                        `json:"id"`
	Status            string                      `json:"status"`
	Category          string                      `json:"category"`
	ParameterFeedback []ParameterFeedbackResponse `json:"parameter_feedback"`
	OverallScore      float64                     `json:"overall_score"`
	OverallReason     string                      `json:"overall_reason"`
	Summary           string                      `json:"summary"`
	Strengths         []string                    `json:"strengths"`
	Improvement       []string                    `json:"improvement"`
	ActionableSteps   []string                    `json:"actionable_steps"`
	CreatedAt         time.Time                   `json:"created_at"`
}

// SubmissionResponse is the read model of a submission, including its
// evaluation once the pipeline has produced one.
type SubmissionResponse struct {
	ID            uint                `json:"id"`
	HackathonID   uint                `json:"hackathon_id"`
	StudentID     uint                `json:"student_id"`
	SubmissionURL string              `json:"submission_url"`
	Evaluated     bool                `json:"evaluated"`
	Evaluation    *EvaluationResponse `json:"evaluation,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewSubmissionResponse maps a submission model to its read model.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:            submission.ID,
		HackathonID:   submission.HackathonID,
		StudentID:     submission.StudentID,
		SubmissionURL: submission.SubmissionURL,
		Evaluated:     submission.IsEvaluated(),
		CreatedAt:     submission.CreatedAt,
	}

	if submission.Evaluation != nil {
		evaluation := NewEvaluationResponse(*submission.Evaluation)
		response.Evaluation = &evaluation
	}

	return response
}

// NewEvaluationResponse maps an evaluation model to its read model.
func NewEvaluationResponse(evaluation models.Evaluation) EvaluationResponse {
	feedback := make([]ParameterFeedbackResponse, 0, len(evaluation.ParameterFeedback))
	for _, entry := range evaluation.ParameterFeedback {
		feedback = append(feedback, ParameterFeedbackResponse{
			Parameter: entry.Parameter,
			Feedback:  entry.Feedback,
		})
	}

	return EvaluationResponse{
		ID:                evaluation.ID,
		Status:            evaluation.Status,
		Category:          evaluation.Category,
		ParameterFeedback: feedback,
		OverallScore:      evaluation.OverallScore,
		OverallReason:     evaluation.OverallReason,
		Summary:           evaluation.Summary,
		Strengths:         evaluation.Strengths,
		Improvement:       evaluation.Improvement,
		ActionableSteps:   evaluation.ActionableSteps,
		CreatedAt:         evaluation.CreatedAt,
	}
}
