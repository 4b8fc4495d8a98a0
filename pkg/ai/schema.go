package ai

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// feedbackSchema pins the shape the model must return. Responses that drift
// from it are rejected before decoding, so a half-formed payload can never
// reach persistence.
const feedbackSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["parameter_feedback", "overall_score", "overall_reason", "summary"],
  "properties": {
    "parameter_feedback": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["parameter", "feedback"],
        "properties": {
          "parameter": {"type": "string"},
          "feedback": {"type": "string"}
        }
      }
    },
    "overall_score": {"type": "number", "minimum": 0},
    "overall_reason": {"type": "string"},
    "summary": {"type": "string"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvement": {"type": "array", "items": {"type": "string"}},
    "actionable_steps": {"type": "array", "items": {"type": "string"}},
    "skill_gap": {"type": "array", "items": {"type": "string"}},
    "keywords": {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledFeedbackSchema = jsonschema.MustCompileString("rubric_feedback.json", feedbackSchema)

func parseRubricFeedback(content string) (RubricFeedback, error) {
	var generic interface{}
	if err := json.Unmarshal([]byte(content), &generic); err != nil {
		return RubricFeedback{}, fmt.Errorf("%w: parse feedback json: %v", ErrAnalysisFailed, err)
	}

	if err := compiledFeedbackSchema.Validate(generic); err != nil {
		return RubricFeedback{}, fmt.Errorf("%w: feedback payload rejected by schema: %v", ErrAnalysisFailed, err)
	}

	var feedback RubricFeedback
	if err := json.Unmarshal([]byte(content), &feedback); err != nil {
		return RubricFeedback{}, fmt.Errorf("%w: decode feedback json: %v", ErrAnalysisFailed, err)
	}

	if feedback.OverallScore < 0 {
		feedback.OverallScore = 0
	}

	return feedback, nil
}
