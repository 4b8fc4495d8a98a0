package service

import "github.com/noah-isme/hackeval-go-api/internal/models"

// Category band boundaries on the 0-10 scale, inclusive on the lower side.
const (
	revisitThreshold   = 4.0
	shortlistThreshold = 7.0
)

// NormalizeScore converts a raw rubric sum (0-2 points per parameter) into
// the 0-10 scale and its category. A parameter count of zero forces a zero
// score rather than dividing by zero. Pure function, no I/O.
func NormalizeScore(raw float64, parameterCount int) (float64, string) {
	if parameterCount <= 0 {
		return 0, models.CategoryRejected
	}

	max := float64(parameterCount) * 2
	score := raw / max * 10

	// The raw score is bounded upstream, but clamp anyway.
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	switch {
	case score < revisitThreshold:
		return score, models.CategoryRejected
	case score < shortlistThreshold:
		return score, models.CategoryRevisit
	default:
		return score, models.CategoryShortlisted
	}
}
