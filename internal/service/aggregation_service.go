package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackeval-go-api/internal/dto"
)

// AggregationService is the redis-backed aggregation sink. Each evaluation
// contributes its skill gaps and keywords to per-hackathon sets; repeated
// contributions are absorbed by set semantics.
type AggregationService struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewAggregationService constructs the sink. A nil client disables it.
func NewAggregationService(client *redis.Client, logger zerolog.Logger) *AggregationService {
	return &AggregationService{
		redis:  client,
		logger: logger.With().Str("component", "aggregation_service").Logger(),
	}
}

// UpdateHackathonData adds skill gaps and keywords to the hackathon's
// aggregate sets. Callers treat failures as non-fatal.
func (s *AggregationService) UpdateHackathonData(ctx context.Context, hackathonID uint, skillGaps, keywords []string) error {
	if s.redis == nil || (len(skillGaps) == 0 && len(keywords) == 0) {
		return nil
	}

	pipe := s.redis.Pipeline()
	if len(skillGaps) > 0 {
		pipe.SAdd(ctx, skillGapKey(hackathonID), toMembers(skillGaps)...)
	}
	if len(keywords) > 0 {
		pipe.SAdd(ctx, keywordKey(hackathonID), toMembers(keywords)...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update hackathon aggregates: %w", err)
	}

	return nil
}

// Insights reads the aggregated sets back for the insights endpoint.
func (s *AggregationService) Insights(ctx context.Context, hackathonID uint) (dto.HackathonInsightsResponse, error) {
	response := dto.HackathonInsightsResponse{HackathonID: hackathonID}
	if s.redis == nil {
		return response, nil
	}

	skillGaps, err := s.redis.SMembers(ctx, skillGapKey(hackathonID)).Result()
	if err != nil {
		return dto.HackathonInsightsResponse{}, fmt.Errorf("read skill gaps: %w", err)
	}

	keywords, err := s.redis.SMembers(ctx, keywordKey(hackathonID)).Result()
	if err != nil {
		return dto.HackathonInsightsResponse{}, fmt.Errorf("read keywords: %w", err)
	}

	response.SkillGaps = skillGaps
	response.Keywords = keywords
	return response, nil
}

func skillGapKey(hackathonID uint) string {
	return fmt.Sprintf("hackathon:%d:skill_gaps", hackathonID)
}

func keywordKey(hackathonID uint) string {
	return fmt.Sprintf("hackathon:%d:keywords", hackathonID)
}

func toMembers(values []string) []interface{} {
	members := make([]interface{}, 0, len(values))
	for _, v := range values {
		members = append(members, v)
	}
	return members
}
