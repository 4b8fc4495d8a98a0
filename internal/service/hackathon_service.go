package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hackeval-go-api/internal/dto"
	"github.com/noah-isme/hackeval-go-api/internal/models"
	"github.com/noah-isme/hackeval-go-api/internal/repository"
)

// ErrResultsNotPublished gates the results view until the organizer publishes.
var ErrResultsNotPublished = errors.New("results not published yet")

// HackathonService serves the read side of a hackathon: categorized results
// and aggregated insights.
type HackathonService interface {
	Results(ctx context.Context, hackathonID uint) (dto.HackathonResultsResponse, error)
	Insights(ctx context.Context, hackathonID uint) (dto.HackathonInsightsResponse, error)
}

type hackathonService struct {
	hackathons repository.HackathonRepository
	rollups    repository.RollupRepository
	aggregates *AggregationService
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewHackathonService builds the hackathon read service.
func NewHackathonService(
	hackathons repository.HackathonRepository,
	rollups repository.RollupRepository,
	aggregates *AggregationService,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) HackathonService {
	return &hackathonService{
		hackathons: hackathons,
		rollups:    rollups,
		aggregates: aggregates,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "hackathon_service").Logger(),
	}
}

func (s *hackathonService) Results(ctx context.Context, hackathonID uint) (dto.HackathonResultsResponse, error) {
	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HackathonResultsResponse{}, ErrHackathonNotFound
		}
		return dto.HackathonResultsResponse{}, err
	}

	if !hackathon.ResultPublished {
		return dto.HackathonResultsResponse{}, ErrResultsNotPublished
	}

	cacheKey := fmt.Sprintf("hackathon:%d:results", hackathonID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.HackathonResultsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("hackathon_id", hackathonID).Msg("results cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read results cache")
		}
	}

	rollups, err := s.rollups.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return dto.HackathonResultsResponse{}, err
	}

	participants, err := s.rollups.ListParticipants(ctx, hackathonID)
	if err != nil {
		return dto.HackathonResultsResponse{}, err
	}

	response := buildResults(hackathonID, rollups, participants)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store results cache")
			}
		}
	}

	return response, nil
}

func (s *hackathonService) Insights(ctx context.Context, hackathonID uint) (dto.HackathonInsightsResponse, error) {
	if _, err := s.hackathons.GetByID(ctx, hackathonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HackathonInsightsResponse{}, ErrHackathonNotFound
		}
		return dto.HackathonInsightsResponse{}, err
	}

	return s.aggregates.Insights(ctx, hackathonID)
}

func buildResults(hackathonID uint, rollups []models.HackathonRollup, participants []models.HackathonParticipant) dto.HackathonResultsResponse {
	response := dto.HackathonResultsResponse{
		HackathonID:  hackathonID,
		Shortlisted:  []uint{},
		Revisit:      []uint{},
		Rejected:     []uint{},
		Participants: []uint{},
	}

	for _, rollup := range rollups {
		switch rollup.Category {
		case models.CategoryShortlisted:
			response.Shortlisted = append(response.Shortlisted, rollup.StudentID)
		case models.CategoryRevisit:
			response.Revisit = append(response.Revisit, rollup.StudentID)
		case models.CategoryRejected:
			response.Rejected = append(response.Rejected, rollup.StudentID)
		}
	}

	for _, participant := range participants {
		response.Participants = append(response.Participants, participant.StudentID)
	}

	return response
}
