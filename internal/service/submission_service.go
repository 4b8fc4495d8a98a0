package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hackeval-go-api/internal/dto"
	"github.com/noah-isme/hackeval-go-api/internal/middleware"
	"github.com/noah-isme/hackeval-go-api/internal/models"
	"github.com/noah-isme/hackeval-go-api/internal/queue"
	"github.com/noah-isme/hackeval-go-api/internal/repository"
)

// Intake validation errors, surfaced to the caller before the pipeline runs.
var (
	ErrHackathonNotFound  = errors.New("hackathon not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionClosed   = errors.New("submission deadline already over")
	ErrFileRequired       = errors.New("submission file is required")
	ErrUploadTooLarge     = errors.New("file exceeds maximum allowed size")
)

// ArtifactStorage stores the uploaded bytes durably and returns their URL.
type ArtifactStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader, contentType string) (string, error)
}

// SubmissionService handles upload intake: validation, staging, durable
// storage, submission creation, and pipeline handoff. The acknowledgment is
// returned as soon as the submission row exists; everything else happens
// asynchronously.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionAckResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	hackathons  repository.HackathonRepository
	students    repository.StudentRepository
	submissions repository.SubmissionRepository
	storage     ArtifactStorage
	queue       queue.Queue
	validator   *validator.Validate
	stagingDir  string
	maxSize     int64
	logger      zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	hackathons repository.HackathonRepository,
	students repository.StudentRepository,
	submissions repository.SubmissionRepository,
	storage ArtifactStorage,
	jobQueue queue.Queue,
	validate *validator.Validate,
	stagingDir string,
	maxSizeMB int,
	logger zerolog.Logger,
) SubmissionService {
	if stagingDir == "" {
		stagingDir = filepath.Join(os.TempDir(), "hackeval-staging")
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 50
	}

	return &submissionService{
		hackathons:  hackathons,
		students:    students,
		submissions: submissions,
		storage:     storage,
		queue:       jobQueue,
		validator:   validate,
		stagingDir:  stagingDir,
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionAckResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionAckResponse{}, err
	}

	if file == nil {
		return dto.SubmissionAckResponse{}, ErrFileRequired
	}

	hackathon, err := s.hackathons.GetByID(ctx, payload.HackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionAckResponse{}, ErrHackathonNotFound
		}
		return dto.SubmissionAckResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionAckResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionAckResponse{}, err
	}

	if !hackathon.AcceptsSubmissions() {
		return dto.SubmissionAckResponse{}, ErrSubmissionClosed
	}

	data, mediaType, err := s.readUpload(file)
	if err != nil {
		return dto.SubmissionAckResponse{}, err
	}

	stagingPath, err := s.stageFile(payload, file.Filename, data)
	if err != nil {
		return dto.SubmissionAckResponse{}, fmt.Errorf("stage upload: %w", err)
	}

	url, err := s.storage.Upload(ctx, filepath.Base(stagingPath), bytes.NewReader(data), mediaType)
	if err != nil {
		s.discardStaging(stagingPath)
		return dto.SubmissionAckResponse{}, fmt.Errorf("store artifact: %w", err)
	}

	submission := models.Submission{
		HackathonID:   payload.HackathonID,
		StudentID:     payload.StudentID,
		SubmissionURL: url,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		s.discardStaging(stagingPath)
		return dto.SubmissionAckResponse{}, err
	}

	job := queue.Job{
		SubmissionID:  submission.ID,
		HackathonID:   payload.HackathonID,
		StudentID:     payload.StudentID,
		StagingPath:   stagingPath,
		MediaType:     mediaType,
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		// The submission is durable but will never be evaluated without an
		// out-of-band reprocessing pass. The upload itself succeeded. No
		// pipeline run will ever own the staging copy, so release it here;
		// the bytes are already in object storage.
		s.discardStaging(stagingPath)
		s.logger.Error().Err(err).
			Uint("submission_id", submission.ID).
			Msg("failed to enqueue pipeline job")
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("hackathon_id", payload.HackathonID).
		Uint("student_id", payload.StudentID).
		Str("media_type", mediaType).
		Msg("submission recorded")

	return dto.SubmissionAckResponse{
		SubmissionID:  submission.ID,
		SubmissionURL: url,
	}, nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) readUpload(file *multipart.FileHeader) ([]byte, string, error) {
	if file.Size > s.maxSize {
		return nil, "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > s.maxSize {
		return nil, "", ErrUploadTooLarge
	}

	mediaType := strings.TrimSpace(file.Header.Get("Content-Type"))
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mimetype.Detect(buf.Bytes()).String()
	}

	return buf.Bytes(), mediaType, nil
}

// stageFile writes the transient local copy the pipeline extracts from. The
// name carries a per-attempt uuid so concurrent submissions by the same
// (hackathon, student) pair never contend on one path.
func (s *submissionService) stageFile(payload dto.SubmissionCreateRequest, originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%d-%s%s", payload.HackathonID, payload.StudentID, uuid.NewString(), filepath.Ext(originalName))
	path := filepath.Join(s.stagingDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}

	return path, nil
}

func (s *submissionService) discardStaging(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to delete staging file")
	}
}
