package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackeval-go-api/internal/config"
	"github.com/noah-isme/hackeval-go-api/internal/dto"
	"github.com/noah-isme/hackeval-go-api/internal/handler"
	"github.com/noah-isme/hackeval-go-api/internal/router"
	"github.com/noah-isme/hackeval-go-api/internal/service"
)

type submissionServiceStub struct {
	ack     dto.SubmissionAckResponse
	read    dto.SubmissionResponse
	err     error
	payload dto.SubmissionCreateRequest
}

func (s *submissionServiceStub) Submit(_ context.Context, payload dto.SubmissionCreateRequest, _ *multipart.FileHeader) (dto.SubmissionAckResponse, error) {
	s.payload = payload
	if s.err != nil {
		return dto.SubmissionAckResponse{}, s.err
	}
	return s.ack, nil
}

func (s *submissionServiceStub) Get(_ context.Context, id uint) (dto.SubmissionResponse, error) {
	if s.err != nil {
		return dto.SubmissionResponse{}, s.err
	}
	return s.read, nil
}

type hackathonServiceStub struct {
	results dto.HackathonResultsResponse
	err     error
}

func (s *hackathonServiceStub) Results(_ context.Context, hackathonID uint) (dto.HackathonResultsResponse, error) {
	if s.err != nil {
		return dto.HackathonResultsResponse{}, s.err
	}
	return s.results, nil
}

func (s *hackathonServiceStub) Insights(_ context.Context, hackathonID uint) (dto.HackathonInsightsResponse, error) {
	if s.err != nil {
		return dto.HackathonInsightsResponse{}, s.err
	}
	return dto.HackathonInsightsResponse{HackathonID: hackathonID}, nil
}

func setupApp(submissions service.SubmissionService, hackathons service.HackathonService) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissions, logger),
		HackathonHandler:  handler.NewHackathonHandler(hackathons, logger),
	})

	return app
}

func multipartUpload(t *testing.T, studentID, filename string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if studentID != "" {
		require.NoError(t, writer.WriteField("student_id", studentID))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("submission content"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestSubmissionCreateAccepted(t *testing.T) {
	stub := &submissionServiceStub{ack: dto.SubmissionAckResponse{SubmissionID: 7, SubmissionURL: "https://cdn.test/7"}}
	app := setupApp(stub, &hackathonServiceStub{})

	body, contentType := multipartUpload(t, "2", "pitch.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hackathons/1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var payload struct {
		Success bool                      `json:"success"`
		Data    dto.SubmissionAckResponse `json:"data"`
	}
	decodeBody(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, uint(7), payload.Data.SubmissionID)
	require.Equal(t, uint(1), stub.payload.HackathonID)
	require.Equal(t, uint(2), stub.payload.StudentID)
}

func TestSubmissionCreateMissingFile(t *testing.T) {
	app := setupApp(&submissionServiceStub{}, &hackathonServiceStub{})

	body, contentType := multipartUpload(t, "2", "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hackathons/1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionCreateMissingStudent(t *testing.T) {
	app := setupApp(&submissionServiceStub{}, &hackathonServiceStub{})

	body, contentType := multipartUpload(t, "", "pitch.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hackathons/1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionCreateClosedHackathon(t *testing.T) {
	app := setupApp(&submissionServiceStub{err: service.ErrSubmissionClosed}, &hackathonServiceStub{})

	body, contentType := multipartUpload(t, "2", "pitch.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hackathons/1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmissionCreateOversizedUpload(t *testing.T) {
	app := setupApp(&submissionServiceStub{err: service.ErrUploadTooLarge}, &hackathonServiceStub{})

	body, contentType := multipartUpload(t, "2", "pitch.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hackathons/1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestSubmissionGet(t *testing.T) {
	stub := &submissionServiceStub{read: dto.SubmissionResponse{ID: 7, HackathonID: 1, StudentID: 2, Evaluated: true}}
	app := setupApp(stub, &hackathonServiceStub{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/submissions/7", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeBody(t, resp, &payload)
	require.Equal(t, uint(7), payload.Data.ID)
	require.True(t, payload.Data.Evaluated)
}

func TestSubmissionGetNotFound(t *testing.T) {
	app := setupApp(&submissionServiceStub{err: service.ErrSubmissionNotFound}, &hackathonServiceStub{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/submissions/404", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
