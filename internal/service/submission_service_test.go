package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackeval-go-api/internal/dto"
	"github.com/noah-isme/hackeval-go-api/internal/middleware"
	"github.com/noah-isme/hackeval-go-api/internal/models"
	"github.com/noah-isme/hackeval-go-api/internal/queue"
)

type studentRepoStub struct {
	student models.Student
	err     error
}

func (s *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	return nil
}

func (s *studentRepoStub) GetByID(ctx context.Context, id uint) (models.Student, error) {
	if s.err != nil {
		return models.Student{}, s.err
	}
	return s.student, nil
}

type storageStub struct {
	name        string
	contentType string
	err         error
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.name = name
	s.contentType = contentType
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + name, nil
}

type queueStub struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (q *queueStub) Enqueue(ctx context.Context, job queue.Job) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *queueStub) Close() {}

func newIntakeService(t *testing.T, hackathons *hackathonRepoStub, students *studentRepoStub, submissions *submissionRepoStub, storage *storageStub, jobs *queueStub) SubmissionService {
	t.Helper()
	return NewSubmissionService(
		hackathons, students, submissions, storage, jobs,
		validator.New(validator.WithRequiredStructEnabled()),
		t.TempDir(), 5, testLogger(),
	)
}

func buildFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestSubmitRecordsAndEnqueues(t *testing.T) {
	hackathons := &hackathonRepoStub{hackathon: testHackathon()}
	students := &studentRepoStub{student: models.Student{ID: 2, Name: "Ada"}}
	submissions := &submissionRepoStub{}
	storage := &storageStub{}
	jobs := &queueStub{}

	svc := newIntakeService(t, hackathons, students, submissions, storage, jobs)
	file := buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("%PDF-1.4 pitch"))

	ack, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2}, file)
	require.NoError(t, err)
	require.NotZero(t, ack.SubmissionID)
	require.Contains(t, ack.SubmissionURL, "cdn.example.com")

	require.Len(t, submissions.created, 1)
	require.Equal(t, ack.SubmissionURL, submissions.created[0].SubmissionURL)

	require.Len(t, jobs.jobs, 1)
	job := jobs.jobs[0]
	require.Equal(t, ack.SubmissionID, job.SubmissionID)
	require.Equal(t, "application/pdf", job.MediaType)
	require.NotEmpty(t, job.StagingPath)

	// The staging copy waits for the pipeline; intake must not remove it.
	_, statErr := os.Stat(job.StagingPath)
	require.NoError(t, statErr)
	require.Equal(t, "application/pdf", storage.contentType)
}

func TestSubmitStagingPathsUniquePerAttempt(t *testing.T) {
	hackathons := &hackathonRepoStub{hackathon: testHackathon()}
	students := &studentRepoStub{student: models.Student{ID: 2}}
	jobs := &queueStub{}
	svc := newIntakeService(t, hackathons, students, &submissionRepoStub{}, &storageStub{}, jobs)

	payload := dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2}
	_, err := svc.Submit(context.Background(), payload, buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("one")))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), payload, buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("two")))
	require.NoError(t, err)

	require.Len(t, jobs.jobs, 2)
	require.NotEqual(t, jobs.jobs[0].StagingPath, jobs.jobs[1].StagingPath)
}

func TestSubmitRejectsClosedHackathon(t *testing.T) {
	closed := testHackathon()
	closed.ResultPublished = true
	svc := newIntakeService(t,
		&hackathonRepoStub{hackathon: closed},
		&studentRepoStub{student: models.Student{ID: 2}},
		&submissionRepoStub{}, &storageStub{}, &queueStub{},
	)

	_, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2},
		buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("late")))
	require.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSubmitRequiresFile(t *testing.T) {
	svc := newIntakeService(t,
		&hackathonRepoStub{hackathon: testHackathon()},
		&studentRepoStub{student: models.Student{ID: 2}},
		&submissionRepoStub{}, &storageStub{}, &queueStub{},
	)

	_, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2}, nil)
	require.ErrorIs(t, err, ErrFileRequired)
}

func TestSubmitUnknownHackathon(t *testing.T) {
	svc := newIntakeService(t,
		&hackathonRepoStub{},
		&studentRepoStub{student: models.Student{ID: 2}},
		&submissionRepoStub{}, &storageStub{}, &queueStub{},
	)

	_, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 99, StudentID: 2},
		buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("x")))
	require.ErrorIs(t, err, ErrHackathonNotFound)
}

func TestSubmitRejectsOversizedUpload(t *testing.T) {
	svc := NewSubmissionService(
		&hackathonRepoStub{hackathon: testHackathon()},
		&studentRepoStub{student: models.Student{ID: 2}},
		&submissionRepoStub{}, &storageStub{}, &queueStub{},
		validator.New(validator.WithRequiredStructEnabled()),
		t.TempDir(), 1, testLogger(),
	)

	file := buildFileHeader(t, "huge.pdf", "application/pdf", bytes.Repeat([]byte("a"), 2*1024*1024))
	_, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2}, file)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestSubmitStorageFailureDiscardsStaging(t *testing.T) {
	storage := &storageStub{err: io.ErrClosedPipe}
	submissions := &submissionRepoStub{}
	svc := newIntakeService(t,
		&hackathonRepoStub{hackathon: testHackathon()},
		&studentRepoStub{student: models.Student{ID: 2}},
		submissions, storage, &queueStub{},
	)

	_, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2},
		buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("x")))
	require.Error(t, err)
	require.Empty(t, submissions.created)
}

func TestSubmitAcksEvenWhenEnqueueFails(t *testing.T) {
	stagingDir := t.TempDir()
	jobs := &queueStub{err: io.ErrClosedPipe}
	svc := NewSubmissionService(
		&hackathonRepoStub{hackathon: testHackathon()},
		&studentRepoStub{student: models.Student{ID: 2}},
		&submissionRepoStub{}, &storageStub{}, jobs,
		validator.New(validator.WithRequiredStructEnabled()),
		stagingDir, 5, testLogger(),
	)

	ack, err := svc.Submit(context.Background(), dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2},
		buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("x")))
	require.NoError(t, err, "the upload is durable; the stuck run is an operational concern")
	require.NotZero(t, ack.SubmissionID)

	// No pipeline run will ever delete the staging copy, so intake must.
	entries, err := os.ReadDir(stagingDir)
	require.NoError(t, err)
	require.Empty(t, entries, "staging copy must not leak when the job cannot be enqueued")
}

func TestSubmitStampsCorrelationIDOnJob(t *testing.T) {
	jobs := &queueStub{}
	svc := newIntakeService(t,
		&hackathonRepoStub{hackathon: testHackathon()},
		&studentRepoStub{student: models.Student{ID: 2}},
		&submissionRepoStub{}, &storageStub{}, jobs,
	)

	ctx := middleware.ContextWithCorrelation(context.Background(), "corr-abc")
	_, err := svc.Submit(ctx, dto.SubmissionCreateRequest{HackathonID: 1, StudentID: 2},
		buildFileHeader(t, "pitch.pdf", "application/pdf", []byte("x")))
	require.NoError(t, err)

	require.Len(t, jobs.jobs, 1)
	require.Equal(t, "corr-abc", jobs.jobs[0].CorrelationID)
}
