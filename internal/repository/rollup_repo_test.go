package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/hackeval-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Hackathon{},
		&models.Student{},
		&models.Submission{},
		&models.Evaluation{},
		&models.HackathonRollup{},
		&models.HackathonParticipant{},
	))
	return db
}

func TestRollupRepositoryUpsertCategoryIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRollupRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertCategory(ctx, 1, 7, 100, models.CategoryRevisit))
	require.NoError(t, repo.UpsertCategory(ctx, 1, 7, 100, models.CategoryRevisit))

	rollups, err := repo.ListByHackathon(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rollups, 1)
	require.Equal(t, models.CategoryRevisit, rollups[0].Category)
}

func TestRollupRepositoryUpsertCategoryReplacesBucket(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRollupRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertCategory(ctx, 1, 7, 100, models.CategoryRejected))
	require.NoError(t, repo.UpsertCategory(ctx, 1, 7, 101, models.CategoryShortlisted))

	rollups, err := repo.ListByHackathon(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rollups, 1, "a student must sit in exactly one category set")
	require.Equal(t, models.CategoryShortlisted, rollups[0].Category)
	require.Equal(t, uint(101), rollups[0].SubmissionID)
}

func TestRollupRepositoryParticipantSetUnion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRollupRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddParticipant(ctx, 2, 5))
	require.NoError(t, repo.AddParticipant(ctx, 2, 5))
	require.NoError(t, repo.AddParticipant(ctx, 2, 6))

	participants, err := repo.ListParticipants(ctx, 2)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	require.Equal(t, uint(5), participants[0].StudentID)
	require.Equal(t, uint(6), participants[1].StudentID)
}
