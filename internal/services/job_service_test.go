package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/dtos"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

func TestJobService_CreateAndForm(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	formSvc := NewFormService(store)
	def, err := formSvc.EnsureDefault(ctx)
	require.NoError(t, err)
	custom, err := formSvc.Create(ctx, "Design", "", false)
	require.NoError(t, err)

	svc := NewJobService(store, store)

	plain, err := svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: " Acme ", Title: " Backend Engineer ", Description: "APIs"})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", plain.Title)
	assert.Equal(t, models.JobOpen, plain.Status)

	designed, err := svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Designer", Description: "UI", FormID: custom.ID})
	require.NoError(t, err)
	assert.Equal(t, plain.CompanyID, designed.CompanyID)

	form, err := svc.FormFor(ctx, plain)
	require.NoError(t, err)
	assert.Equal(t, def.ID, form.ID)
	form, err = svc.FormFor(ctx, designed)
	require.NoError(t, err)
	assert.Equal(t, custom.ID, form.ID)

	_, err = svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "X", Description: "Y", FormID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "X", Description: "Y", Status: "PAUSED"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestJobService_Status(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	svc := NewJobService(store, store)

	job, err := svc.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "SRE", Description: "on-call"})
	require.NoError(t, err)

	_, err = svc.OpenJob(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, job.ID, " closed "))
	_, err = svc.OpenJob(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobClosed)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, job.ID, "archived"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, 999, models.JobOpen), database.ErrNotFound)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, got.Status)
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"Ada Lovelace <Ada@Example.com>": "ada@example.com",
		"  ada@example.com ":             "ada@example.com",
		"ADA":                            "ada",
		"":                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeEmail(in), in)
	}
}

func TestMatcherService_FindDuplicates(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	one, two := uint(1), uint(2)
	for i, jobID := range []*uint{&one, &two, nil} {
		require.NoError(t, store.SaveApplication(ctx, &models.Application{
			ID:             string(rune('a' + i)),
			JobID:          jobID,
			CandidateEmail: "ada@example.com",
		}))
	}
	m := NewMatcherService(store)

	all, err := m.FindDuplicates(ctx, "Ada <ADA@example.com>", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forJob, err := m.FindDuplicates(ctx, "ada@example.com", &two)
	require.NoError(t, err)
	require.Len(t, forJob, 1)
	assert.Equal(t, "b", forJob[0].ID)

	none, err := m.FindDuplicates(ctx, "ada", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
