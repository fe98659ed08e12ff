package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/internal/eligibility/repository"
	"github.com/talentflow/talentflow-backend/pkg/errors"
	"github.com/talentflow/talentflow-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	defer testutil.TerminateContainer(ctx)

	os.Exit(m.Run())
}

func assessment(status domain.Status, reasons ...string) domain.FinalAssessment {
	return domain.FinalAssessment{
		Status:  status,
		Reasons: reasons,
		Summary: "summary",
	}
}

func TestCheckRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, suite.TruncateChecks(ctx))

	repo := repository.NewCheckRepository(suite.DB)
	employeeID := suite.Fixtures.EmployeeID()

	validTo := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	facts := suite.Fixtures.ThirdCountryFacts(testutil.WithValidTo(validTo))

	check := repository.NewCheck(employeeID, repository.SourceManual, "hr-user-1",
		assessment(domain.StatusEligible, "no red flags found in the provided permit facts"),
		facts, 0)

	require.NoError(t, repo.Create(ctx, check))
	assert.False(t, check.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, check.ID)
	require.NoError(t, err)

	assert.Equal(t, check.ID, got.ID)
	assert.Equal(t, employeeID, got.EmployeeID)
	assert.Equal(t, "eligible", got.Status)
	assert.Equal(t, []string{"no red flags found in the provided permit facts"}, []string(got.Reasons))
	assert.Equal(t, "manual", got.Source)
	assert.Equal(t, "hr-user-1", got.PerformedBy)
	require.NotNil(t, got.PermitType)
	assert.Equal(t, string(domain.PermitTypeGeneralResidence), *got.PermitType)
	require.NotNil(t, got.ValidTo)
	assert.Equal(t, validTo, got.ValidTo.UTC())
	assert.Nil(t, got.ConflictNote)
}

func TestCheckRepository_ConflictNoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, suite.TruncateChecks(ctx))

	repo := repository.NewCheckRepository(suite.DB)

	final := assessment(domain.StatusNeedsReview, "rules reason", "conflict note")
	final.ConflictNote = "conflict note"

	check := repository.NewCheck(suite.Fixtures.EmployeeID(), repository.SourceSubmission, "hr-user-1",
		final, suite.Fixtures.ThirdCountryFacts(), 3)
	require.NoError(t, repo.Create(ctx, check))

	got, err := repo.GetByID(ctx, check.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ConflictNote)
	assert.Equal(t, "conflict note", *got.ConflictNote)
	assert.Equal(t, 3, got.DocumentCount)
	assert.Equal(t, "submission", got.Source)
}

func TestCheckRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()

	repo := repository.NewCheckRepository(suite.DB)
	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")

	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCheckRepository_InvalidStatusRejected(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, suite.TruncateChecks(ctx))

	repo := repository.NewCheckRepository(suite.DB)

	check := repository.NewCheck(suite.Fixtures.EmployeeID(), repository.SourceManual, "hr-user-1",
		assessment(domain.StatusUnknown, "x"), suite.Fixtures.ThirdCountryFacts(), 0)

	err := repo.Create(ctx, check)
	require.Error(t, err)

	// The CHECK constraint maps to a validation error.
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCheckRepository_ListByEmployee(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, suite.TruncateChecks(ctx))

	repo := repository.NewCheckRepository(suite.DB)
	employeeID := suite.Fixtures.EmployeeID()
	otherID := suite.Fixtures.EmployeeID()

	for i := 0; i < 3; i++ {
		check := repository.NewCheck(employeeID, repository.SourceManual, "hr-user-1",
			assessment(domain.StatusEligible, "ok"), suite.Fixtures.ThirdCountryFacts(), 0)
		require.NoError(t, repo.Create(ctx, check))
	}
	other := repository.NewCheck(otherID, repository.SourceManual, "hr-user-1",
		assessment(domain.StatusEligible, "ok"), suite.Fixtures.ThirdCountryFacts(), 0)
	require.NoError(t, repo.Create(ctx, other))

	checks, err := repo.ListByEmployee(ctx, employeeID)
	require.NoError(t, err)
	require.Len(t, checks, 3)

	// Newest first.
	for i := 1; i < len(checks); i++ {
		assert.False(t, checks[i].CreatedAt.After(checks[i-1].CreatedAt))
	}
	for _, c := range checks {
		assert.Equal(t, employeeID, c.EmployeeID)
	}
}

func TestCheckRepository_DeleteByEmployee(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, suite.TruncateChecks(ctx))

	repo := repository.NewCheckRepository(suite.DB)
	employeeID := suite.Fixtures.EmployeeID()

	for i := 0; i < 2; i++ {
		check := repository.NewCheck(employeeID, repository.SourceManual, "hr-user-1",
			assessment(domain.StatusEligible, "ok"), suite.Fixtures.ThirdCountryFacts(), 0)
		require.NoError(t, repo.Create(ctx, check))
	}

	deleted, err := repo.DeleteByEmployee(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	checks, err := repo.ListByEmployee(ctx, employeeID)
	require.NoError(t, err)
	assert.Empty(t, checks)

	// Deleting again is a no-op, not an error.
	deleted, err = repo.DeleteByEmployee(ctx, employeeID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
