package repositories_json

import (
	"context"
	"testing"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRepository(t *testing.T, dataDir string) repositories.ProfileRepository {
	t.Helper()
	repo, err := NewJSONProfileRepository(dataDir, zaptest.NewLogger(t))
	require.NoError(t, err)
	return repo
}

func TestCreateAndGetProfile(t *testing.T) {
	repo := newRepository(t, t.TempDir())
	ctx := context.Background()

	profile := entities.NewConnectionProfile("jira", "eng-jira",
		map[string]string{"base_url": "https://x.atlassian.net"})
	require.NoError(t, repo.CreateProfile(ctx, profile))

	found, err := repo.GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "eng-jira", found.Name)
	assert.Equal(t, "jira", found.Connector)
	assert.Equal(t, "https://x.atlassian.net", found.Configuration["base_url"])
	assert.False(t, found.CreatedAt.IsZero())
}

func TestCreateProfileRejectsDuplicateName(t *testing.T) {
	repo := newRepository(t, t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.CreateProfile(ctx,
		entities.NewConnectionProfile("jira", "eng-jira", nil)))

	err := repo.CreateProfile(ctx, entities.NewConnectionProfile("hubspot", "eng-jira", nil))
	require.Error(t, err)
	assert.True(t, errs.IsDuplicate(err))
}

func TestGetProfileNotFound(t *testing.T) {
	repo := newRepository(t, t.TempDir())

	_, err := repo.GetProfile(context.Background(), "missing-id")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestUpdateProfile(t *testing.T) {
	repo := newRepository(t, t.TempDir())
	ctx := context.Background()

	profile := entities.NewConnectionProfile("camunda", "local-engine",
		map[string]string{"base_url": "http://localhost:8080/engine-rest"})
	require.NoError(t, repo.CreateProfile(ctx, profile))

	profile.Configuration["username"] = "demo"
	require.NoError(t, repo.UpdateProfile(ctx, profile))

	found, err := repo.GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", found.Configuration["username"])
}

func TestUpdateProfileNotFound(t *testing.T) {
	repo := newRepository(t, t.TempDir())

	profile := entities.NewConnectionProfile("jira", "ghost", nil)
	err := repo.UpdateProfile(context.Background(), profile)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteProfile(t *testing.T) {
	repo := newRepository(t, t.TempDir())
	ctx := context.Background()

	profile := entities.NewConnectionProfile("servicenow", "prod-snow", nil)
	require.NoError(t, repo.CreateProfile(ctx, profile))
	require.NoError(t, repo.DeleteProfile(ctx, profile.ID))

	_, err := repo.GetProfile(ctx, profile.ID)
	assert.True(t, errs.IsNotFound(err))

	err = repo.DeleteProfile(ctx, profile.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestProfilesSurviveReload(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	repo := newRepository(t, dataDir)
	profile := entities.NewConnectionProfile("salesforce", "prod-sf",
		map[string]string{"login_url": "https://login.salesforce.com"})
	require.NoError(t, repo.CreateProfile(ctx, profile))

	reloaded := newRepository(t, dataDir)
	profiles, err := reloaded.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "prod-sf", profiles[0].Name)
}

func TestListProfilesReturnsCopies(t *testing.T) {
	repo := newRepository(t, t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.CreateProfile(ctx,
		entities.NewConnectionProfile("jira", "eng-jira", nil)))

	profiles, err := repo.ListProfiles(ctx)
	require.NoError(t, err)
	profiles[0].Name = "mutated"

	again, err := repo.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eng-jira", again[0].Name)
}
