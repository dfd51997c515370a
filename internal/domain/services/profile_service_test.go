package services

import (
	"context"
	"testing"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) ListProfiles(ctx context.Context) ([]*entities.ConnectionProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ConnectionProfile), args.Error(1)
}

func (m *mockProfileRepository) GetProfile(ctx context.Context, id string) (*entities.ConnectionProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ConnectionProfile), args.Error(1)
}

func (m *mockProfileRepository) CreateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepository) UpdateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type collectingRegistry struct {
	registered []string
}

func (r *collectingRegistry) Register(name string, handler entities.ToolHandler, schema entities.Schema) error {
	r.registered = append(r.registered, name)
	return nil
}

func newService(t *testing.T, repo *mockProfileRepository) ProfileService {
	t.Helper()
	cfg, err := config.InitConfig()
	require.NoError(t, err)
	return NewProfileService(repo, cfg, zaptest.NewLogger(t))
}

func TestListProfiles(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	expected := []*entities.ConnectionProfile{
		entities.NewConnectionProfile("jira", "eng-jira", map[string]string{"base_url": "https://x.atlassian.net"}),
	}
	repo.On("ListProfiles", mock.Anything).Return(expected, nil)

	profiles, err := service.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, profiles)
	repo.AssertExpectations(t)
}

func TestGetProfileRequiresID(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	_, err := service.GetProfile(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	repo.AssertNotCalled(t, "GetProfile")
}

func TestCreateProfileRejectsUnknownConnector(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	profile := entities.NewConnectionProfile("fax-machine", "office", nil)
	err := service.CreateProfile(context.Background(), profile)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	repo.AssertNotCalled(t, "CreateProfile")
}

func TestCreateProfileRequiresName(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	profile := entities.NewConnectionProfile("jira", "", nil)
	err := service.CreateProfile(context.Background(), profile)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestCreateProfileDelegatesToRepository(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	profile := entities.NewConnectionProfile("camunda", "local-engine",
		map[string]string{"base_url": "http://localhost:8080/engine-rest"})
	repo.On("CreateProfile", mock.Anything, profile).Return(nil)

	require.NoError(t, service.CreateProfile(context.Background(), profile))
	repo.AssertExpectations(t)
}

func TestDeleteProfileRequiresID(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	err := service.DeleteProfile(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestRegisterProfilesSkipsBadProfiles(t *testing.T) {
	repo := new(mockProfileRepository)
	service := newService(t, repo)

	profiles := []*entities.ConnectionProfile{
		entities.NewConnectionProfile("camunda", "local-engine",
			map[string]string{"base_url": "http://localhost:8080/engine-rest"}),
		entities.NewConnectionProfile("fax-machine", "office", nil),
		entities.NewConnectionProfile("jira", "broken-ref",
			map[string]string{"api_token": "#{ARTEMIS_TEST_UNSET_VAR}#"}),
	}
	repo.On("ListProfiles", mock.Anything).Return(profiles, nil)

	reg := &collectingRegistry{}
	require.NoError(t, service.RegisterProfiles(context.Background(), reg))

	assert.Len(t, reg.registered, 15)
	assert.Contains(t, reg.registered, "camunda_connect")
	repo.AssertExpectations(t)
}
