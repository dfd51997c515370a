package repositories_json

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type jsonProfileRepository struct {
	filePath string
	data     []*entities.ConnectionProfile
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewJSONProfileRepository stores connection profiles in
// <dataDir>/.artemis/profiles.json.
func NewJSONProfileRepository(dataDir string, logger *zap.Logger) (repositories.ProfileRepository, error) {
	filePath := filepath.Join(dataDir, ".artemis", "profiles.json")
	repo := &jsonProfileRepository{
		filePath: filePath,
		data:     []*entities.ConnectionProfile{},
		logger:   logger,
	}

	if err := repo.load(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *jsonProfileRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		return nil // File doesn't exist yet, start with empty data
	}
	if err != nil {
		return errs.InternalErrorf("failed to read profiles.json: %v", err)
	}

	var profiles []*entities.ConnectionProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return errs.InternalErrorf("failed to unmarshal profiles.json: %v", err)
	}

	// Validate UUIDs
	for _, profile := range profiles {
		if profile.ID == "" {
			return errs.InternalErrorf("profile is missing an ID")
		}
		if _, err := uuid.Parse(profile.ID); err != nil {
			return errs.InternalErrorf("profile has an invalid UUID: %v", err)
		}
	}

	r.data = profiles
	return nil
}

// save assumes the caller holds the write lock.
func (r *jsonProfileRepository) save() error {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return errs.InternalErrorf("failed to marshal profiles: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0755); err != nil {
		return errs.InternalErrorf("failed to create directory: %v", err)
	}

	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return errs.InternalErrorf("failed to write profiles.json: %v", err)
	}

	return nil
}

func (r *jsonProfileRepository) ListProfiles(ctx context.Context) ([]*entities.ConnectionProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profilesCopy := make([]*entities.ConnectionProfile, len(r.data))
	for i, p := range r.data {
		clone := *p
		profilesCopy[i] = &clone
	}
	return profilesCopy, nil
}

func (r *jsonProfileRepository) GetProfile(ctx context.Context, id string) (*entities.ConnectionProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, profile := range r.data {
		if profile.ID == id {
			clone := *profile
			return &clone, nil
		}
	}
	return nil, errs.NotFoundErrorf("profile not found: %s", id)
}

func (r *jsonProfileRepository) CreateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.data {
		if existing.Name == profile.Name {
			return errs.DuplicateErrorf("profile with the same name already exists: %s", profile.Name)
		}
	}

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	r.data = append(r.data, profile)
	return r.save()
}

func (r *jsonProfileRepository) UpdateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.data {
		if p.ID == profile.ID {
			profile.UpdatedAt = time.Now()
			r.data[i] = profile
			return r.save()
		}
	}
	return errs.NotFoundErrorf("profile not found: %s", profile.ID)
}

func (r *jsonProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.data {
		if p.ID == id {
			r.data = append(r.data[:i], r.data[i+1:]...)
			return r.save()
		}
	}
	return errs.NotFoundErrorf("profile not found: %s", id)
}

var _ repositories.ProfileRepository = (*jsonProfileRepository)(nil)
