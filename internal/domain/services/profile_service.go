package services

import (
	"context"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/repositories"
	"github.com/solstice-ai/artemis-connectors/internal/impl/config"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors"

	"go.uber.org/zap"
)

// ProfileService manages connection profiles and turns them into
// registered tools.
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]*entities.ConnectionProfile, error)
	GetProfile(ctx context.Context, id string) (*entities.ConnectionProfile, error)
	CreateProfile(ctx context.Context, profile *entities.ConnectionProfile) error
	UpdateProfile(ctx context.Context, profile *entities.ConnectionProfile) error
	DeleteProfile(ctx context.Context, id string) error
	RegisterProfiles(ctx context.Context, reg entities.Registry) error
}

type profileService struct {
	repo   repositories.ProfileRepository
	cfg    *config.Config
	logger *zap.Logger
}

func NewProfileService(repo repositories.ProfileRepository, cfg *config.Config, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *profileService) ListProfiles(ctx context.Context) ([]*entities.ConnectionProfile, error) {
	return s.repo.ListProfiles(ctx)
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*entities.ConnectionProfile, error) {
	if id == "" {
		return nil, errs.ValidationErrorf("profile ID is required")
	}
	return s.repo.GetProfile(ctx, id)
}

func (s *profileService) CreateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	if profile.Name == "" {
		return errs.ValidationErrorf("profile name is required")
	}
	if _, err := connectors.GetFactoryByName(profile.Connector); err != nil {
		return err
	}
	return s.repo.CreateProfile(ctx, profile)
}

func (s *profileService) UpdateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	if profile.ID == "" {
		return errs.ValidationErrorf("profile ID is required")
	}
	if _, err := connectors.GetFactoryByName(profile.Connector); err != nil {
		return err
	}
	return s.repo.UpdateProfile(ctx, profile)
}

func (s *profileService) DeleteProfile(ctx context.Context, id string) error {
	if id == "" {
		return errs.ValidationErrorf("profile ID is required")
	}
	return s.repo.DeleteProfile(ctx, id)
}

// RegisterProfiles builds a connector for every stored profile and
// registers its tools. Profiles with unknown connectors or unresolvable
// configuration are skipped with a warning so one bad profile does not
// block the rest.
func (s *profileService) RegisterProfiles(ctx context.Context, reg entities.Registry) error {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return err
	}

	for _, profile := range profiles {
		entry, err := connectors.GetFactoryByName(profile.Connector)
		if err != nil {
			s.logger.Warn("Skipping profile with unknown connector",
				zap.String("profile", profile.Name),
				zap.String("connector", profile.Connector))
			continue
		}

		configuration, err := s.cfg.ResolveConfiguration(profile.Configuration)
		if err != nil {
			s.logger.Warn("Skipping profile with unresolvable configuration",
				zap.String("profile", profile.Name),
				zap.Error(err))
			continue
		}

		connector := entry.New(configuration, s.logger)
		if err := connector.RegisterTools(reg); err != nil {
			if errs.IsDuplicate(err) {
				s.logger.Warn("Skipping profile with already-registered tools",
					zap.String("profile", profile.Name),
					zap.Error(err))
				continue
			}
			return err
		}
		s.logger.Info("Registered connector tools",
			zap.String("profile", profile.Name),
			zap.String("connector", profile.Connector))
	}
	return nil
}
