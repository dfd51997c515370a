package repositories

import (
	"context"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
)

// ProfileRepository persists connection profiles: named connector
// configurations that can be materialized into registered tools.
type ProfileRepository interface {
	ListProfiles(ctx context.Context) ([]*entities.ConnectionProfile, error)
	GetProfile(ctx context.Context, id string) (*entities.ConnectionProfile, error)
	CreateProfile(ctx context.Context, profile *entities.ConnectionProfile) error
	UpdateProfile(ctx context.Context, profile *entities.ConnectionProfile) error
	DeleteProfile(ctx context.Context, id string) error
}
