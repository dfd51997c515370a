package entities

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionProfile is a saved connector configuration. The configuration
// map holds the same keys the connector's connect tool accepts; values may
// be environment references in #{VAR}# syntax, resolved at load time.
type ConnectionProfile struct {
	ID            string            `json:"id" bson:"_id,omitempty"`
	Connector     string            `json:"connector" bson:"connector"`
	Name          string            `json:"name" bson:"name"`
	Configuration map[string]string `json:"configuration" bson:"configuration"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
}

func NewConnectionProfile(connector, name string, configuration map[string]string) *ConnectionProfile {
	now := time.Now()
	return &ConnectionProfile{
		ID:            uuid.New().String(),
		Connector:     connector,
		Name:          name,
		Configuration: configuration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
