// Package connectors wires the individual SaaS connectors into a common
// factory so services and commands can build them by name.
package connectors

import (
	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/camunda"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/hubspot"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/jira"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/salesforce"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/servicenow"

	"go.uber.org/zap"
)

// Connector is the behavior every SaaS connector shares: a display name,
// a tool list, and bulk registration into a registry.
type Connector interface {
	Name() string
	Tools() []entities.ToolDef
	RegisterTools(reg entities.Registry) error
}

// FactoryEntry describes one connector: its name, what it talks to, the
// configuration keys it understands, and how to build it.
type FactoryEntry struct {
	Name        string
	Description string
	ConfigKeys  []string
	New         func(configuration map[string]string, logger *zap.Logger) Connector
}

var factories = []FactoryEntry{
	{
		Name:        "hubspot",
		Description: "HubSpot CRM: contacts, deals, companies, pipelines, and notes",
		ConfigKeys:  []string{"api_key", "oauth_token"},
		New: func(configuration map[string]string, logger *zap.Logger) Connector {
			return hubspot.New(configuration, logger)
		},
	},
	{
		Name:        "jira",
		Description: "Jira Cloud: JQL search, issues, transitions, boards, and sprints",
		ConfigKeys:  []string{"base_url", "email", "api_token"},
		New: func(configuration map[string]string, logger *zap.Logger) Connector {
			return jira.New(configuration, logger)
		},
	},
	{
		Name:        "salesforce",
		Description: "Salesforce: SOQL/SOSL, record CRUD, flows, reports, and tasks",
		ConfigKeys: []string{"instance_url", "access_token", "username", "password",
			"security_token", "client_id", "client_secret", "private_key", "login_url"},
		New: func(configuration map[string]string, logger *zap.Logger) Connector {
			return salesforce.New(configuration, logger)
		},
	},
	{
		Name:        "servicenow",
		Description: "ServiceNow: table queries, incidents, changes, and CMDB",
		ConfigKeys:  []string{"instance_url", "username", "password", "client_id", "client_secret"},
		New: func(configuration map[string]string, logger *zap.Logger) Connector {
			return servicenow.New(configuration, logger)
		},
	},
	{
		Name:        "camunda",
		Description: "Camunda 7: BPMN validation, deployments, processes, and tasks",
		ConfigKeys:  []string{"base_url", "username", "password"},
		New: func(configuration map[string]string, logger *zap.Logger) Connector {
			return camunda.New(configuration, logger)
		},
	},
}

// ListFactories returns the available connector factories in registration
// order.
func ListFactories() []FactoryEntry {
	return append([]FactoryEntry(nil), factories...)
}

// GetFactoryByName finds a factory by its connector name.
func GetFactoryByName(name string) (*FactoryEntry, error) {
	for i := range factories {
		if factories[i].Name == name {
			return &factories[i], nil
		}
	}
	return nil, errs.NotFoundErrorf("unknown connector: %s", name)
}

// RegisterAll builds every connector with its default configuration and
// registers all tools. Configurations are keyed by connector name.
func RegisterAll(reg entities.Registry, configurations map[string]map[string]string, logger *zap.Logger) error {
	for _, entry := range factories {
		connector := entry.New(configurations[entry.Name], logger)
		if err := connector.RegisterTools(reg); err != nil {
			return err
		}
	}
	return nil
}
