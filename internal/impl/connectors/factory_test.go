package connectors

import (
	"testing"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestListFactories(t *testing.T) {
	factories := ListFactories()
	require.Len(t, factories, 5)

	names := make([]string, len(factories))
	for i, entry := range factories {
		names[i] = entry.Name
		assert.NotEmpty(t, entry.Description)
		assert.NotEmpty(t, entry.ConfigKeys)
		assert.NotNil(t, entry.New)
	}
	assert.Equal(t, []string{"hubspot", "jira", "salesforce", "servicenow", "camunda"}, names)
}

func TestGetFactoryByName(t *testing.T) {
	entry, err := GetFactoryByName("jira")
	require.NoError(t, err)
	assert.Equal(t, "jira", entry.Name)

	connector := entry.New(nil, zaptest.NewLogger(t))
	assert.Equal(t, "Jira", connector.Name())
	assert.Len(t, connector.Tools(), 15)
}

func TestGetFactoryByNameUnknown(t *testing.T) {
	_, err := GetFactoryByName("fax-machine")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestRegisterAll(t *testing.T) {
	reg := &collectingRegistry{}
	require.NoError(t, RegisterAll(reg, nil, zaptest.NewLogger(t)))
	assert.Len(t, reg.registered, 75)
	assert.Contains(t, reg.registered, "hs_connect")
	assert.Contains(t, reg.registered, "camunda_get_variables")
}

type collectingRegistry struct {
	registered []string
}

func (r *collectingRegistry) Register(name string, handler entities.ToolHandler, schema entities.Schema) error {
	r.registered = append(r.registered, name)
	return nil
}
