package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaMarshalJSON(t *testing.T) {
	schema := Schema{
		Name:        "hs_search_contacts",
		Description: "Search HubSpot contacts",
		Parameters: []Parameter{
			{Name: "query", Type: "string", Description: "Free-text query"},
			{Name: "filter_operator", Type: "string", Enum: []string{"EQ", "NEQ"}},
			{Name: "limit", Type: "integer", Required: true},
			{Name: "tags", Type: "array", Items: []Item{{Type: "string"}}},
		},
	}

	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "hs_search_contacts", decoded["name"])
	assert.Equal(t, "Search HubSpot contacts", decoded["description"])

	params, ok := decoded["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])

	properties, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, properties, 4)

	query := properties["query"].(map[string]any)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "Free-text query", query["description"])

	operator := properties["filter_operator"].(map[string]any)
	assert.Equal(t, []any{"EQ", "NEQ"}, operator["enum"])

	tags := properties["tags"].(map[string]any)
	items := tags["items"].(map[string]any)
	assert.Equal(t, "string", items["type"])

	assert.Equal(t, []any{"limit"}, params["required"])
}

func TestSchemaMarshalJSONNoParameters(t *testing.T) {
	schema := Schema{Name: "hs_status", Description: "Status"}

	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	params := decoded["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, map[string]any{}, params["properties"])
	assert.Equal(t, []any{}, params["required"])
}

func TestToolDefSchema(t *testing.T) {
	def := ToolDef{
		Name:        "jira_search",
		Description: "Search issues",
		Parameters:  []Parameter{{Name: "jql", Type: "string", Required: true}},
		Handler:     func(string) (string, error) { return "", nil },
	}

	schema := def.Schema()
	assert.Equal(t, def.Name, schema.Name)
	assert.Equal(t, def.Description, schema.Description)
	assert.Equal(t, def.Parameters, schema.Parameters)
}

func TestNewConnectionProfile(t *testing.T) {
	profile := NewConnectionProfile("jira", "prod-jira", map[string]string{"base_url": "https://x.atlassian.net"})

	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "jira", profile.Connector)
	assert.Equal(t, "prod-jira", profile.Name)
	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
}

func TestNewToolCallEvent(t *testing.T) {
	event := NewToolCallEvent("hs_status", "{}", "ok", "", nil)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "hs_status", event.ToolName)
	assert.Equal(t, "ok", event.Result)
	assert.Empty(t, event.Error)
	assert.False(t, event.Timestamp.IsZero())
}
