package hubspot

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Connector) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	connector := New(map[string]string{"base_url": server.URL}, zaptest.NewLogger(t))
	return server, connector
}

func TestToolsCountAndSchemas(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	tools := connector.Tools()
	require.Len(t, tools, 15)

	seen := map[string]bool{}
	for _, def := range tools {
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.NotNil(t, def.Handler)
		assert.False(t, seen[def.Name], "duplicate tool name %s", def.Name)
		seen[def.Name] = true

		data, err := json.Marshal(def.Schema())
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		params := decoded["parameters"].(map[string]any)
		assert.Equal(t, "object", params["type"])
	}
	assert.True(t, seen["hs_connect"])
	assert.True(t, seen["hs_create_note"])
}

func TestNotConnected(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))

	_, err := connector.searchContacts("{}")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, "Not connected. Run hs_connect first.", err.Error())
}

func TestConnectRequiresToken(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))

	_, err := connector.connect("{}")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestConnectVerifiesAndReportsTotal(t *testing.T) {
	var gotAuth string
	_, connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"total": 1234, "results": []}`))
	})

	result, err := connector.connect(`{"api_key": "pat-123"}`)
	require.NoError(t, err)

	assert.Equal(t, "Bearer pat-123", gotAuth)
	assert.Contains(t, result, "Connected to HubSpot")
	assert.Contains(t, result, "Private App")
	assert.Contains(t, result, "1,234")
}

func TestConnectFailurePreservesDisconnectedState(t *testing.T) {
	_, connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := connector.connect(`{"api_key": "bad"}`)
	require.Error(t, err)

	_, err = connector.searchContacts("{}")
	assert.Equal(t, "Not connected. Run hs_connect first.", err.Error())
}

func TestSearchContactsWithFilter(t *testing.T) {
	var body map[string]any
	_, connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crm/v3/objects/contacts" {
			w.Write([]byte(`{"total": 0}`))
			return
		}
		assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &body))
		w.Write([]byte(`{"total": 1, "results": [{"id": "42"}]}`))
	})

	_, err := connector.connect(`{"api_key": "pat"}`)
	require.NoError(t, err)

	result, err := connector.searchContacts(`{"filter_property": "email", "filter_value": "a@b.com"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "Found 1 contact(s) (1 returned)")

	assert.Equal(t, 20.0, body["limit"])
	groups := body["filterGroups"].([]any)
	filters := groups[0].(map[string]any)["filters"].([]any)
	filter := filters[0].(map[string]any)
	assert.Equal(t, "email", filter["propertyName"])
	assert.Equal(t, "EQ", filter["operator"])
	assert.Equal(t, "a@b.com", filter["value"])
}

func TestSearchQueryWinsOverFilter(t *testing.T) {
	var body map[string]any
	_, connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crm/v3/objects/contacts" {
			w.Write([]byte(`{"total": 0}`))
			return
		}
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &body))
		w.Write([]byte(`{"total": 0, "results": []}`))
	})

	_, err := connector.connect(`{"api_key": "pat"}`)
	require.NoError(t, err)

	_, err = connector.searchDeals(`{"query": "acme", "filter_property": "dealstage", "filter_value": "won"}`)
	require.NoError(t, err)

	assert.Equal(t, "acme", body["query"])
	assert.Nil(t, body["filterGroups"])
}

func TestCreateContactRejectsBadProperties(t *testing.T) {
	_, connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 0}`))
	})

	_, err := connector.connect(`{"api_key": "pat"}`)
	require.NoError(t, err)

	_, err = connector.createContact(`{"properties": "not json"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'properties' must be valid JSON")
}

func TestCreateNoteAssociations(t *testing.T) {
	var body map[string]any
	_, connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crm/v3/objects/contacts" {
			w.Write([]byte(`{"total": 0}`))
			return
		}
		assert.Equal(t, "/crm/v3/objects/notes", r.URL.Path)
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &body))
		w.Write([]byte(`{"id": "note-1"}`))
	})

	_, err := connector.connect(`{"api_key": "pat"}`)
	require.NoError(t, err)

	result, err := connector.createNote(`{"body": "Call summary", "contact_id": "7", "deal_id": "9"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "Note created. ID: note-1")

	properties := body["properties"].(map[string]any)
	assert.Equal(t, "Call summary", properties["hs_note_body"])
	assert.NotEmpty(t, properties["hs_timestamp"])

	associations := body["associations"].([]any)
	require.Len(t, associations, 2)
	first := associations[0].(map[string]any)
	types := first["types"].([]any)[0].(map[string]any)
	assert.Equal(t, 202.0, types["associationTypeId"])
}

func TestRegisterTools(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	reg := &fakeRegistry{}

	require.NoError(t, connector.RegisterTools(reg))
	assert.Len(t, reg.registered, 15)
	assert.Equal(t, "hs_connect", reg.registered[0])
}

type fakeRegistry struct {
	registered []string
}

func (f *fakeRegistry) Register(name string, handler entities.ToolHandler, schema entities.Schema) error {
	f.registered = append(f.registered, name)
	return nil
}
