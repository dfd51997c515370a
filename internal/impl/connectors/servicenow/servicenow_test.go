package servicenow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func connectedConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/now/table/sys_properties" &&
			r.URL.Query().Get("sysparm_limit") == "1" &&
			r.URL.Query().Get("sysparm_query") == "" {
			w.Write([]byte(`{"result": []}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	connector := New(nil, zaptest.NewLogger(t))
	_, err := connector.connect(`{"instance_url": "` + server.URL + `", "username": "admin", "password": "pw"}`)
	require.NoError(t, err)
	return connector
}

func TestUnwrap(t *testing.T) {
	obj := unwrap(map[string]any{"result": map[string]any{"sys_id": "1"}})
	assert.Equal(t, "1", obj["sys_id"])

	list := unwrap(map[string]any{"result": []any{"a", "b"}})
	assert.Equal(t, []any{"a", "b"}, list["items"])

	passthrough := unwrap(map[string]any{"sys_id": "raw"})
	assert.Equal(t, "raw", passthrough["sys_id"])

	scalar := unwrap(map[string]any{"result": "ok"})
	assert.Equal(t, "ok", scalar["result"])
}

func TestToolsCount(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	tools := connector.Tools()
	require.Len(t, tools, 15)

	for _, def := range tools {
		data, err := json.Marshal(def.Schema())
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "object", decoded["parameters"].(map[string]any)["type"])
	}
}

func TestNotConnected(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	_, err := connector.queryTable(`{"table": "incident"}`)
	require.Error(t, err)
	assert.Equal(t, "Not connected. Run snow_connect first.", err.Error())
}

func TestConnectRequiresInstanceURL(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	_, err := connector.connect(`{"username": "admin", "password": "pw"}`)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestConnectBasicAuth(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"result": []}`))
	}))
	defer server.Close()

	connector := New(nil, zaptest.NewLogger(t))
	result, err := connector.connect(`{"instance_url": "` + server.URL + `/", "username": "admin", "password": "pw"}`)
	require.NoError(t, err)

	assert.Contains(t, gotAuth, "Basic ")
	assert.Contains(t, result, "basic auth")
}

func TestConnectOAuthPasswordGrant(t *testing.T) {
	var tokenRequests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth_token.do":
			tokenRequests++
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostFormValue("grant_type"))
			assert.Equal(t, "admin", r.PostFormValue("username"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "snow-tok", "token_type": "Bearer", "expires_in": 1800}`))
		case "/api/now/table/sys_properties":
			assert.Equal(t, "Bearer snow-tok", r.Header.Get("Authorization"))
			w.Write([]byte(`{"result": []}`))
		}
	}))
	defer server.Close()

	connector := New(nil, zaptest.NewLogger(t))
	result, err := connector.connect(`{
		"instance_url": "` + server.URL + `",
		"username": "admin", "password": "pw",
		"client_id": "cid", "client_secret": "csec"
	}`)
	require.NoError(t, err)

	assert.Equal(t, 1, tokenRequests)
	assert.Contains(t, result, "OAuth2 password grant")
}

func TestStatusReportsInstanceName(t *testing.T) {
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sys_properties", r.URL.Path)
		assert.Equal(t, "name=instance_name", r.URL.Query().Get("sysparm_query"))
		w.Write([]byte(`{"result": [{"name": "instance_name", "value": "dev12345"}]}`))
	})

	result, err := connector.status("")
	require.NoError(t, err)

	assert.Contains(t, result, "Instance: dev12345")
	assert.Contains(t, result, "URL: http://")
}

func TestQueryTableBuildsSysparms(t *testing.T) {
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sys_user", r.URL.Path)
		assert.Equal(t, "active=true", r.URL.Query().Get("sysparm_query"))
		assert.Equal(t, "name,email", r.URL.Query().Get("sysparm_fields"))
		assert.Equal(t, "5", r.URL.Query().Get("sysparm_limit"))
		w.Write([]byte(`{"result": [{"name": "Abel", "email": "abel@example.com"}]}`))
	})

	result, err := connector.queryTable(`{"table": "sys_user", "query": "active=true", "fields": "name,email", "limit": 5}`)
	require.NoError(t, err)
	assert.Contains(t, result, "sys_user: 1 record(s)")
	assert.Contains(t, result, "Abel")
}

func TestSearchIncidentsJoinsQueryParts(t *testing.T) {
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "short_descriptionLIKEemail^state=2", r.URL.Query().Get("sysparm_query"))
		w.Write([]byte(`{"result": [{"number": "INC0001", "short_description": "Email down", "state": "2", "priority": "1"}]}`))
	})

	result, err := connector.searchIncidents(`{"text": "email", "state": "2"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "[INC0001] Email down (state: 2, priority: 1)")
}

func TestCreateIncidentDefaults(t *testing.T) {
	var body map[string]any
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"result": {"number": "INC0002", "sys_id": "abc"}}`))
	})

	result, err := connector.createIncident(`{"short_description": "Printer on fire"}`)
	require.NoError(t, err)

	assert.Contains(t, result, "Incident created: INC0002")
	assert.Equal(t, "3", body["priority"])
	assert.Equal(t, "2", body["urgency"])
}

func TestResolveIncidentSetsStateSix(t *testing.T) {
	var body map[string]any
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/now/table/incident/abc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"result": {"number": "INC0002"}}`))
	})

	result, err := connector.resolveIncident(`{"sys_id": "abc", "close_note": "Rebooted it"}`)
	require.NoError(t, err)

	assert.Contains(t, result, "Incident INC0002 resolved")
	assert.Equal(t, "6", body["state"])
	assert.Equal(t, "Solved (Permanently)", body["close_code"])
	assert.Equal(t, "Rebooted it", body["close_notes"])
}

func TestRunScriptBuildsAPIName(t *testing.T) {
	var body map[string]any
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sys_script_include", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"result": {"sys_id": "scr-1"}}`))
	})

	result, err := connector.runScript(`{"name": "Cleanup Old Records", "script": "gs.info('hi');"}`)
	require.NoError(t, err)

	assert.Contains(t, result, "api_name: cleanup_old_records")
	assert.Equal(t, "cleanup_old_records", body["api_name"])
	assert.Equal(t, "true", body["active"])
}

func TestRegisterTools(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	reg := &fakeRegistry{}
	require.NoError(t, connector.RegisterTools(reg))
	assert.Len(t, reg.registered, 15)
}

type fakeRegistry struct {
	registered []string
}

func (f *fakeRegistry) Register(name string, handler entities.ToolHandler, schema entities.Schema) error {
	f.registered = append(f.registered, name)
	return nil
}
