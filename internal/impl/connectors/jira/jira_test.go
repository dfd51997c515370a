package jira

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

func connectedConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/3/myself" {
			w.Write([]byte(`{"displayName": "Test User", "accountId": "acc-1"}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	connector := New(map[string]string{
		"base_url":  server.URL,
		"email":     "dev@example.com",
		"api_token": "tok",
	}, zaptest.NewLogger(t))
	_, err := connector.connect("")
	require.NoError(t, err)
	return connector
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
	_, err := connector.search(`{"jql": "project = ENG"}`)
	require.Error(t, err)
	assert.Equal(t, "Not connected. Run jira_connect first.", err.Error())
}

func TestConnectRequiresCredentials(t *testing.T) {
	connector := New(nil, zaptest.NewLogger(t))
	_, err := connector.connect(`{"base_url": "https://x.atlassian.net"}`)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestConnectUsesBasicAuth(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"displayName": "Dev", "accountId": "a1"}`))
	}))
	defer server.Close()

	connector := New(nil, zaptest.NewLogger(t))
	result, err := connector.connect(`{"base_url": "` + server.URL + `", "email": "dev@example.com", "api_token": "secret"}`)
	require.NoError(t, err)

	assert.Contains(t, gotAuth, "Basic ")
	assert.Contains(t, result, "Authenticated as: Dev (accountId: a1)")
}

func TestSearchFormatsIssueLines(t *testing.T) {
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/search", r.URL.Path)
		var body map[string]any
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &body))
		assert.Equal(t, "project = ENG", body["jql"])
		assert.Equal(t, 20.0, body["maxResults"])

		w.Write([]byte(`{
			"total": 2,
			"issues": [
				{"key": "ENG-1", "fields": {"summary": "Fix login", "status": {"name": "In Progress"}, "assignee": {"displayName": "Sam"}}},
				{"key": "ENG-2", "fields": {"summary": "Add tests", "status": {"name": "To Do"}, "assignee": null}}
			]
		}`))
	})

	result, err := connector.search(`{"jql": "project = ENG"}`)
	require.NoError(t, err)

	assert.Contains(t, result, "Found 2 issue(s) (showing 2):")
	assert.Contains(t, result, "[ENG-1] Fix login: In Progress (Sam)")
	assert.Contains(t, result, "[ENG-2] Add tests: To Do (Unassigned)")
}

func TestTransitionMatchesCaseInsensitive(t *testing.T) {
	var posted map[string]any
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"transitions": [
				{"id": "11", "name": "To Do"},
				{"id": "21", "name": "In Progress"},
				{"id": "31", "name": "Done"}
			]}`))
		case http.MethodPost:
			payload, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(payload, &posted))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	result, err := connector.transitionIssue(`{"issue_key": "ENG-1", "status_name": "in progress"}`)
	require.NoError(t, err)

	assert.Contains(t, result, "transitioned to 'In Progress'")
	transition := posted["transition"].(map[string]any)
	assert.Equal(t, "21", transition["id"])
}

func TestTransitionNotFoundListsAvailable(t *testing.T) {
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transitions": [{"id": "11", "name": "To Do"}, {"id": "31", "name": "Done"}]}`))
	})

	result, err := connector.transitionIssue(`{"issue_key": "ENG-1", "status_name": "Blocked"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "Transition 'Blocked' not found. Available: To Do, Done")
}

func TestCreateIssueBuildsADFDescription(t *testing.T) {
	var body map[string]any
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &body))
		w.Write([]byte(`{"id": "10001", "key": "ENG-7"}`))
	})

	result, err := connector.createIssue(`{"project_key": "ENG", "summary": "New thing", "description": "Details here"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "Issue created: ENG-7")

	fields := body["fields"].(map[string]any)
	assert.Equal(t, "New thing", fields["summary"])
	assert.Equal(t, "Task", fields["issuetype"].(map[string]any)["name"])

	description := fields["description"].(map[string]any)
	assert.Equal(t, "doc", description["type"])
	content := description["content"].([]any)[0].(map[string]any)
	text := content["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "Details here", text["text"])
}

func TestListBoardsFiltersByProject(t *testing.T) {
	connector := connectedConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/agile/1.0/board", r.URL.Path)
		assert.Equal(t, "ENG", r.URL.Query().Get("projectKeyOrId"))
		w.Write([]byte(`{"values": [{"id": 3, "name": "ENG board", "type": "scrum"}]}`))
	})

	result, err := connector.listBoards(`{"project_key": "ENG"}`)
	require.NoError(t, err)
	assert.Contains(t, result, "[3] ENG board (scrum)")
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
