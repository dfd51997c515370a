package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/rest"

	"go.uber.org/zap"
)

const connectorName = "Jira"

// Connector wraps Jira Cloud: JQL search, issue CRUD, transitions,
// comments, agile boards and sprints, and user search. Auth is Basic
// (Atlassian account email + API token).
type Connector struct {
	mu            sync.Mutex
	client        *rest.Client
	configuration map[string]string
	logger        *zap.Logger
}

func New(configuration map[string]string, logger *zap.Logger) *Connector {
	if configuration == nil {
		configuration = map[string]string{}
	}
	return &Connector{
		configuration: configuration,
		logger:        logger,
	}
}

func (c *Connector) Name() string {
	return connectorName
}

func (c *Connector) api() (*rest.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil, errs.ValidationErrorf("Not connected. Run jira_connect first.")
	}
	return c.client, nil
}

func parseArgs(arguments string, v any) error {
	if strings.TrimSpace(arguments) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return errs.ValidationErrorf("invalid tool arguments: %v", err)
	}
	return nil
}

// adfDocument converts plain text to a minimal Atlassian Document Format
// body, the only description/comment format the v3 API accepts.
func adfDocument(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	}
}

func (c *Connector) connect(arguments string) (string, error) {
	var args struct {
		BaseURL  string `json:"base_url"`
		Email    string `json:"email"`
		APIToken string `json:"api_token"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.BaseURL == "" {
		args.BaseURL = c.configuration["base_url"]
	}
	if args.Email == "" {
		args.Email = c.configuration["email"]
	}
	if args.APIToken == "" {
		args.APIToken = c.configuration["api_token"]
	}
	if args.BaseURL == "" || args.Email == "" || args.APIToken == "" {
		return "", errs.ValidationErrorf("base_url, email, and api_token are required")
	}

	client := rest.NewClient(args.BaseURL, rest.BasicAuth(args.Email, args.APIToken), c.logger)
	result, err := client.Do(context.Background(), http.MethodGet, "/rest/api/3/myself", nil, nil)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	user := rest.AsObject(result)
	display := rest.Str(user, "displayName", rest.Str(user, "emailAddress", "unknown"))
	accountID := rest.Str(user, "accountId", "?")

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.logger.Info("Connected to Jira Cloud", zap.String("base_url", client.BaseURL()))

	return fmt.Sprintf("Connected to Jira Cloud (%s).\n  Authenticated as: %s (accountId: %s)",
		client.BaseURL(), display, accountID), nil
}

func (c *Connector) status(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	serverResult, err := client.Do(ctx, http.MethodGet, "/rest/api/3/serverInfo", nil, nil)
	if err != nil {
		return "", err
	}
	myselfResult, err := client.Do(ctx, http.MethodGet, "/rest/api/3/myself", nil, nil)
	if err != nil {
		return "", err
	}
	server := rest.AsObject(serverResult)
	myself := rest.AsObject(myselfResult)
	return fmt.Sprintf("Server: %s (%s)\n  Version: %s, Build: %v\n  Deployment: %s\nUser: %s (%s)\n  Account ID: %s",
		rest.Str(server, "serverTitle", "?"), rest.Str(server, "baseUrl", "?"),
		rest.Str(server, "version", "?"), server["buildNumber"],
		rest.Str(server, "deploymentType", "?"),
		rest.Str(myself, "displayName", "?"), rest.Str(myself, "emailAddress", "?"),
		rest.Str(myself, "accountId", "?")), nil
}

// issueLine renders the "[KEY] summary: status (assignee)" line shared by
// JQL search and sprint listings.
func issueLine(issue map[string]any) string {
	key := rest.Str(issue, "key", "?")
	fields := rest.AsObject(issue["fields"])
	summary := rest.Str(fields, "summary", "")
	status := rest.Str(rest.AsObject(fields["status"]), "name", "?")
	assignee := "Unassigned"
	if a, ok := fields["assignee"].(map[string]any); ok {
		assignee = rest.Str(a, "displayName", "Unassigned")
	}
	return fmt.Sprintf("  [%s] %s: %s (%s)", key, summary, status, assignee)
}

func (c *Connector) search(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		JQL        string `json:"jql"`
		MaxResults int    `json:"max_results"`
	}{MaxResults: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.JQL == "" {
		return "", errs.ValidationErrorf("jql is required")
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 20
	}

	body := map[string]any{
		"jql":        args.JQL,
		"maxResults": args.MaxResults,
		"fields":     []string{"summary", "status", "assignee", "priority", "issuetype"},
	}
	result, err := client.Do(context.Background(), http.MethodPost, "/rest/api/3/search", body, nil)
	if err != nil {
		return "", err
	}
	obj := rest.AsObject(result)
	issues := rest.AsList(obj["issues"])
	total := rest.Num(obj, "total")
	if total == 0 {
		total = int64(len(issues))
	}
	lines := []string{fmt.Sprintf("Found %d issue(s) (showing %d):", total, len(issues))}
	for _, i := range issues {
		lines = append(lines, issueLine(rest.AsObject(i)))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getIssue(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		IssueKey string `json:"issue_key"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.IssueKey == "" {
		return "", errs.ValidationErrorf("issue_key is required")
	}

	query := url.Values{"fields": {"summary,status,assignee,priority,description,created,updated,issuetype,project"}}
	result, err := client.Do(context.Background(), http.MethodGet, "/rest/api/3/issue/"+args.IssueKey, nil, query)
	if err != nil {
		return "", err
	}
	issue := rest.AsObject(result)
	fields := rest.AsObject(issue["fields"])
	assignee := "Unassigned"
	if a, ok := fields["assignee"].(map[string]any); ok {
		assignee = rest.Str(a, "displayName", "Unassigned")
	}
	priority := "None"
	if p, ok := fields["priority"].(map[string]any); ok {
		priority = rest.Str(p, "name", "None")
	}
	project := rest.AsObject(fields["project"])
	issueType := rest.AsObject(fields["issuetype"])
	lines := []string{
		fmt.Sprintf("Issue: %s", rest.Str(issue, "key", "?")),
		fmt.Sprintf("  Summary: %s", rest.Str(fields, "summary", "")),
		fmt.Sprintf("  Type: %s", rest.Str(issueType, "name", "?")),
		fmt.Sprintf("  Status: %s", rest.Str(rest.AsObject(fields["status"]), "name", "?")),
		fmt.Sprintf("  Priority: %s", priority),
		fmt.Sprintf("  Assignee: %s", assignee),
		fmt.Sprintf("  Project: %s (%s)", rest.Str(project, "name", "?"), rest.Str(project, "key", "?")),
		fmt.Sprintf("  Created: %s", rest.Str(fields, "created", "?")),
		fmt.Sprintf("  Updated: %s", rest.Str(fields, "updated", "?")),
	}
	if desc, ok := fields["description"]; ok && desc != nil {
		rendered, _ := json.Marshal(desc)
		text := string(rendered)
		if len(text) > 500 {
			text = text[:500]
		}
		lines = append(lines, "  Description: "+text)
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) createIssue(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		ProjectKey        string `json:"project_key"`
		Summary           string `json:"summary"`
		IssueType         string `json:"issue_type"`
		Description       string `json:"description"`
		Priority          string `json:"priority"`
		AssigneeAccountID string `json:"assignee_account_id"`
	}{IssueType: "Task"}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ProjectKey == "" || args.Summary == "" {
		return "", errs.ValidationErrorf("project_key and summary are required")
	}
	if args.IssueType == "" {
		args.IssueType = "Task"
	}

	fields := map[string]any{
		"project":   map[string]any{"key": args.ProjectKey},
		"summary":   args.Summary,
		"issuetype": map[string]any{"name": args.IssueType},
	}
	if args.Description != "" {
		fields["description"] = adfDocument(args.Description)
	}
	if args.Priority != "" {
		fields["priority"] = map[string]any{"name": args.Priority}
	}
	if args.AssigneeAccountID != "" {
		fields["assignee"] = map[string]any{"accountId": args.AssigneeAccountID}
	}

	result, err := client.Do(context.Background(), http.MethodPost, "/rest/api/3/issue",
		map[string]any{"fields": fields}, nil)
	if err != nil {
		return "", err
	}
	issue := rest.AsObject(result)
	key := rest.Str(issue, "key", "?")
	return fmt.Sprintf("Issue created: %s (id: %s)\n  URL: %s/browse/%s",
		key, rest.Str(issue, "id", "?"), client.BaseURL(), key), nil
}

func (c *Connector) updateIssue(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		IssueKey   string `json:"issue_key"`
		FieldsJSON string `json:"fields_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.IssueKey == "" {
		return "", errs.ValidationErrorf("issue_key is required")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(args.FieldsJSON), &fields); err != nil {
		return "", errs.ValidationErrorf("'fields_json' must be valid JSON")
	}
	if _, err := client.Do(context.Background(), http.MethodPut, "/rest/api/3/issue/"+args.IssueKey,
		map[string]any{"fields": fields}, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Issue %s updated.", args.IssueKey), nil
}

func (c *Connector) transitionIssue(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		IssueKey   string `json:"issue_key"`
		StatusName string `json:"status_name"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.IssueKey == "" || args.StatusName == "" {
		return "", errs.ValidationErrorf("issue_key and status_name are required")
	}

	ctx := context.Background()
	result, err := client.Do(ctx, http.MethodGet, "/rest/api/3/issue/"+args.IssueKey+"/transitions", nil, nil)
	if err != nil {
		return "", err
	}
	transitions := rest.AsList(rest.AsObject(result)["transitions"])
	if len(transitions) == 0 {
		return fmt.Sprintf("No transitions available for %s.", args.IssueKey), nil
	}

	// Match the target status by name, case-insensitive.
	var match map[string]any
	var available []string
	for _, t := range transitions {
		transition := rest.AsObject(t)
		name := rest.Str(transition, "name", "?")
		available = append(available, name)
		if match == nil && strings.EqualFold(name, args.StatusName) {
			match = transition
		}
	}
	if match == nil {
		return fmt.Sprintf("Transition '%s' not found. Available: %s",
			args.StatusName, strings.Join(available, ", ")), nil
	}

	body := map[string]any{"transition": map[string]any{"id": match["id"]}}
	if _, err := client.Do(ctx, http.MethodPost, "/rest/api/3/issue/"+args.IssueKey+"/transitions", body, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Issue %s transitioned to '%s'.", args.IssueKey, rest.Str(match, "name", "?")), nil
}

func (c *Connector) addComment(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		IssueKey string `json:"issue_key"`
		BodyText string `json:"body_text"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.IssueKey == "" || args.BodyText == "" {
		return "", errs.ValidationErrorf("issue_key and body_text are required")
	}
	result, err := client.Do(context.Background(), http.MethodPost, "/rest/api/3/issue/"+args.IssueKey+"/comment",
		map[string]any{"body": adfDocument(args.BodyText)}, nil)
	if err != nil {
		return "", err
	}
	commentID := rest.Str(rest.AsObject(result), "id", "?")
	return fmt.Sprintf("Comment added to %s (comment id: %s).", args.IssueKey, commentID), nil
}

func (c *Connector) assignIssue(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		IssueKey  string `json:"issue_key"`
		AccountID string `json:"account_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.IssueKey == "" || args.AccountID == "" {
		return "", errs.ValidationErrorf("issue_key and account_id are required")
	}
	if _, err := client.Do(context.Background(), http.MethodPut, "/rest/api/3/issue/"+args.IssueKey+"/assignee",
		map[string]any{"accountId": args.AccountID}, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Issue %s assigned to account %s.", args.IssueKey, args.AccountID), nil
}

func (c *Connector) listProjects(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/rest/api/3/project", nil,
		url.Values{"maxResults": {"50"}})
	if err != nil {
		return "", err
	}

	// Jira returns a bare array here; the paginated variant wraps it.
	projects := rest.AsList(result)
	if projects == nil {
		obj := rest.AsObject(result)
		projects = rest.AsList(obj["values"])
		if projects == nil {
			projects = rest.AsList(obj["projects"])
		}
	}

	lines := []string{fmt.Sprintf("Found %d project(s):", len(projects))}
	for _, p := range projects {
		project := rest.AsObject(p)
		lines = append(lines, fmt.Sprintf("  [%s] %s (id: %s)",
			rest.Str(project, "key", "?"), rest.Str(project, "name", "?"), rest.Str(project, "id", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getProject(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ProjectKey string `json:"project_key"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ProjectKey == "" {
		return "", errs.ValidationErrorf("project_key is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/rest/api/3/project/"+args.ProjectKey, nil, nil)
	if err != nil {
		return "", err
	}
	project := rest.AsObject(result)
	lead := rest.AsObject(project["lead"])
	lines := []string{
		fmt.Sprintf("Project: %s (%s)", rest.Str(project, "name", "?"), rest.Str(project, "key", "?")),
		fmt.Sprintf("  ID: %s", rest.Str(project, "id", "?")),
		fmt.Sprintf("  Type: %s", rest.Str(project, "projectTypeKey", "?")),
		fmt.Sprintf("  Lead: %s", rest.Str(lead, "displayName", "?")),
		fmt.Sprintf("  Style: %s", rest.Str(project, "style", "?")),
	}
	if components := rest.AsList(project["components"]); len(components) > 0 {
		var names []string
		for _, comp := range components {
			names = append(names, rest.Str(rest.AsObject(comp), "name", "?"))
		}
		lines = append(lines, "  Components: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) listBoards(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ProjectKey string `json:"project_key"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	query := url.Values{"maxResults": {"50"}}
	if args.ProjectKey != "" {
		query.Set("projectKeyOrId", args.ProjectKey)
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/rest/agile/1.0/board", nil, query)
	if err != nil {
		return "", err
	}
	boards := rest.AsList(rest.AsObject(result)["values"])
	lines := []string{fmt.Sprintf("Found %d board(s):", len(boards))}
	for _, b := range boards {
		board := rest.AsObject(b)
		lines = append(lines, fmt.Sprintf("  [%d] %s (%s)",
			rest.Num(board, "id"), rest.Str(board, "name", "?"), rest.Str(board, "type", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getSprint(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		SprintID int `json:"sprint_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SprintID == 0 {
		return "", errs.ValidationErrorf("sprint_id is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		"/rest/agile/1.0/sprint/"+strconv.Itoa(args.SprintID), nil, nil)
	if err != nil {
		return "", err
	}
	sprint := rest.AsObject(result)
	return strings.Join([]string{
		fmt.Sprintf("Sprint: %s (id: %d)", rest.Str(sprint, "name", "?"), rest.Num(sprint, "id")),
		fmt.Sprintf("  State: %s", rest.Str(sprint, "state", "?")),
		fmt.Sprintf("  Start: %s", rest.Str(sprint, "startDate", "N/A")),
		fmt.Sprintf("  End: %s", rest.Str(sprint, "endDate", "N/A")),
		fmt.Sprintf("  Goal: %s", rest.Str(sprint, "goal", "N/A")),
	}, "\n"), nil
}

func (c *Connector) sprintIssues(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		SprintID   int `json:"sprint_id"`
		MaxResults int `json:"max_results"`
	}{MaxResults: 50}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SprintID == 0 {
		return "", errs.ValidationErrorf("sprint_id is required")
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 50
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		"/rest/agile/1.0/sprint/"+strconv.Itoa(args.SprintID)+"/issue", nil,
		url.Values{"maxResults": {strconv.Itoa(args.MaxResults)}})
	if err != nil {
		return "", err
	}
	issues := rest.AsList(rest.AsObject(result)["issues"])
	lines := []string{fmt.Sprintf("Sprint %d: %d issue(s):", args.SprintID, len(issues))}
	for _, i := range issues {
		lines = append(lines, issueLine(rest.AsObject(i)))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) searchUsers(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}{MaxResults: 10}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Query == "" {
		return "", errs.ValidationErrorf("query is required")
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 10
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/rest/api/3/user/search", nil,
		url.Values{"query": {args.Query}, "maxResults": {strconv.Itoa(args.MaxResults)}})
	if err != nil {
		return "", err
	}
	users := rest.AsList(result)
	if users == nil {
		users = rest.AsList(rest.AsObject(result)["users"])
	}
	lines := []string{fmt.Sprintf("Found %d user(s):", len(users))}
	for _, u := range users {
		user := rest.AsObject(u)
		lines = append(lines, fmt.Sprintf("  %s: %s (accountId: %s)",
			rest.Str(user, "displayName", "?"),
			rest.Str(user, "emailAddress", "N/A"),
			rest.Str(user, "accountId", "?")))
	}
	return strings.Join(lines, "\n"), nil
}
