package servicenow

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
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	connectorName = "ServiceNow"

	tablePrefix = "/api/now/table/"

	defaultCMDBFields = "name,sys_id,sys_class_name,operational_status"
)

// Connector wraps the ServiceNow Table API plus incident, change, and CMDB
// workflows. Auth is Basic or OAuth2 (password or client-credentials grant
// against the instance's oauth_token.do endpoint).
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
		return nil, errs.ValidationErrorf("Not connected. Run snow_connect first.")
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

// unwrap strips the {"result": ...} envelope every Table API response
// carries. Arrays are rewrapped under "items" so callers always see a map.
func unwrap(v any) map[string]any {
	obj := rest.AsObject(v)
	inner, ok := obj["result"]
	if !ok {
		return obj
	}
	if m, ok := inner.(map[string]any); ok {
		return m
	}
	if l, ok := inner.([]any); ok {
		return map[string]any{"items": l}
	}
	return map[string]any{"result": inner}
}

func (c *Connector) connect(arguments string) (string, error) {
	var args struct {
		InstanceURL  string `json:"instance_url"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	fill := func(target *string, key string) {
		if *target == "" {
			*target = c.configuration[key]
		}
	}
	fill(&args.InstanceURL, "instance_url")
	fill(&args.Username, "username")
	fill(&args.Password, "password")
	fill(&args.ClientID, "client_id")
	fill(&args.ClientSecret, "client_secret")
	if args.InstanceURL == "" {
		return "", errs.ValidationErrorf("instance_url is required")
	}
	instanceURL := strings.TrimRight(args.InstanceURL, "/")
	tokenURL := instanceURL + "/oauth_token.do"

	var (
		auth rest.Authenticator
		mode string
	)
	switch {
	case args.ClientID != "" && args.ClientSecret != "" && args.Username != "" && args.Password != "":
		// Password grant with automatic refresh through the token source.
		conf := &oauth2.Config{
			ClientID:     args.ClientID,
			ClientSecret: args.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		}
		ctx := context.Background()
		token, err := conf.PasswordCredentialsToken(ctx, args.Username, args.Password)
		if err != nil {
			return "", errs.UnauthorizedErrorf("ServiceNow OAuth2 login failed: %v", err)
		}
		auth = rest.TokenSource(conf.TokenSource(ctx, token))
		mode = "OAuth2 password grant"
	case args.ClientID != "" && args.ClientSecret != "":
		conf := &clientcredentials.Config{
			ClientID:     args.ClientID,
			ClientSecret: args.ClientSecret,
			TokenURL:     tokenURL,
		}
		auth = rest.TokenSource(conf.TokenSource(context.Background()))
		mode = "OAuth2 client credentials"
	case args.Username != "" && args.Password != "":
		auth = rest.BasicAuth(args.Username, args.Password)
		mode = "basic"
	default:
		return "", errs.ValidationErrorf("provide username/password, or client_id/client_secret (optionally with username/password)")
	}

	client := rest.NewClient(instanceURL, auth, c.logger)
	if _, err := client.Do(context.Background(), http.MethodGet, tablePrefix+"sys_properties", nil,
		url.Values{"sysparm_limit": {"1"}}); err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.logger.Info("Connected to ServiceNow",
		zap.String("instance_url", instanceURL),
		zap.String("auth", mode))

	return fmt.Sprintf("Connected to ServiceNow (%s) via %s auth.", instanceURL, mode), nil
}

func (c *Connector) status(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	result, err := client.Do(context.Background(), http.MethodGet, tablePrefix+"sys_properties", nil,
		url.Values{
			"sysparm_query":  {"name=instance_name"},
			"sysparm_fields": {"name,value"},
			"sysparm_limit":  {"1"},
		})
	if err != nil {
		return "", err
	}
	items := rest.AsList(unwrap(result)["items"])
	instanceName := "unknown"
	if len(items) > 0 {
		instanceName = rest.Str(rest.AsObject(items[0]), "value", "unknown")
	}
	return fmt.Sprintf("Instance: %s\nURL: %s", instanceName, client.BaseURL()), nil
}

// recordLines renders the items of a Table API list response, one compact
// JSON object per line.
func recordLines(items []any) []string {
	var lines []string
	for _, i := range items {
		record := rest.AsObject(i)
		data, err := json.Marshal(record)
		if err != nil {
			lines = append(lines, fmt.Sprintf("  %v", record))
			continue
		}
		lines = append(lines, "  "+string(data))
	}
	return lines
}

func (c *Connector) queryTable(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Table  string `json:"table"`
		Query  string `json:"query"`
		Fields string `json:"fields"`
		Limit  int    `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Table == "" {
		return "", errs.ValidationErrorf("table is required")
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	query := url.Values{"sysparm_limit": {strconv.Itoa(args.Limit)}}
	if args.Query != "" {
		query.Set("sysparm_query", args.Query)
	}
	if args.Fields != "" {
		query.Set("sysparm_fields", args.Fields)
	}
	result, err := client.Do(context.Background(), http.MethodGet, tablePrefix+args.Table, nil, query)
	if err != nil {
		return "", err
	}
	items := rest.AsList(unwrap(result)["items"])
	lines := append([]string{fmt.Sprintf("%s: %d record(s):", args.Table, len(items))}, recordLines(items)...)
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Table  string `json:"table"`
		SysID  string `json:"sys_id"`
		Fields string `json:"fields"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Table == "" || args.SysID == "" {
		return "", errs.ValidationErrorf("table and sys_id are required")
	}
	var query url.Values
	if args.Fields != "" {
		query = url.Values{"sysparm_fields": {args.Fields}}
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		tablePrefix+args.Table+"/"+args.SysID, nil, query)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s:\n%s", args.Table, args.SysID, rest.PrettyJSON(unwrap(result))), nil
}

func (c *Connector) createRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Table      string `json:"table"`
		FieldsJSON string `json:"fields_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Table == "" {
		return "", errs.ValidationErrorf("table is required")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(args.FieldsJSON), &fields); err != nil {
		return "", errs.ValidationErrorf("'fields_json' must be valid JSON")
	}
	result, err := client.Do(context.Background(), http.MethodPost, tablePrefix+args.Table, fields, nil)
	if err != nil {
		return "", err
	}
	record := unwrap(result)
	return fmt.Sprintf("%s record created: %s (number: %s)",
		args.Table, rest.Str(record, "sys_id", "?"), rest.Str(record, "number", "N/A")), nil
}

func (c *Connector) updateRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Table      string `json:"table"`
		SysID      string `json:"sys_id"`
		FieldsJSON string `json:"fields_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Table == "" || args.SysID == "" {
		return "", errs.ValidationErrorf("table and sys_id are required")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(args.FieldsJSON), &fields); err != nil {
		return "", errs.ValidationErrorf("'fields_json' must be valid JSON")
	}
	if _, err := client.Do(context.Background(), http.MethodPatch,
		tablePrefix+args.Table+"/"+args.SysID, fields, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s updated.", args.Table, args.SysID), nil
}

func (c *Connector) deleteRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Table string `json:"table"`
		SysID string `json:"sys_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Table == "" || args.SysID == "" {
		return "", errs.ValidationErrorf("table and sys_id are required")
	}
	if _, err := client.Do(context.Background(), http.MethodDelete,
		tablePrefix+args.Table+"/"+args.SysID, nil, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s deleted.", args.Table, args.SysID), nil
}

func (c *Connector) searchIncidents(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Text       string `json:"text"`
		State      string `json:"state"`
		AssignedTo string `json:"assigned_to"`
		Limit      int    `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	var parts []string
	if args.Text != "" {
		parts = append(parts, "short_descriptionLIKE"+args.Text)
	}
	if args.State != "" {
		parts = append(parts, "state="+args.State)
	}
	if args.AssignedTo != "" {
		parts = append(parts, "assigned_to.name="+args.AssignedTo)
	}
	query := url.Values{
		"sysparm_limit":  {strconv.Itoa(args.Limit)},
		"sysparm_fields": {"number,sys_id,short_description,state,priority,assigned_to,opened_at"},
	}
	if len(parts) > 0 {
		query.Set("sysparm_query", strings.Join(parts, "^"))
	}
	result, err := client.Do(context.Background(), http.MethodGet, tablePrefix+"incident", nil, query)
	if err != nil {
		return "", err
	}
	items := rest.AsList(unwrap(result)["items"])
	lines := []string{fmt.Sprintf("Found %d incident(s):", len(items))}
	for _, i := range items {
		incident := rest.AsObject(i)
		lines = append(lines, fmt.Sprintf("  [%s] %s (state: %s, priority: %s)",
			rest.Str(incident, "number", "?"),
			rest.Str(incident, "short_description", ""),
			rest.Str(incident, "state", "?"),
			rest.Str(incident, "priority", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) createIncident(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		ShortDescription string `json:"short_description"`
		Description      string `json:"description"`
		Priority         string `json:"priority"`
		Urgency          string `json:"urgency"`
		AssignmentGroup  string `json:"assignment_group"`
		CallerID         string `json:"caller_id"`
	}{Priority: "3", Urgency: "2"}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ShortDescription == "" {
		return "", errs.ValidationErrorf("short_description is required")
	}
	if args.Priority == "" {
		args.Priority = "3"
	}
	if args.Urgency == "" {
		args.Urgency = "2"
	}
	fields := map[string]any{
		"short_description": args.ShortDescription,
		"priority":          args.Priority,
		"urgency":           args.Urgency,
	}
	if args.Description != "" {
		fields["description"] = args.Description
	}
	if args.AssignmentGroup != "" {
		fields["assignment_group"] = args.AssignmentGroup
	}
	if args.CallerID != "" {
		fields["caller_id"] = args.CallerID
	}
	result, err := client.Do(context.Background(), http.MethodPost, tablePrefix+"incident", fields, nil)
	if err != nil {
		return "", err
	}
	incident := unwrap(result)
	return fmt.Sprintf("Incident created: %s (sys_id: %s)",
		rest.Str(incident, "number", "?"), rest.Str(incident, "sys_id", "?")), nil
}

func (c *Connector) resolveIncident(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		SysID     string `json:"sys_id"`
		CloseNote string `json:"close_note"`
		CloseCode string `json:"close_code"`
	}{CloseCode: "Solved (Permanently)"}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SysID == "" || args.CloseNote == "" {
		return "", errs.ValidationErrorf("sys_id and close_note are required")
	}
	if args.CloseCode == "" {
		args.CloseCode = "Solved (Permanently)"
	}
	fields := map[string]any{
		"state":       "6",
		"close_code":  args.CloseCode,
		"close_notes": args.CloseNote,
	}
	result, err := client.Do(context.Background(), http.MethodPatch,
		tablePrefix+"incident/"+args.SysID, fields, nil)
	if err != nil {
		return "", err
	}
	incident := unwrap(result)
	return fmt.Sprintf("Incident %s resolved (%s).",
		rest.Str(incident, "number", args.SysID), args.CloseCode), nil
}

func (c *Connector) searchChanges(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Text  string `json:"text"`
		State string `json:"state"`
		Limit int    `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	var parts []string
	if args.Text != "" {
		parts = append(parts, "short_descriptionLIKE"+args.Text)
	}
	if args.State != "" {
		parts = append(parts, "state="+args.State)
	}
	query := url.Values{
		"sysparm_limit":  {strconv.Itoa(args.Limit)},
		"sysparm_fields": {"number,sys_id,short_description,state,type,risk,start_date,end_date"},
	}
	if len(parts) > 0 {
		query.Set("sysparm_query", strings.Join(parts, "^"))
	}
	result, err := client.Do(context.Background(), http.MethodGet, tablePrefix+"change_request", nil, query)
	if err != nil {
		return "", err
	}
	items := rest.AsList(unwrap(result)["items"])
	lines := []string{fmt.Sprintf("Found %d change request(s):", len(items))}
	for _, i := range items {
		change := rest.AsObject(i)
		lines = append(lines, fmt.Sprintf("  [%s] %s (state: %s, type: %s, risk: %s)",
			rest.Str(change, "number", "?"),
			rest.Str(change, "short_description", ""),
			rest.Str(change, "state", "?"),
			rest.Str(change, "type", "?"),
			rest.Str(change, "risk", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getCMDBItem(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		SysID string `json:"sys_id"`
		Table string `json:"table"`
	}{Table: "cmdb_ci"}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SysID == "" {
		return "", errs.ValidationErrorf("sys_id is required")
	}
	if args.Table == "" {
		args.Table = "cmdb_ci"
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		tablePrefix+args.Table+"/"+args.SysID, nil, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CI %s:\n%s", args.SysID, rest.PrettyJSON(unwrap(result))), nil
}

func (c *Connector) searchCMDB(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Name   string `json:"name"`
		Class  string `json:"class"`
		Fields string `json:"fields"`
		Limit  int    `json:"limit"`
	}{Fields: defaultCMDBFields, Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	if args.Fields == "" {
		args.Fields = defaultCMDBFields
	}
	table := "cmdb_ci"
	if args.Class != "" {
		table = args.Class
	}
	query := url.Values{
		"sysparm_limit":  {strconv.Itoa(args.Limit)},
		"sysparm_fields": {args.Fields},
	}
	if args.Name != "" {
		query.Set("sysparm_query", "nameLIKE"+args.Name)
	}
	result, err := client.Do(context.Background(), http.MethodGet, tablePrefix+table, nil, query)
	if err != nil {
		return "", err
	}
	items := rest.AsList(unwrap(result)["items"])
	lines := append([]string{fmt.Sprintf("Found %d configuration item(s) in %s:", len(items), table)},
		recordLines(items)...)
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) listTables(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		NameFilter string `json:"name_filter"`
		Limit      int    `json:"limit"`
	}{Limit: 50}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 50
	}
	query := url.Values{
		"sysparm_limit":  {strconv.Itoa(args.Limit)},
		"sysparm_fields": {"name,label"},
	}
	if args.NameFilter != "" {
		query.Set("sysparm_query", "nameLIKE"+args.NameFilter)
	}
	result, err := client.Do(context.Background(), http.MethodGet, tablePrefix+"sys_db_object", nil, query)
	if err != nil {
		return "", err
	}
	items := rest.AsList(unwrap(result)["items"])
	lines := []string{fmt.Sprintf("Found %d table(s):", len(items))}
	for _, i := range items {
		table := rest.AsObject(i)
		lines = append(lines, fmt.Sprintf("  %s (%s)", rest.Str(table, "name", "?"), rest.Str(table, "label", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) runScript(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Name   string `json:"name"`
		Script string `json:"script"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Name == "" || args.Script == "" {
		return "", errs.ValidationErrorf("name and script are required")
	}
	apiName := strings.ToLower(strings.ReplaceAll(args.Name, " ", "_"))
	fields := map[string]any{
		"name":     args.Name,
		"api_name": apiName,
		"script":   args.Script,
		"active":   "true",
	}
	result, err := client.Do(context.Background(), http.MethodPost, tablePrefix+"sys_script_include", fields, nil)
	if err != nil {
		return "", err
	}
	record := unwrap(result)
	return fmt.Sprintf("Script include created: %s (sys_id: %s, api_name: %s)",
		args.Name, rest.Str(record, "sys_id", "?"), apiName), nil
}
