package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/rest"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	connectorName = "Salesforce"

	apiVersion      = "v59.0"
	apiPrefix       = "/services/data/" + apiVersion
	defaultLoginURL = "https://login.salesforce.com"

	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// Connector wraps the Salesforce REST API: SOQL/SOSL queries, record CRUD,
// metadata describes, bulk query jobs, flows, reports, and tasks. It
// authenticates with a session token, the OAuth2 password grant, or a JWT
// bearer assertion for server-to-server integrations.
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
		return nil, errs.ValidationErrorf("Not connected. Run sf_connect first.")
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

// apiPath prefixes bare resource paths with the versioned REST root.
// Fully qualified paths (bulk jobs, oauth endpoints) pass through.
func apiPath(path string) string {
	if strings.HasPrefix(path, "/services") {
		return path
	}
	return apiPrefix + path
}

type connectArgs struct {
	InstanceURL   string `json:"instance_url"`
	AccessToken   string `json:"access_token"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	SecurityToken string `json:"security_token"`
	ClientID      string `json:"client_id"`
	ClientSecret  string `json:"client_secret"`
	PrivateKey    string `json:"private_key"`
	LoginURL      string `json:"login_url"`
}

func (a *connectArgs) fillFrom(configuration map[string]string) {
	fill := func(target *string, key string) {
		if *target == "" {
			*target = configuration[key]
		}
	}
	fill(&a.InstanceURL, "instance_url")
	fill(&a.AccessToken, "access_token")
	fill(&a.Username, "username")
	fill(&a.Password, "password")
	fill(&a.SecurityToken, "security_token")
	fill(&a.ClientID, "client_id")
	fill(&a.ClientSecret, "client_secret")
	fill(&a.PrivateKey, "private_key")
	fill(&a.LoginURL, "login_url")
}

func (c *Connector) connect(arguments string) (string, error) {
	var args connectArgs
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	args.fillFrom(c.configuration)
	if args.LoginURL == "" {
		args.LoginURL = defaultLoginURL
	}

	var (
		instanceURL string
		accessToken string
		mode        string
		err         error
	)
	switch {
	case args.AccessToken != "" && args.InstanceURL != "":
		instanceURL, accessToken, mode = args.InstanceURL, args.AccessToken, "session token"
	case args.PrivateKey != "" && args.ClientID != "" && args.Username != "":
		instanceURL, accessToken, err = c.jwtBearerLogin(args)
		mode = "JWT bearer"
	case args.Username != "" && args.Password != "" && args.ClientID != "" && args.ClientSecret != "":
		instanceURL, accessToken, err = c.passwordLogin(args)
		mode = "username-password"
	default:
		return "", errs.ValidationErrorf("provide access_token + instance_url, or username/password/client_id/client_secret, or client_id/username/private_key")
	}
	if err != nil {
		return "", err
	}

	client := rest.NewClient(instanceURL, rest.BearerToken(accessToken), c.logger)
	result, err := client.Do(context.Background(), http.MethodGet, "/services/data/", nil, nil)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	versions := rest.AsList(result)

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.logger.Info("Connected to Salesforce",
		zap.String("instance_url", client.BaseURL()),
		zap.String("auth", mode))

	return fmt.Sprintf("Connected to Salesforce (%s) via %s auth.\n  API version: %s (%d versions available)",
		client.BaseURL(), mode, apiVersion, len(versions)), nil
}

// passwordLogin performs the OAuth2 resource-owner password grant. The
// security token is appended to the password per Salesforce convention.
func (c *Connector) passwordLogin(args connectArgs) (string, string, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {args.ClientID},
		"client_secret": {args.ClientSecret},
		"username":      {args.Username},
		"password":      {args.Password + args.SecurityToken},
	}
	return c.tokenRequest(args.LoginURL, form)
}

// jwtBearerLogin signs an RS256 assertion with the connected app's private
// key and exchanges it for an access token.
func (c *Connector) jwtBearerLogin(args connectArgs) (string, string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(args.PrivateKey))
	if err != nil {
		return "", "", errs.ValidationErrorf("invalid private_key: %v", err)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    args.ClientID,
		Subject:   args.Username,
		Audience:  jwt.ClaimStrings{args.LoginURL},
		ExpiresAt: jwt.NewNumericDate(now.Add(3 * time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	assertion, err := token.SignedString(key)
	if err != nil {
		return "", "", errs.InternalErrorf("failed to sign JWT assertion: %v", err)
	}
	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	return c.tokenRequest(args.LoginURL, form)
}

func (c *Connector) tokenRequest(loginURL string, form url.Values) (string, string, error) {
	tokenClient := rest.NewClient(loginURL, rest.None(), c.logger)
	result, err := tokenClient.DoForm(context.Background(), "/services/oauth2/token", form)
	if err != nil {
		return "", "", errs.UnauthorizedErrorf("Salesforce login failed: %v", err)
	}
	payload := rest.AsObject(result)
	accessToken := rest.Str(payload, "access_token", "")
	instanceURL := rest.Str(payload, "instance_url", "")
	if accessToken == "" || instanceURL == "" {
		return "", "", errs.UnauthorizedErrorf("Salesforce login response missing access_token or instance_url")
	}
	return instanceURL, accessToken, nil
}

func (c *Connector) status(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	versionsResult, err := client.Do(ctx, http.MethodGet, "/services/data/", nil, nil)
	if err != nil {
		if errs.IsUnauthorized(err) {
			return "", errs.UnauthorizedErrorf("Authentication failed (401). Token may be expired; run sf_connect again.")
		}
		return "", err
	}
	versions := rest.AsList(versionsResult)
	userResult, err := client.Do(ctx, http.MethodGet, apiPath("/chatter/users/me"), nil, nil)
	if err != nil {
		if errs.IsUnauthorized(err) {
			return "", errs.UnauthorizedErrorf("Authentication failed (401). Token may be expired; run sf_connect again.")
		}
		return "", err
	}
	user := rest.AsObject(userResult)
	limitsResult, err := client.Do(ctx, http.MethodGet, apiPath("/limits"), nil, nil)
	lines := []string{
		fmt.Sprintf("Instance: %s", client.BaseURL()),
		fmt.Sprintf("User: %s (%s)", rest.Str(user, "name", "?"), rest.Str(user, "username", "?")),
		fmt.Sprintf("API versions available: %d (using %s)", len(versions), apiVersion),
	}
	if err == nil {
		limits := rest.AsObject(limitsResult)
		if daily, ok := limits["DailyApiRequests"].(map[string]any); ok {
			remaining := rest.Num(daily, "Remaining")
			max := rest.Num(daily, "Max")
			lines = append(lines, fmt.Sprintf("Daily API requests: %d of %d remaining", remaining, max))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) query(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		SOQL string `json:"soql"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SOQL == "" {
		return "", errs.ValidationErrorf("soql is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet, apiPath("/query"), nil,
		url.Values{"q": {args.SOQL}})
	if err != nil {
		return "", err
	}
	payload := rest.AsObject(result)
	records := rest.AsList(payload["records"])
	total := rest.Num(payload, "totalSize")
	lines := []string{fmt.Sprintf("Query returned %d record(s) (%d shown):", total, len(records))}
	for _, r := range records {
		record := rest.AsObject(r)
		delete(record, "attributes")
		lines = append(lines, "  "+compactJSON(record))
	}
	if done, ok := payload["done"].(bool); ok && !done {
		lines = append(lines, "  ... more records available (use LIMIT/OFFSET to page)")
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) search(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		SOSL string `json:"sosl"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SOSL == "" {
		return "", errs.ValidationErrorf("sosl is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet, apiPath("/search"), nil,
		url.Values{"q": {args.SOSL}})
	if err != nil {
		return "", err
	}
	records := rest.AsList(rest.AsObject(result)["searchRecords"])
	lines := []string{fmt.Sprintf("Search returned %d record(s):", len(records))}
	for _, r := range records {
		record := rest.AsObject(r)
		objectType := rest.Str(rest.AsObject(record["attributes"]), "type", "?")
		delete(record, "attributes")
		lines = append(lines, fmt.Sprintf("  [%s] %s", objectType, compactJSON(record)))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) describeObject(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ObjectType string `json:"object_type"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ObjectType == "" {
		return "", errs.ValidationErrorf("object_type is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		apiPath("/sobjects/"+args.ObjectType+"/describe"), nil, nil)
	if err != nil {
		return "", err
	}
	describe := rest.AsObject(result)
	fields := rest.AsList(describe["fields"])
	var names []string
	for _, f := range fields {
		field := rest.AsObject(f)
		names = append(names, fmt.Sprintf("%s (%s)", rest.Str(field, "name", "?"), rest.Str(field, "type", "?")))
		if len(names) >= 50 {
			break
		}
	}
	suffix := ""
	if len(fields) > 50 {
		suffix = fmt.Sprintf("\n  ... and %d more fields", len(fields)-50)
	}
	return fmt.Sprintf("%s: %s\n  Createable: %v, Updateable: %v, Queryable: %v\n  Fields (%d): %s%s",
		rest.Str(describe, "name", "?"), rest.Str(describe, "label", "?"),
		describe["createable"], describe["updateable"], describe["queryable"],
		len(fields), strings.Join(names, ", "), suffix), nil
}

func (c *Connector) listObjects(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	result, err := client.Do(context.Background(), http.MethodGet, apiPath("/sobjects"), nil, nil)
	if err != nil {
		return "", err
	}
	sobjects := rest.AsList(rest.AsObject(result)["sobjects"])
	var names []string
	for _, s := range sobjects {
		obj := rest.AsObject(s)
		if queryable, ok := obj["queryable"].(bool); ok && !queryable {
			continue
		}
		names = append(names, rest.Str(obj, "name", "?"))
	}
	return fmt.Sprintf("%d queryable object(s):\n  %s", len(names), strings.Join(names, ", ")), nil
}

func (c *Connector) getRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ObjectType string `json:"object_type"`
		RecordID   string `json:"record_id"`
		Fields     string `json:"fields"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ObjectType == "" || args.RecordID == "" {
		return "", errs.ValidationErrorf("object_type and record_id are required")
	}
	var query url.Values
	if args.Fields != "" {
		query = url.Values{"fields": {args.Fields}}
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		apiPath("/sobjects/"+args.ObjectType+"/"+args.RecordID), nil, query)
	if err != nil {
		return "", err
	}
	record := rest.AsObject(result)
	delete(record, "attributes")
	return fmt.Sprintf("%s %s:\n%s", args.ObjectType, args.RecordID, rest.PrettyJSON(record)), nil
}

func (c *Connector) createRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ObjectType string `json:"object_type"`
		FieldsJSON string `json:"fields_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ObjectType == "" {
		return "", errs.ValidationErrorf("object_type is required")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(args.FieldsJSON), &fields); err != nil {
		return "", errs.ValidationErrorf("'fields_json' must be valid JSON")
	}
	result, err := client.Do(context.Background(), http.MethodPost,
		apiPath("/sobjects/"+args.ObjectType), fields, nil)
	if err != nil {
		return "", err
	}
	created := rest.AsObject(result)
	return fmt.Sprintf("%s created: %s", args.ObjectType, rest.Str(created, "id", "?")), nil
}

func (c *Connector) updateRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ObjectType string `json:"object_type"`
		RecordID   string `json:"record_id"`
		FieldsJSON string `json:"fields_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ObjectType == "" || args.RecordID == "" {
		return "", errs.ValidationErrorf("object_type and record_id are required")
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(args.FieldsJSON), &fields); err != nil {
		return "", errs.ValidationErrorf("'fields_json' must be valid JSON")
	}
	if _, err := client.Do(context.Background(), http.MethodPatch,
		apiPath("/sobjects/"+args.ObjectType+"/"+args.RecordID), fields, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s updated.", args.ObjectType, args.RecordID), nil
}

func (c *Connector) deleteRecord(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ObjectType string `json:"object_type"`
		RecordID   string `json:"record_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ObjectType == "" || args.RecordID == "" {
		return "", errs.ValidationErrorf("object_type and record_id are required")
	}
	if _, err := client.Do(context.Background(), http.MethodDelete,
		apiPath("/sobjects/"+args.ObjectType+"/"+args.RecordID), nil, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s deleted.", args.ObjectType, args.RecordID), nil
}

func (c *Connector) bulkQuery(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		SOQL string `json:"soql"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.SOQL == "" {
		return "", errs.ValidationErrorf("soql is required")
	}
	body := map[string]any{
		"operation": "query",
		"query":     args.SOQL,
	}
	result, err := client.Do(context.Background(), http.MethodPost, apiPath("/jobs/query"), body, nil)
	if err != nil {
		return "", err
	}
	job := rest.AsObject(result)
	return fmt.Sprintf("Bulk query job created: %s\n  State: %s\n  Object: %s\n  Poll %s/jobs/query/%s for results.",
		rest.Str(job, "id", "?"), rest.Str(job, "state", "?"), rest.Str(job, "object", "?"),
		apiPrefix, rest.Str(job, "id", "?")), nil
}

func (c *Connector) getUser(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		UserID string `json:"user_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.UserID == "" {
		args.UserID = "me"
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		apiPath("/chatter/users/"+args.UserID), nil, nil)
	if err != nil {
		return "", err
	}
	user := rest.AsObject(result)
	return strings.Join([]string{
		fmt.Sprintf("User: %s (id: %s)", rest.Str(user, "displayName", "?"), rest.Str(user, "id", "?")),
		fmt.Sprintf("  Username: %s", rest.Str(user, "username", "?")),
		fmt.Sprintf("  Email: %s", rest.Str(user, "email", "?")),
		fmt.Sprintf("  Title: %s", rest.Str(user, "title", "N/A")),
		fmt.Sprintf("  Company: %s", rest.Str(user, "companyName", "N/A")),
	}, "\n"), nil
}

func (c *Connector) runFlow(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		FlowName   string `json:"flow_name"`
		InputsJSON string `json:"inputs_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.FlowName == "" {
		return "", errs.ValidationErrorf("flow_name is required")
	}
	inputs := map[string]any{}
	if args.InputsJSON != "" {
		if err := json.Unmarshal([]byte(args.InputsJSON), &inputs); err != nil {
			return "", errs.ValidationErrorf("'inputs_json' must be valid JSON")
		}
	}
	body := map[string]any{"inputs": []any{inputs}}
	result, err := client.Do(context.Background(), http.MethodPost,
		apiPath("/actions/custom/flow/"+args.FlowName), body, nil)
	if err != nil {
		return "", err
	}
	outcomes := rest.AsList(result)
	if len(outcomes) == 0 {
		return fmt.Sprintf("Flow %s invoked.", args.FlowName), nil
	}
	outcome := rest.AsObject(outcomes[0])
	success, _ := outcome["isSuccess"].(bool)
	return fmt.Sprintf("Flow %s invoked. Success: %v\n  Outputs: %s",
		args.FlowName, success, compactJSON(outcome["outputValues"])), nil
}

func (c *Connector) getReport(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		ReportID string `json:"report_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ReportID == "" {
		return "", errs.ValidationErrorf("report_id is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		apiPath("/analytics/reports/"+args.ReportID), nil,
		url.Values{"includeDetails": {"true"}})
	if err != nil {
		return "", err
	}
	report := rest.AsObject(result)
	meta := rest.AsObject(report["reportMetadata"])
	factMap := rest.AsObject(report["factMap"])
	rows := 0
	if all, ok := factMap["T!T"].(map[string]any); ok {
		rows = len(rest.AsList(all["rows"]))
	}
	return fmt.Sprintf("Report: %s (id: %s)\n  Format: %s\n  Rows in grand total: %d",
		rest.Str(meta, "name", "?"), args.ReportID,
		rest.Str(meta, "reportFormat", "?"), rows), nil
}

func (c *Connector) createTask(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Subject      string `json:"subject"`
		Status       string `json:"status"`
		Priority     string `json:"priority"`
		WhoID        string `json:"who_id"`
		WhatID       string `json:"what_id"`
		ActivityDate string `json:"activity_date"`
		Description  string `json:"description"`
	}{Status: "Not Started", Priority: "Normal"}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Subject == "" {
		return "", errs.ValidationErrorf("subject is required")
	}
	if args.Status == "" {
		args.Status = "Not Started"
	}
	if args.Priority == "" {
		args.Priority = "Normal"
	}
	fields := map[string]any{
		"Subject":  args.Subject,
		"Status":   args.Status,
		"Priority": args.Priority,
	}
	if args.WhoID != "" {
		fields["WhoId"] = args.WhoID
	}
	if args.WhatID != "" {
		fields["WhatId"] = args.WhatID
	}
	if args.ActivityDate != "" {
		fields["ActivityDate"] = args.ActivityDate
	}
	if args.Description != "" {
		fields["Description"] = args.Description
	}
	result, err := client.Do(context.Background(), http.MethodPost, apiPath("/sobjects/Task"), fields, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task created: %s", rest.Str(rest.AsObject(result), "id", "?")), nil
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
