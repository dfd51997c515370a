package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/camunda/bpmn"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/rest"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const connectorName = "Camunda"

// Connector wraps the Camunda 7 engine REST API: deployments, process
// definitions and instances, user tasks, and variables. It also parses and
// validates BPMN models locally, without an engine round trip.
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
		return nil, errs.ValidationErrorf("Not connected. Run camunda_connect first.")
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

// loadBPMN resolves either inline XML or a file path to model bytes.
func loadBPMN(xmlContent, filePath string) ([]byte, string, error) {
	if xmlContent != "" {
		return []byte(xmlContent), "model.bpmn", nil
	}
	if filePath == "" {
		return nil, "", errs.ValidationErrorf("provide xml_content or file_path")
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", errs.ValidationErrorf("failed to read %s: %v", filePath, err)
	}
	return data, filepath.Base(filePath), nil
}

func (c *Connector) connect(arguments string) (string, error) {
	var args struct {
		BaseURL  string `json:"base_url"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.BaseURL == "" {
		args.BaseURL = c.configuration["base_url"]
	}
	if args.Username == "" {
		args.Username = c.configuration["username"]
	}
	if args.Password == "" {
		args.Password = c.configuration["password"]
	}
	if args.BaseURL == "" {
		return "", errs.ValidationErrorf("base_url is required (e.g. http://localhost:8080/engine-rest)")
	}

	auth := rest.None()
	if args.Username != "" {
		auth = rest.BasicAuth(args.Username, args.Password)
	}
	client := rest.NewClient(args.BaseURL, auth, c.logger)
	result, err := client.Do(context.Background(), http.MethodGet, "/version", nil, nil)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	version := rest.Str(rest.AsObject(result), "version", "unknown")

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.logger.Info("Connected to Camunda", zap.String("base_url", client.BaseURL()), zap.String("version", version))

	return fmt.Sprintf("Connected to Camunda %s (%s).", version, client.BaseURL()), nil
}

func (c *Connector) status(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	versionResult, err := client.Do(ctx, http.MethodGet, "/version", nil, nil)
	if err != nil {
		return "", err
	}
	version := rest.Str(rest.AsObject(versionResult), "version", "unknown")

	defsResult, err := client.Do(ctx, http.MethodGet, "/process-definition/count", nil,
		url.Values{"latestVersion": {"true"}})
	if err != nil {
		return "", err
	}
	instancesResult, err := client.Do(ctx, http.MethodGet, "/process-instance/count", nil, nil)
	if err != nil {
		return "", err
	}
	tasksResult, err := client.Do(ctx, http.MethodGet, "/task/count", nil, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Engine: Camunda %s (%s)\n  Process definitions (latest): %d\n  Running instances: %d\n  Open tasks: %d",
		version, client.BaseURL(),
		rest.Num(rest.AsObject(defsResult), "count"),
		rest.Num(rest.AsObject(instancesResult), "count"),
		rest.Num(rest.AsObject(tasksResult), "count")), nil
}

func (c *Connector) parseModel(arguments string) (string, error) {
	var args struct {
		XMLContent string `json:"xml_content"`
		FilePath   string `json:"file_path"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	data, _, err := loadBPMN(args.XMLContent, args.FilePath)
	if err != nil {
		return "", err
	}
	defs, err := bpmn.Parse(data)
	if err != nil {
		return "", err
	}
	lines := []string{fmt.Sprintf("Parsed %d process(es):", len(defs.Processes))}
	for _, process := range defs.Processes {
		lines = append(lines, fmt.Sprintf("  process %s (%s): executable: %v",
			process.ID, process.Name, process.IsExecutable))
		for _, node := range process.Nodes {
			lines = append(lines, fmt.Sprintf("    [%s] %s %s", node.Type, node.ID, node.Name))
		}
		for _, flow := range process.Flows {
			line := fmt.Sprintf("    flow %s: %s -> %s", flow.ID, flow.SourceRef, flow.TargetRef)
			if flow.Condition != "" {
				line += fmt.Sprintf(" [%s]", flow.Condition)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) validateModel(arguments string) (string, error) {
	var args struct {
		XMLContent string `json:"xml_content"`
		FilePath   string `json:"file_path"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	data, _, err := loadBPMN(args.XMLContent, args.FilePath)
	if err != nil {
		return "", err
	}
	defs, err := bpmn.Parse(data)
	if err != nil {
		return "", err
	}
	return bpmn.Report(defs, bpmn.Validate(defs)), nil
}

func (c *Connector) deploy(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		DeploymentName string `json:"deployment_name"`
		XMLContent     string `json:"xml_content"`
		FilePath       string `json:"file_path"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.DeploymentName == "" {
		return "", errs.ValidationErrorf("deployment_name is required")
	}
	data, fileName, err := loadBPMN(args.XMLContent, args.FilePath)
	if err != nil {
		return "", err
	}

	// Validate locally first so broken models never reach the engine.
	defs, err := bpmn.Parse(data)
	if err != nil {
		return "", err
	}
	if issues := bpmn.Validate(defs); len(issues) > 0 {
		return "", errs.ValidationErrorf("model failed validation, not deploying:\n%s", bpmn.Report(defs, issues))
	}

	fields := map[string]string{
		"deployment-name":            args.DeploymentName,
		"enable-duplicate-filtering": "true",
	}
	result, err := client.DoMultipart(context.Background(), "/deployment/create", fields, fileName, fileName, data)
	if err != nil {
		return "", err
	}
	deployment := rest.AsObject(result)
	deployed := rest.AsObject(deployment["deployedProcessDefinitions"])
	var keys []string
	for _, d := range deployed {
		keys = append(keys, rest.Str(rest.AsObject(d), "key", "?"))
	}
	return fmt.Sprintf("Deployment created: %s (id: %s)\n  Deployed process definitions: %s",
		args.DeploymentName, rest.Str(deployment, "id", "?"), strings.Join(keys, ", ")), nil
}

func (c *Connector) listDeployments(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Limit int `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/deployment", nil, url.Values{
		"maxResults": {strconv.Itoa(args.Limit)},
		"sortBy":     {"deploymentTime"},
		"sortOrder":  {"desc"},
	})
	if err != nil {
		return "", err
	}
	deployments := rest.AsList(result)
	lines := []string{fmt.Sprintf("Found %d deployment(s):", len(deployments))}
	for _, d := range deployments {
		deployment := rest.AsObject(d)
		lines = append(lines, fmt.Sprintf("  %s: %s (deployed: %s)",
			rest.Str(deployment, "id", "?"),
			rest.Str(deployment, "name", "unnamed"),
			rest.Str(deployment, "deploymentTime", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) listDefinitions(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Key   string `json:"key"`
		Limit int    `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	query := url.Values{
		"latestVersion": {"true"},
		"maxResults":    {strconv.Itoa(args.Limit)},
	}
	if args.Key != "" {
		query.Set("keyLike", "%"+args.Key+"%")
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/process-definition", nil, query)
	if err != nil {
		return "", err
	}
	definitions := rest.AsList(result)
	lines := []string{fmt.Sprintf("Found %d process definition(s):", len(definitions))}
	for _, d := range definitions {
		definition := rest.AsObject(d)
		lines = append(lines, fmt.Sprintf("  %s v%d: %s (id: %s)",
			rest.Str(definition, "key", "?"),
			rest.Num(definition, "version"),
			rest.Str(definition, "name", "unnamed"),
			rest.Str(definition, "id", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getDefinition(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Key string `json:"key"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Key == "" {
		return "", errs.ValidationErrorf("key is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/process-definition/key/"+args.Key, nil, nil)
	if err != nil {
		return "", err
	}
	definition := rest.AsObject(result)
	return strings.Join([]string{
		fmt.Sprintf("Process definition: %s", rest.Str(definition, "key", "?")),
		fmt.Sprintf("  Name: %s", rest.Str(definition, "name", "unnamed")),
		fmt.Sprintf("  ID: %s", rest.Str(definition, "id", "?")),
		fmt.Sprintf("  Version: %d", rest.Num(definition, "version")),
		fmt.Sprintf("  Deployment: %s", rest.Str(definition, "deploymentId", "?")),
		fmt.Sprintf("  Suspended: %v", definition["suspended"]),
	}, "\n"), nil
}

// engineVariable wraps a decoded JSON value in Camunda's typed variable
// format. Objects and arrays go over the wire as Json-typed strings.
func engineVariable(value any) map[string]any {
	switch v := value.(type) {
	case nil:
		return map[string]any{"value": nil, "type": "Null"}
	case string:
		return map[string]any{"value": v, "type": "String"}
	case bool:
		return map[string]any{"value": v, "type": "Boolean"}
	case float64:
		if v == float64(int64(v)) {
			return map[string]any{"value": int64(v), "type": "Integer"}
		}
		return map[string]any{"value": v, "type": "Double"}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return map[string]any{"value": fmt.Sprintf("%v", v), "type": "String"}
		}
		return map[string]any{"value": string(data), "type": "Json"}
	}
}

func (c *Connector) startProcess(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Key           string `json:"key"`
		VariablesJSON string `json:"variables_json"`
		BusinessKey   string `json:"business_key"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Key == "" {
		return "", errs.ValidationErrorf("key is required")
	}
	if args.BusinessKey == "" {
		args.BusinessKey = uuid.New().String()
	}

	variables := map[string]any{}
	if args.VariablesJSON != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(args.VariablesJSON), &raw); err != nil {
			return "", errs.ValidationErrorf("'variables_json' must be valid JSON")
		}
		for name, value := range raw {
			variables[name] = engineVariable(value)
		}
	}

	body := map[string]any{
		"businessKey": args.BusinessKey,
		"variables":   variables,
	}
	result, err := client.Do(context.Background(), http.MethodPost,
		"/process-definition/key/"+args.Key+"/start", body, nil)
	if err != nil {
		return "", err
	}
	instance := rest.AsObject(result)
	return fmt.Sprintf("Process started: %s\n  Instance ID: %s\n  Business key: %s",
		args.Key, rest.Str(instance, "id", "?"), rest.Str(instance, "businessKey", args.BusinessKey)), nil
}

func (c *Connector) listInstances(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		Key   string `json:"key"`
		Limit int    `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	query := url.Values{"maxResults": {strconv.Itoa(args.Limit)}}
	if args.Key != "" {
		query.Set("processDefinitionKey", args.Key)
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/process-instance", nil, query)
	if err != nil {
		return "", err
	}
	instances := rest.AsList(result)
	lines := []string{fmt.Sprintf("Found %d running instance(s):", len(instances))}
	for _, i := range instances {
		instance := rest.AsObject(i)
		lines = append(lines, fmt.Sprintf("  %s (definition: %s, business key: %s, suspended: %v)",
			rest.Str(instance, "id", "?"),
			rest.Str(instance, "definitionId", "?"),
			rest.Str(instance, "businessKey", "N/A"),
			instance["suspended"]))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) getInstance(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		InstanceID string `json:"instance_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.InstanceID == "" {
		return "", errs.ValidationErrorf("instance_id is required")
	}
	ctx := context.Background()
	result, err := client.Do(ctx, http.MethodGet, "/process-instance/"+args.InstanceID, nil, nil)
	if err != nil {
		return "", err
	}
	instance := rest.AsObject(result)

	activityResult, err := client.Do(ctx, http.MethodGet,
		"/process-instance/"+args.InstanceID+"/activity-instances", nil, nil)
	lines := []string{
		fmt.Sprintf("Instance: %s", rest.Str(instance, "id", "?")),
		fmt.Sprintf("  Definition: %s", rest.Str(instance, "definitionId", "?")),
		fmt.Sprintf("  Business key: %s", rest.Str(instance, "businessKey", "N/A")),
		fmt.Sprintf("  Suspended: %v", instance["suspended"]),
	}
	if err == nil {
		children := rest.AsList(rest.AsObject(activityResult)["childActivityInstances"])
		var active []string
		for _, a := range children {
			activity := rest.AsObject(a)
			active = append(active, rest.Str(activity, "activityId", "?"))
		}
		if len(active) > 0 {
			lines = append(lines, "  Active activities: "+strings.Join(active, ", "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) deleteInstance(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		InstanceID string `json:"instance_id"`
		Reason     string `json:"reason"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.InstanceID == "" {
		return "", errs.ValidationErrorf("instance_id is required")
	}
	var query url.Values
	if args.Reason != "" {
		query = url.Values{"deleteReason": {args.Reason}}
	}
	if _, err := client.Do(context.Background(), http.MethodDelete,
		"/process-instance/"+args.InstanceID, nil, query); err != nil {
		return "", err
	}
	return fmt.Sprintf("Instance %s deleted.", args.InstanceID), nil
}

func (c *Connector) listTasks(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	args := struct {
		InstanceID string `json:"instance_id"`
		Assignee   string `json:"assignee"`
		Limit      int    `json:"limit"`
	}{Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	query := url.Values{"maxResults": {strconv.Itoa(args.Limit)}}
	if args.InstanceID != "" {
		query.Set("processInstanceId", args.InstanceID)
	}
	if args.Assignee != "" {
		query.Set("assignee", args.Assignee)
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/task", nil, query)
	if err != nil {
		return "", err
	}
	tasks := rest.AsList(result)
	lines := []string{fmt.Sprintf("Found %d open task(s):", len(tasks))}
	for _, t := range tasks {
		task := rest.AsObject(t)
		lines = append(lines, fmt.Sprintf("  %s: %s (assignee: %s, created: %s)",
			rest.Str(task, "id", "?"),
			rest.Str(task, "name", "unnamed"),
			rest.Str(task, "assignee", "unassigned"),
			rest.Str(task, "created", "?")))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) completeTask(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		TaskID        string `json:"task_id"`
		VariablesJSON string `json:"variables_json"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.TaskID == "" {
		return "", errs.ValidationErrorf("task_id is required")
	}
	variables := map[string]any{}
	if args.VariablesJSON != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(args.VariablesJSON), &raw); err != nil {
			return "", errs.ValidationErrorf("'variables_json' must be valid JSON")
		}
		for name, value := range raw {
			variables[name] = engineVariable(value)
		}
	}
	if _, err := client.Do(context.Background(), http.MethodPost,
		"/task/"+args.TaskID+"/complete", map[string]any{"variables": variables}, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Task %s completed.", args.TaskID), nil
}

func (c *Connector) getVariables(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		InstanceID string `json:"instance_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.InstanceID == "" {
		return "", errs.ValidationErrorf("instance_id is required")
	}
	result, err := client.Do(context.Background(), http.MethodGet,
		"/process-instance/"+args.InstanceID+"/variables", nil, nil)
	if err != nil {
		return "", err
	}
	variables := rest.AsObject(result)
	if len(variables) == 0 {
		return fmt.Sprintf("Instance %s has no variables.", args.InstanceID), nil
	}
	lines := []string{fmt.Sprintf("Instance %s variables:", args.InstanceID)}
	for name, v := range variables {
		variable := rest.AsObject(v)
		lines = append(lines, fmt.Sprintf("  %s (%s) = %v",
			name, rest.Str(variable, "type", "?"), variable["value"]))
	}
	return strings.Join(lines, "\n"), nil
}
