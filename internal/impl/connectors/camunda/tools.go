package camunda

import (
	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
)

func modelParameters() []entities.Parameter {
	return []entities.Parameter{
		{Name: "xml_content", Type: "string", Description: "BPMN 2.0 XML content"},
		{Name: "file_path", Type: "string", Description: "Path to a .bpmn file (used when xml_content is empty)"},
	}
}

// Tools lists all 15 Camunda tools with their function-calling schemas.
func (c *Connector) Tools() []entities.ToolDef {
	return []entities.ToolDef{
		{
			Name: "camunda_connect",
			Description: "Connect to a Camunda 7 engine REST API, optionally with basic auth. " +
				"Run this first to unlock the engine-backed camunda_* tools.",
			Parameters: []entities.Parameter{
				{Name: "base_url", Type: "string", Description: "Engine REST base URL (e.g. http://localhost:8080/engine-rest)"},
				{Name: "username", Type: "string", Description: "Basic auth username"},
				{Name: "password", Type: "string", Description: "Basic auth password"},
			},
			Handler: c.connect,
		},
		{
			Name:        "camunda_status",
			Description: "Show engine version and counts of definitions, instances, and open tasks.",
			Handler:     c.status,
		},
		{
			Name:        "bpmn_parse",
			Description: "Parse a BPMN model and list its processes, nodes, and sequence flows. Works offline.",
			Parameters:  modelParameters(),
			Handler:     c.parseModel,
		},
		{
			Name: "bpmn_validate",
			Description: "Validate a BPMN model's structure: start/end events, flow references, " +
				"and reachability. Works offline.",
			Parameters: modelParameters(),
			Handler:    c.validateModel,
		},
		{
			Name:        "camunda_deploy",
			Description: "Validate a BPMN model and deploy it to the engine.",
			Parameters: append([]entities.Parameter{
				{Name: "deployment_name", Type: "string", Description: "Name for the deployment", Required: true},
			}, modelParameters()...),
			Handler: c.deploy,
		},
		{
			Name:        "camunda_list_deployments",
			Description: "List deployments, newest first.",
			Parameters: []entities.Parameter{
				{Name: "limit", Type: "integer", Description: "Max deployments (default 20)"},
			},
			Handler: c.listDeployments,
		},
		{
			Name:        "camunda_list_definitions",
			Description: "List latest-version process definitions, optionally filtered by key.",
			Parameters: []entities.Parameter{
				{Name: "key", Type: "string", Description: "Definition key fragment to filter by"},
				{Name: "limit", Type: "integer", Description: "Max definitions (default 20)"},
			},
			Handler: c.listDefinitions,
		},
		{
			Name:        "camunda_get_definition",
			Description: "Get the latest process definition by key.",
			Parameters: []entities.Parameter{
				{Name: "key", Type: "string", Description: "Process definition key", Required: true},
			},
			Handler: c.getDefinition,
		},
		{
			Name:        "camunda_start_process",
			Description: "Start a process instance by definition key with typed variables.",
			Parameters: []entities.Parameter{
				{Name: "key", Type: "string", Description: "Process definition key", Required: true},
				{Name: "variables_json", Type: "string", Description: `JSON string of variables (e.g. {"amount":100,"approved":true})`},
				{Name: "business_key", Type: "string", Description: "Business key (default: random UUID)"},
			},
			Handler: c.startProcess,
		},
		{
			Name:        "camunda_list_instances",
			Description: "List running process instances, optionally for one definition key.",
			Parameters: []entities.Parameter{
				{Name: "key", Type: "string", Description: "Process definition key to filter by"},
				{Name: "limit", Type: "integer", Description: "Max instances (default 20)"},
			},
			Handler: c.listInstances,
		},
		{
			Name:        "camunda_get_instance",
			Description: "Get a process instance with its active activities.",
			Parameters: []entities.Parameter{
				{Name: "instance_id", Type: "string", Description: "Process instance ID", Required: true},
			},
			Handler: c.getInstance,
		},
		{
			Name:        "camunda_delete_instance",
			Description: "Cancel and delete a running process instance.",
			Parameters: []entities.Parameter{
				{Name: "instance_id", Type: "string", Description: "Process instance ID", Required: true},
				{Name: "reason", Type: "string", Description: "Deletion reason recorded in history"},
			},
			Handler: c.deleteInstance,
		},
		{
			Name:        "camunda_list_tasks",
			Description: "List open user tasks, optionally filtered by instance or assignee.",
			Parameters: []entities.Parameter{
				{Name: "instance_id", Type: "string", Description: "Process instance ID to filter by"},
				{Name: "assignee", Type: "string", Description: "Assignee user ID to filter by"},
				{Name: "limit", Type: "integer", Description: "Max tasks (default 20)"},
			},
			Handler: c.listTasks,
		},
		{
			Name:        "camunda_complete_task",
			Description: "Complete a user task, optionally passing variables back to the process.",
			Parameters: []entities.Parameter{
				{Name: "task_id", Type: "string", Description: "Task ID", Required: true},
				{Name: "variables_json", Type: "string", Description: "JSON string of variables to set on completion"},
			},
			Handler: c.completeTask,
		},
		{
			Name:        "camunda_get_variables",
			Description: "List the variables of a process instance with their engine types.",
			Parameters: []entities.Parameter{
				{Name: "instance_id", Type: "string", Description: "Process instance ID", Required: true},
			},
			Handler: c.getVariables,
		},
	}
}

// RegisterTools registers every Camunda tool with the registry.
func (c *Connector) RegisterTools(reg entities.Registry) error {
	for _, def := range c.Tools() {
		if err := reg.Register(def.Name, def.Handler, def.Schema()); err != nil {
			return err
		}
	}
	return nil
}
