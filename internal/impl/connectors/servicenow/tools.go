package servicenow

import (
	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
)

// Tools lists all 15 ServiceNow tools with their function-calling schemas.
func (c *Connector) Tools() []entities.ToolDef {
	return []entities.ToolDef{
		{
			Name: "snow_connect",
			Description: "Authenticate with a ServiceNow instance using basic auth or OAuth2. " +
				"Run this first to unlock all snow_* tools.",
			Parameters: []entities.Parameter{
				{Name: "instance_url", Type: "string", Description: "Instance URL (e.g. https://dev12345.service-now.com)"},
				{Name: "username", Type: "string", Description: "ServiceNow username"},
				{Name: "password", Type: "string", Description: "ServiceNow password"},
				{Name: "client_id", Type: "string", Description: "OAuth2 client ID (enables token auth)"},
				{Name: "client_secret", Type: "string", Description: "OAuth2 client secret"},
			},
			Handler: c.connect,
		},
		{
			Name:        "snow_status",
			Description: "Show instance build and product properties.",
			Handler:     c.status,
		},
		{
			Name:        "snow_query",
			Description: "Query any ServiceNow table with an encoded query.",
			Parameters: []entities.Parameter{
				{Name: "table", Type: "string", Description: "Table name (e.g. incident, sys_user)", Required: true},
				{Name: "query", Type: "string", Description: `Encoded query (e.g. "active=true^priority=1")`},
				{Name: "fields", Type: "string", Description: "Comma-separated fields to return"},
				{Name: "limit", Type: "integer", Description: "Max records (default 20)"},
			},
			Handler: c.queryTable,
		},
		{
			Name:        "snow_get_record",
			Description: "Get a record from a table by sys_id.",
			Parameters: []entities.Parameter{
				{Name: "table", Type: "string", Description: "Table name", Required: true},
				{Name: "sys_id", Type: "string", Description: "Record sys_id", Required: true},
				{Name: "fields", Type: "string", Description: "Comma-separated fields to return"},
			},
			Handler: c.getRecord,
		},
		{
			Name:        "snow_create_record",
			Description: "Create a record in any table.",
			Parameters: []entities.Parameter{
				{Name: "table", Type: "string", Description: "Table name", Required: true},
				{Name: "fields_json", Type: "string", Description: `JSON string of field values (e.g. {"short_description":"..."})`, Required: true},
			},
			Handler: c.createRecord,
		},
		{
			Name:        "snow_update_record",
			Description: "Update fields on a record by sys_id.",
			Parameters: []entities.Parameter{
				{Name: "table", Type: "string", Description: "Table name", Required: true},
				{Name: "sys_id", Type: "string", Description: "Record sys_id", Required: true},
				{Name: "fields_json", Type: "string", Description: "JSON string of field values to set", Required: true},
			},
			Handler: c.updateRecord,
		},
		{
			Name:        "snow_delete_record",
			Description: "Delete a record by sys_id.",
			Parameters: []entities.Parameter{
				{Name: "table", Type: "string", Description: "Table name", Required: true},
				{Name: "sys_id", Type: "string", Description: "Record sys_id", Required: true},
			},
			Handler: c.deleteRecord,
		},
		{
			Name:        "snow_search_incidents",
			Description: "Search incidents by text, state, or assignee.",
			Parameters: []entities.Parameter{
				{Name: "text", Type: "string", Description: "Text to match in short description"},
				{Name: "state", Type: "string", Description: "Incident state value (e.g. 1=New, 2=In Progress, 6=Resolved)"},
				{Name: "assigned_to", Type: "string", Description: "Assignee display name"},
				{Name: "limit", Type: "integer", Description: "Max incidents (default 20)"},
			},
			Handler: c.searchIncidents,
		},
		{
			Name:        "snow_create_incident",
			Description: "Create an incident (default priority 3, urgency 2).",
			Parameters: []entities.Parameter{
				{Name: "short_description", Type: "string", Description: "Incident summary", Required: true},
				{Name: "description", Type: "string", Description: "Full description"},
				{Name: "priority", Type: "string", Description: "Priority 1-5 (default 3)"},
				{Name: "urgency", Type: "string", Description: "Urgency 1-3 (default 2)"},
				{Name: "assignment_group", Type: "string", Description: "Assignment group name or sys_id"},
				{Name: "caller_id", Type: "string", Description: "Caller name or sys_id"},
			},
			Handler: c.createIncident,
		},
		{
			Name:        "snow_resolve_incident",
			Description: "Resolve an incident with close notes (sets state 6).",
			Parameters: []entities.Parameter{
				{Name: "sys_id", Type: "string", Description: "Incident sys_id", Required: true},
				{Name: "close_note", Type: "string", Description: "Resolution notes", Required: true},
				{Name: "close_code", Type: "string", Description: "Close code (default 'Solved (Permanently)')"},
			},
			Handler: c.resolveIncident,
		},
		{
			Name:        "snow_search_changes",
			Description: "Search change requests by text or state.",
			Parameters: []entities.Parameter{
				{Name: "text", Type: "string", Description: "Text to match in short description"},
				{Name: "state", Type: "string", Description: "Change state value"},
				{Name: "limit", Type: "integer", Description: "Max changes (default 20)"},
			},
			Handler: c.searchChanges,
		},
		{
			Name:        "snow_get_cmdb_ci",
			Description: "Get a CMDB configuration item by sys_id.",
			Parameters: []entities.Parameter{
				{Name: "sys_id", Type: "string", Description: "CI sys_id", Required: true},
				{Name: "table", Type: "string", Description: "CI class table (default cmdb_ci)"},
			},
			Handler: c.getCMDBItem,
		},
		{
			Name:        "snow_search_cmdb",
			Description: "Search CMDB configuration items by name, optionally within a CI class.",
			Parameters: []entities.Parameter{
				{Name: "name", Type: "string", Description: "CI name fragment"},
				{Name: "class", Type: "string", Description: "CI class table (e.g. cmdb_ci_server, cmdb_ci_appl)"},
				{Name: "fields", Type: "string", Description: "Comma-separated fields (default name,sys_id,sys_class_name,operational_status)"},
				{Name: "limit", Type: "integer", Description: "Max items (default 20)"},
			},
			Handler: c.searchCMDB,
		},
		{
			Name:        "snow_list_tables",
			Description: "List tables in the instance, optionally filtered by name.",
			Parameters: []entities.Parameter{
				{Name: "name_filter", Type: "string", Description: "Table name fragment"},
				{Name: "limit", Type: "integer", Description: "Max tables (default 50)"},
			},
			Handler: c.listTables,
		},
		{
			Name:        "snow_run_script",
			Description: "Create a script include with the given server-side JavaScript.",
			Parameters: []entities.Parameter{
				{Name: "name", Type: "string", Description: "Script include name", Required: true},
				{Name: "script", Type: "string", Description: "Server-side JavaScript body", Required: true},
			},
			Handler: c.runScript,
		},
	}
}

// RegisterTools registers every ServiceNow tool with the registry.
func (c *Connector) RegisterTools(reg entities.Registry) error {
	for _, def := range c.Tools() {
		if err := reg.Register(def.Name, def.Handler, def.Schema()); err != nil {
			return err
		}
	}
	return nil
}
