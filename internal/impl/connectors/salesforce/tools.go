package salesforce

import (
	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
)

// Tools lists all 15 Salesforce tools with their function-calling schemas.
func (c *Connector) Tools() []entities.ToolDef {
	return []entities.ToolDef{
		{
			Name: "sf_connect",
			Description: "Authenticate with Salesforce using a session token, username-password OAuth2, " +
				"or a JWT bearer assertion. Run this first to unlock all sf_* tools.",
			Parameters: []entities.Parameter{
				{Name: "instance_url", Type: "string", Description: "Salesforce instance URL (e.g. https://mycompany.my.salesforce.com)"},
				{Name: "access_token", Type: "string", Description: "Existing session or access token"},
				{Name: "username", Type: "string", Description: "Salesforce username"},
				{Name: "password", Type: "string", Description: "Salesforce password"},
				{Name: "security_token", Type: "string", Description: "Security token appended to the password"},
				{Name: "client_id", Type: "string", Description: "Connected app consumer key"},
				{Name: "client_secret", Type: "string", Description: "Connected app consumer secret"},
				{Name: "private_key", Type: "string", Description: "PEM-encoded RSA private key for JWT bearer auth"},
				{Name: "login_url", Type: "string", Description: "Login host (default https://login.salesforce.com; use https://test.salesforce.com for sandboxes)"},
			},
			Handler: c.connect,
		},
		{
			Name:        "sf_status",
			Description: "Show the connected Salesforce instance and daily API limits.",
			Handler:     c.status,
		},
		{
			Name:        "sf_query",
			Description: "Run a SOQL query and list the matching records.",
			Parameters: []entities.Parameter{
				{Name: "soql", Type: "string", Description: `SOQL query (e.g. "SELECT Id, Name FROM Account LIMIT 10")`, Required: true},
			},
			Handler: c.query,
		},
		{
			Name:        "sf_search",
			Description: "Run a SOSL full-text search across objects.",
			Parameters: []entities.Parameter{
				{Name: "sosl", Type: "string", Description: `SOSL query (e.g. "FIND {Acme} IN ALL FIELDS RETURNING Account(Id, Name)")`, Required: true},
			},
			Handler: c.search,
		},
		{
			Name:        "sf_describe_object",
			Description: "Describe an sObject: label, permissions, and its first 50 fields.",
			Parameters: []entities.Parameter{
				{Name: "object_type", Type: "string", Description: "sObject API name (e.g. Account, Custom__c)", Required: true},
			},
			Handler: c.describeObject,
		},
		{
			Name:        "sf_list_objects",
			Description: "List queryable sObjects in the org.",
			Handler:     c.listObjects,
		},
		{
			Name:        "sf_get_record",
			Description: "Get a record by object type and ID.",
			Parameters: []entities.Parameter{
				{Name: "object_type", Type: "string", Description: "sObject API name", Required: true},
				{Name: "record_id", Type: "string", Description: "Record ID", Required: true},
				{Name: "fields", Type: "string", Description: "Comma-separated field names to return"},
			},
			Handler: c.getRecord,
		},
		{
			Name:        "sf_create_record",
			Description: "Create a record of the given object type.",
			Parameters: []entities.Parameter{
				{Name: "object_type", Type: "string", Description: "sObject API name", Required: true},
				{Name: "fields_json", Type: "string", Description: `JSON string of field values (e.g. {"Name":"Acme"})`, Required: true},
			},
			Handler: c.createRecord,
		},
		{
			Name:        "sf_update_record",
			Description: "Update fields on an existing record.",
			Parameters: []entities.Parameter{
				{Name: "object_type", Type: "string", Description: "sObject API name", Required: true},
				{Name: "record_id", Type: "string", Description: "Record ID to update", Required: true},
				{Name: "fields_json", Type: "string", Description: "JSON string of field values to set", Required: true},
			},
			Handler: c.updateRecord,
		},
		{
			Name:        "sf_delete_record",
			Description: "Delete a record by object type and ID.",
			Parameters: []entities.Parameter{
				{Name: "object_type", Type: "string", Description: "sObject API name", Required: true},
				{Name: "record_id", Type: "string", Description: "Record ID to delete", Required: true},
			},
			Handler: c.deleteRecord,
		},
		{
			Name:        "sf_bulk_query",
			Description: "Start an asynchronous Bulk API 2.0 query job for large result sets.",
			Parameters: []entities.Parameter{
				{Name: "soql", Type: "string", Description: "SOQL query for the bulk job", Required: true},
			},
			Handler: c.bulkQuery,
		},
		{
			Name:        "sf_get_user",
			Description: "Get a user's profile via Chatter (defaults to the authenticated user).",
			Parameters: []entities.Parameter{
				{Name: "user_id", Type: "string", Description: "User ID (default: me)"},
			},
			Handler: c.getUser,
		},
		{
			Name:        "sf_run_flow",
			Description: "Invoke an autolaunched Salesforce Flow by API name.",
			Parameters: []entities.Parameter{
				{Name: "flow_name", Type: "string", Description: "Flow API name", Required: true},
				{Name: "inputs_json", Type: "string", Description: "JSON string of flow input variables"},
			},
			Handler: c.runFlow,
		},
		{
			Name:        "sf_get_report",
			Description: "Run a report synchronously and summarize its results.",
			Parameters: []entities.Parameter{
				{Name: "report_id", Type: "string", Description: "Report ID", Required: true},
			},
			Handler: c.getReport,
		},
		{
			Name:        "sf_create_task",
			Description: "Create a Task, optionally linked to a contact/lead (who_id) or other record (what_id).",
			Parameters: []entities.Parameter{
				{Name: "subject", Type: "string", Description: "Task subject", Required: true},
				{Name: "status", Type: "string", Description: "Task status (default 'Not Started')"},
				{Name: "priority", Type: "string", Description: "Task priority (default 'Normal')"},
				{Name: "who_id", Type: "string", Description: "Contact or Lead ID"},
				{Name: "what_id", Type: "string", Description: "Related record ID (Account, Opportunity, etc.)"},
				{Name: "activity_date", Type: "string", Description: "Due date (YYYY-MM-DD)"},
				{Name: "description", Type: "string", Description: "Task description"},
			},
			Handler: c.createTask,
		},
	}
}

// RegisterTools registers every Salesforce tool with the registry.
func (c *Connector) RegisterTools(reg entities.Registry) error {
	for _, def := range c.Tools() {
		if err := reg.Register(def.Name, def.Handler, def.Schema()); err != nil {
			return err
		}
	}
	return nil
}
