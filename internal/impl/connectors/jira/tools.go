package jira

import (
	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
)

// Tools lists all 15 Jira tools with their function-calling schemas.
func (c *Connector) Tools() []entities.ToolDef {
	return []entities.ToolDef{
		{
			Name: "jira_connect",
			Description: "Authenticate with Jira Cloud using an Atlassian account email and API token. " +
				"Run this first to unlock all jira_* tools.",
			Parameters: []entities.Parameter{
				{Name: "base_url", Type: "string", Description: "Jira Cloud base URL (e.g. https://yourcompany.atlassian.net)"},
				{Name: "email", Type: "string", Description: "Atlassian account email"},
				{Name: "api_token", Type: "string", Description: "Atlassian API token"},
			},
			Handler: c.connect,
		},
		{
			Name:        "jira_status",
			Description: "Show Jira server info and the authenticated user.",
			Handler:     c.status,
		},
		{
			Name:        "jira_search",
			Description: "Search Jira issues with a JQL query.",
			Parameters: []entities.Parameter{
				{Name: "jql", Type: "string", Description: `JQL query (e.g. "project = ENG AND status = 'In Progress'")`, Required: true},
				{Name: "max_results", Type: "integer", Description: "Max issues to return (default 20)"},
			},
			Handler: c.search,
		},
		{
			Name:        "jira_get_issue",
			Description: "Get a Jira issue by key with summary, status, assignee, priority, and description.",
			Parameters: []entities.Parameter{
				{Name: "issue_key", Type: "string", Description: "Issue key (e.g. ENG-123)", Required: true},
			},
			Handler: c.getIssue,
		},
		{
			Name:        "jira_create_issue",
			Description: "Create a Jira issue in a project.",
			Parameters: []entities.Parameter{
				{Name: "project_key", Type: "string", Description: "Project key (e.g. ENG)", Required: true},
				{Name: "summary", Type: "string", Description: "Issue summary", Required: true},
				{Name: "issue_type", Type: "string", Description: "Issue type name (default Task)"},
				{Name: "description", Type: "string", Description: "Issue description (plain text)"},
				{Name: "priority", Type: "string", Description: "Priority name (e.g. High)"},
				{Name: "assignee_account_id", Type: "string", Description: "Assignee account ID"},
			},
			Handler: c.createIssue,
		},
		{
			Name:        "jira_update_issue",
			Description: "Update fields of an existing Jira issue.",
			Parameters: []entities.Parameter{
				{Name: "issue_key", Type: "string", Description: "Issue key to update", Required: true},
				{Name: "fields_json", Type: "string", Description: `JSON string of fields to set (e.g. {"summary":"New title"})`, Required: true},
			},
			Handler: c.updateIssue,
		},
		{
			Name:        "jira_transition_issue",
			Description: "Move a Jira issue to another status by transition name (case-insensitive).",
			Parameters: []entities.Parameter{
				{Name: "issue_key", Type: "string", Description: "Issue key to transition", Required: true},
				{Name: "status_name", Type: "string", Description: `Target transition name (e.g. "In Progress", "Done")`, Required: true},
			},
			Handler: c.transitionIssue,
		},
		{
			Name:        "jira_add_comment",
			Description: "Add a comment to a Jira issue.",
			Parameters: []entities.Parameter{
				{Name: "issue_key", Type: "string", Description: "Issue key to comment on", Required: true},
				{Name: "body_text", Type: "string", Description: "Comment text", Required: true},
			},
			Handler: c.addComment,
		},
		{
			Name:        "jira_assign_issue",
			Description: "Assign a Jira issue to a user by account ID.",
			Parameters: []entities.Parameter{
				{Name: "issue_key", Type: "string", Description: "Issue key to assign", Required: true},
				{Name: "account_id", Type: "string", Description: "Assignee account ID (find with jira_search_users)", Required: true},
			},
			Handler: c.assignIssue,
		},
		{
			Name:        "jira_list_projects",
			Description: "List Jira projects visible to the authenticated user.",
			Handler:     c.listProjects,
		},
		{
			Name:        "jira_get_project",
			Description: "Get details of a Jira project by key.",
			Parameters: []entities.Parameter{
				{Name: "project_key", Type: "string", Description: "Project key (e.g. ENG)", Required: true},
			},
			Handler: c.getProject,
		},
		{
			Name:        "jira_list_boards",
			Description: "List agile boards, optionally filtered by project.",
			Parameters: []entities.Parameter{
				{Name: "project_key", Type: "string", Description: "Project key to filter boards"},
			},
			Handler: c.listBoards,
		},
		{
			Name:        "jira_get_sprint",
			Description: "Get a sprint by ID with state, dates, and goal.",
			Parameters: []entities.Parameter{
				{Name: "sprint_id", Type: "integer", Description: "Sprint ID", Required: true},
			},
			Handler: c.getSprint,
		},
		{
			Name:        "jira_sprint_issues",
			Description: "List issues in a sprint.",
			Parameters: []entities.Parameter{
				{Name: "sprint_id", Type: "integer", Description: "Sprint ID", Required: true},
				{Name: "max_results", Type: "integer", Description: "Max issues to return (default 50)"},
			},
			Handler: c.sprintIssues,
		},
		{
			Name:        "jira_search_users",
			Description: "Search Jira users by name or email to find account IDs.",
			Parameters: []entities.Parameter{
				{Name: "query", Type: "string", Description: "Name or email fragment", Required: true},
				{Name: "max_results", Type: "integer", Description: "Max users to return (default 10)"},
			},
			Handler: c.searchUsers,
		},
	}
}

// RegisterTools registers every Jira tool with the registry.
func (c *Connector) RegisterTools(reg entities.Registry) error {
	for _, def := range c.Tools() {
		if err := reg.Register(def.Name, def.Handler, def.Schema()); err != nil {
			return err
		}
	}
	return nil
}
