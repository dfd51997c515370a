package hubspot

import (
	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
)

var filterOperators = []string{"EQ", "NEQ", "LT", "LTE", "GT", "GTE", "CONTAINS", "NOT_CONTAINS"}

func searchParameters(filterExample, propertiesHint string) []entities.Parameter {
	return []entities.Parameter{
		{Name: "query", Type: "string", Description: "Free-text search query"},
		{Name: "filter_property", Type: "string", Description: "Property name to filter (e.g. " + filterExample + ")"},
		{Name: "filter_operator", Type: "string", Enum: filterOperators, Description: "Filter operator (EQ, NEQ, LT, GT, CONTAINS, etc.)"},
		{Name: "filter_value", Type: "string", Description: "Value to filter against"},
		{Name: "properties", Type: "string", Description: "Comma-separated property names to return (default: " + propertiesHint + ")"},
		{Name: "limit", Type: "integer", Description: "Max results (default 20)"},
	}
}

// Tools lists all 15 HubSpot tools with their function-calling schemas.
func (c *Connector) Tools() []entities.ToolDef {
	return []entities.ToolDef{
		{
			Name: "hs_connect",
			Description: "Authenticate with HubSpot using a private app token or OAuth token. " +
				"Run this first to unlock all hs_* tools.",
			Parameters: []entities.Parameter{
				{Name: "api_key", Type: "string", Description: "HubSpot private app access token"},
				{Name: "oauth_token", Type: "string", Description: "HubSpot OAuth2 access token"},
			},
			Handler: c.connect,
		},
		{
			Name:        "hs_status",
			Description: "Get HubSpot account details and daily API usage for private apps.",
			Handler:     c.status,
		},
		{
			Name:        "hs_search_contacts",
			Description: "Search HubSpot contacts by free-text query or property filter.",
			Parameters:  searchParameters("email, company", contactProperties),
			Handler:     c.searchContacts,
		},
		{
			Name:        "hs_get_contact",
			Description: "Get a HubSpot contact by ID with standard properties (email, name, phone, company).",
			Parameters: []entities.Parameter{
				{Name: "contact_id", Type: "string", Description: "The contact ID", Required: true},
			},
			Handler: c.getContact,
		},
		{
			Name:        "hs_create_contact",
			Description: "Create a new HubSpot contact with the given properties.",
			Parameters: []entities.Parameter{
				{Name: "properties", Type: "string", Description: `JSON string of contact properties (e.g. {"email":"a@b.com","firstname":"Al"})`, Required: true},
			},
			Handler: c.createContact,
		},
		{
			Name:        "hs_update_contact",
			Description: "Update an existing HubSpot contact by ID.",
			Parameters: []entities.Parameter{
				{Name: "contact_id", Type: "string", Description: "The contact ID to update", Required: true},
				{Name: "properties", Type: "string", Description: "JSON string of properties to update", Required: true},
			},
			Handler: c.updateContact,
		},
		{
			Name:        "hs_search_deals",
			Description: "Search HubSpot deals by free-text query or property filter.",
			Parameters:  searchParameters("dealstage, amount", dealProperties),
			Handler:     c.searchDeals,
		},
		{
			Name:        "hs_get_deal",
			Description: "Get a HubSpot deal by ID with standard properties (name, amount, stage, pipeline, close date).",
			Parameters: []entities.Parameter{
				{Name: "deal_id", Type: "string", Description: "The deal ID", Required: true},
			},
			Handler: c.getDeal,
		},
		{
			Name:        "hs_create_deal",
			Description: "Create a new HubSpot deal with the given properties.",
			Parameters: []entities.Parameter{
				{Name: "properties", Type: "string", Description: `JSON string of deal properties (e.g. {"dealname":"Big Deal","amount":"50000"})`, Required: true},
			},
			Handler: c.createDeal,
		},
		{
			Name:        "hs_update_deal",
			Description: "Update an existing HubSpot deal by ID.",
			Parameters: []entities.Parameter{
				{Name: "deal_id", Type: "string", Description: "The deal ID to update", Required: true},
				{Name: "properties", Type: "string", Description: "JSON string of properties to update", Required: true},
			},
			Handler: c.updateDeal,
		},
		{
			Name:        "hs_search_companies",
			Description: "Search HubSpot companies by free-text query or property filter.",
			Parameters:  searchParameters("domain, industry", companyProperties),
			Handler:     c.searchCompanies,
		},
		{
			Name:        "hs_get_company",
			Description: "Get a HubSpot company by ID.",
			Parameters: []entities.Parameter{
				{Name: "company_id", Type: "string", Description: "The company ID", Required: true},
			},
			Handler: c.getCompany,
		},
		{
			Name:        "hs_create_company",
			Description: "Create a new HubSpot company with the given properties.",
			Parameters: []entities.Parameter{
				{Name: "properties", Type: "string", Description: `JSON string of company properties (e.g. {"name":"Acme Inc","domain":"acme.com"})`, Required: true},
			},
			Handler: c.createCompany,
		},
		{
			Name:        "hs_list_pipelines",
			Description: "List all HubSpot deal pipelines and their stages.",
			Handler:     c.listPipelines,
		},
		{
			Name:        "hs_create_note",
			Description: "Create an engagement note in HubSpot, optionally associated with a contact, deal, or company.",
			Parameters: []entities.Parameter{
				{Name: "body", Type: "string", Description: "The note body text (HTML supported)", Required: true},
				{Name: "contact_id", Type: "string", Description: "Contact ID to associate the note with"},
				{Name: "deal_id", Type: "string", Description: "Deal ID to associate the note with"},
				{Name: "company_id", Type: "string", Description: "Company ID to associate the note with"},
			},
			Handler: c.createNote,
		},
	}
}

// RegisterTools registers every HubSpot tool with the registry.
func (c *Connector) RegisterTools(reg entities.Registry) error {
	for _, def := range c.Tools() {
		if err := reg.Register(def.Name, def.Handler, def.Schema()); err != nil {
			return err
		}
	}
	return nil
}
