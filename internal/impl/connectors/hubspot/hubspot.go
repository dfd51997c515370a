package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors/rest"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	connectorName  = "HubSpot"
	defaultBaseURL = "https://api.hubapi.com"

	contactProperties = "email,firstname,lastname,phone,company"
	dealProperties    = "dealname,amount,dealstage,pipeline,closedate"
	companyProperties = "name,domain,industry,city,state,phone"
)

// HubSpot-defined association type ids for engagement notes.
const (
	noteToContactAssociation = 202
	noteToDealAssociation    = 214
	noteToCompanyAssociation = 190
)

// Connector wraps the HubSpot CRM v3 API: contacts, deals, companies,
// pipelines, and engagement notes.
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
		return nil, errs.ValidationErrorf("Not connected. Run hs_connect first.")
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

func (c *Connector) connect(arguments string) (string, error) {
	var args struct {
		APIKey     string `json:"api_key"`
		OAuthToken string `json:"oauth_token"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.APIKey == "" {
		args.APIKey = c.configuration["api_key"]
	}
	if args.OAuthToken == "" {
		args.OAuthToken = c.configuration["oauth_token"]
	}

	token := args.APIKey
	authMode := "Private App"
	if token == "" {
		token = args.OAuthToken
		authMode = "OAuth"
	}
	if token == "" {
		return "", errs.ValidationErrorf("provide either api_key (private app token) or oauth_token")
	}

	baseURL := c.configuration["base_url"]
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := rest.NewClient(baseURL, rest.BearerToken(token), c.logger)

	// Test with a minimal contacts query before swapping the connection.
	result, err := client.Do(context.Background(), http.MethodGet, "/crm/v3/objects/contacts", nil, url.Values{"limit": {"1"}})
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	total := rest.Num(rest.AsObject(result), "total")

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.logger.Info("Connected to HubSpot", zap.String("auth", authMode))

	return fmt.Sprintf("Connected to HubSpot (%s).\n  Auth: %s\n  Contacts in portal: %s",
		baseURL, authMode, humanize.Comma(total)), nil
}

func (c *Connector) status(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	usage, err := client.Do(ctx, http.MethodGet, "/account-info/v3/api-usage/daily/private-app", nil, nil)
	if err != nil {
		return "", err
	}
	details, err := client.Do(ctx, http.MethodGet, "/account-info/v3/details", nil, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Account Details:\n%s\n\nAPI Usage:\n%s",
		rest.PrettyJSON(details), rest.PrettyJSON(usage)), nil
}

type searchArgs struct {
	Query          string `json:"query"`
	FilterProperty string `json:"filter_property"`
	FilterOperator string `json:"filter_operator"`
	FilterValue    string `json:"filter_value"`
	Properties     string `json:"properties"`
	Limit          int    `json:"limit"`
}

// search runs the CRM v3 search endpoint shared by contacts, deals, and
// companies. A free-text query wins over a property filter when both are set.
func (c *Connector) search(objectType, defaultProps, noun, arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}

	args := searchArgs{FilterOperator: "EQ", Properties: defaultProps, Limit: 20}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = 20
	}
	if args.FilterOperator == "" {
		args.FilterOperator = "EQ"
	}

	body := map[string]any{"limit": args.Limit}
	if args.Properties != "" {
		body["properties"] = splitProperties(args.Properties)
	}
	if args.Query != "" {
		body["query"] = args.Query
	} else if args.FilterProperty != "" && args.FilterValue != "" {
		body["filterGroups"] = []any{
			map[string]any{
				"filters": []any{
					map[string]any{
						"propertyName": args.FilterProperty,
						"operator":     args.FilterOperator,
						"value":        args.FilterValue,
					},
				},
			},
		}
	}

	result, err := client.Do(context.Background(), http.MethodPost, "/crm/v3/objects/"+objectType+"/search", body, nil)
	if err != nil {
		return "", err
	}
	obj := rest.AsObject(result)
	total := rest.Num(obj, "total")
	items := rest.AsList(obj["results"])
	return fmt.Sprintf("Found %s %s (%d returned).\n%s",
		humanize.Comma(total), noun, len(items), rest.PrettyJSON(result)), nil
}

func (c *Connector) searchContacts(arguments string) (string, error) {
	return c.search("contacts", contactProperties, "contact(s)", arguments)
}

func (c *Connector) searchDeals(arguments string) (string, error) {
	return c.search("deals", dealProperties, "deal(s)", arguments)
}

func (c *Connector) searchCompanies(arguments string) (string, error) {
	return c.search("companies", companyProperties, "company(ies)", arguments)
}

func (c *Connector) get(objectType, id, props string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	query := url.Values{}
	if props != "" {
		query.Set("properties", props)
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/crm/v3/objects/"+objectType+"/"+id, nil, query)
	if err != nil {
		return "", err
	}
	return rest.PrettyJSON(result), nil
}

func (c *Connector) getContact(arguments string) (string, error) {
	var args struct {
		ContactID string `json:"contact_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ContactID == "" {
		return "", errs.ValidationErrorf("contact_id is required")
	}
	return c.get("contacts", args.ContactID, contactProperties)
}

func (c *Connector) getDeal(arguments string) (string, error) {
	var args struct {
		DealID string `json:"deal_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.DealID == "" {
		return "", errs.ValidationErrorf("deal_id is required")
	}
	return c.get("deals", args.DealID, dealProperties)
}

func (c *Connector) getCompany(arguments string) (string, error) {
	var args struct {
		CompanyID string `json:"company_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.CompanyID == "" {
		return "", errs.ValidationErrorf("company_id is required")
	}
	return c.get("companies", args.CompanyID, "")
}

// create posts a new CRM object from a JSON properties string.
func (c *Connector) create(objectType, noun, properties string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(properties), &props); err != nil {
		return "", errs.ValidationErrorf("'properties' must be valid JSON")
	}
	result, err := client.Do(context.Background(), http.MethodPost, "/crm/v3/objects/"+objectType,
		map[string]any{"properties": props}, nil)
	if err != nil {
		return "", err
	}
	id := rest.Str(rest.AsObject(result), "id", "?")
	return fmt.Sprintf("%s created. ID: %s\n%s", noun, id, rest.PrettyJSON(result)), nil
}

func (c *Connector) update(objectType, noun, id, properties string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(properties), &props); err != nil {
		return "", errs.ValidationErrorf("'properties' must be valid JSON")
	}
	result, err := client.Do(context.Background(), http.MethodPatch, "/crm/v3/objects/"+objectType+"/"+id,
		map[string]any{"properties": props}, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s updated.\n%s", noun, id, rest.PrettyJSON(result)), nil
}

func (c *Connector) createContact(arguments string) (string, error) {
	var args struct {
		Properties string `json:"properties"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	return c.create("contacts", "Contact", args.Properties)
}

func (c *Connector) updateContact(arguments string) (string, error) {
	var args struct {
		ContactID  string `json:"contact_id"`
		Properties string `json:"properties"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.ContactID == "" {
		return "", errs.ValidationErrorf("contact_id is required")
	}
	return c.update("contacts", "Contact", args.ContactID, args.Properties)
}

func (c *Connector) createDeal(arguments string) (string, error) {
	var args struct {
		Properties string `json:"properties"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	return c.create("deals", "Deal", args.Properties)
}

func (c *Connector) updateDeal(arguments string) (string, error) {
	var args struct {
		DealID     string `json:"deal_id"`
		Properties string `json:"properties"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.DealID == "" {
		return "", errs.ValidationErrorf("deal_id is required")
	}
	return c.update("deals", "Deal", args.DealID, args.Properties)
}

func (c *Connector) createCompany(arguments string) (string, error) {
	var args struct {
		Properties string `json:"properties"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	return c.create("companies", "Company", args.Properties)
}

func (c *Connector) listPipelines(string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	result, err := client.Do(context.Background(), http.MethodGet, "/crm/v3/pipelines/deals", nil, nil)
	if err != nil {
		return "", err
	}
	pipelines := rest.AsList(rest.AsObject(result)["results"])
	lines := []string{fmt.Sprintf("Found %d pipeline(s).", len(pipelines))}
	for _, p := range pipelines {
		pipeline := rest.AsObject(p)
		lines = append(lines, fmt.Sprintf("\n  Pipeline: %s (ID: %s)",
			rest.Str(pipeline, "label", "?"), rest.Str(pipeline, "id", "?")))
		for _, s := range rest.AsList(pipeline["stages"]) {
			stage := rest.AsObject(s)
			lines = append(lines, fmt.Sprintf("    Stage: %s (ID: %s)",
				rest.Str(stage, "label", "?"), rest.Str(stage, "id", "?")))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Connector) createNote(arguments string) (string, error) {
	client, err := c.api()
	if err != nil {
		return "", err
	}
	var args struct {
		Body      string `json:"body"`
		ContactID string `json:"contact_id"`
		DealID    string `json:"deal_id"`
		CompanyID string `json:"company_id"`
	}
	if err := parseArgs(arguments, &args); err != nil {
		return "", err
	}
	if args.Body == "" {
		return "", errs.ValidationErrorf("body is required")
	}

	payload := map[string]any{
		"properties": map[string]any{
			"hs_note_body": args.Body,
			"hs_timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
		},
	}
	var associations []any
	for _, assoc := range []struct {
		id     string
		typeID int
	}{
		{args.ContactID, noteToContactAssociation},
		{args.DealID, noteToDealAssociation},
		{args.CompanyID, noteToCompanyAssociation},
	} {
		if assoc.id == "" {
			continue
		}
		associations = append(associations, map[string]any{
			"to": map[string]any{"id": assoc.id},
			"types": []any{map[string]any{
				"associationCategory": "HUBSPOT_DEFINED",
				"associationTypeId":   assoc.typeID,
			}},
		})
	}
	if len(associations) > 0 {
		payload["associations"] = associations
	}

	result, err := client.Do(context.Background(), http.MethodPost, "/crm/v3/objects/notes", payload, nil)
	if err != nil {
		return "", err
	}
	id := rest.Str(rest.AsObject(result), "id", "?")
	return fmt.Sprintf("Note created. ID: %s\n%s", id, rest.PrettyJSON(result)), nil
}

func splitProperties(list string) []string {
	parts := strings.Split(list, ",")
	props := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			props = append(props, trimmed)
		}
	}
	return props
}
