package entities

import "encoding/json"

type Item struct {
	Type string
}

type Parameter struct {
	Name        string
	Type        string
	Enum        []string
	Items       []Item
	Description string
	Required    bool
}

// ToolHandler is the callable side of a registered tool. Arguments arrive as
// a JSON object string and the result is a human-readable string for the
// agent to display.
type ToolHandler func(arguments string) (string, error)

// Schema describes one tool in OpenAI function-calling format. The registry
// hands it to the agent framework verbatim.
type Schema struct {
	Name        string
	Description string
	Parameters  []Parameter
}

type schemaItems struct {
	Type string `json:"type"`
}

type schemaProperty struct {
	Type        string       `json:"type"`
	Description string       `json:"description,omitempty"`
	Enum        []string     `json:"enum,omitempty"`
	Items       *schemaItems `json:"items,omitempty"`
}

type schemaParameters struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

type schemaJSON struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  schemaParameters `json:"parameters"`
}

func (s Schema) MarshalJSON() ([]byte, error) {
	params := schemaParameters{
		Type:       "object",
		Properties: map[string]schemaProperty{},
		Required:   []string{},
	}
	for _, p := range s.Parameters {
		prop := schemaProperty{
			Type:        p.Type,
			Description: p.Description,
			Enum:        p.Enum,
		}
		if len(p.Items) > 0 {
			prop.Items = &schemaItems{Type: p.Items[0].Type}
		}
		params.Properties[p.Name] = prop
		if p.Required {
			params.Required = append(params.Required, p.Name)
		}
	}
	return json.Marshal(schemaJSON{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  params,
	})
}

// MarshalSchemas renders a schema list as indented JSON, the shape an
// agent framework's function-calling API expects.
func MarshalSchemas(schemas []Schema) (string, error) {
	data, err := json.MarshalIndent(schemas, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToolDef bundles a tool's schema with its handler. Connectors expose their
// tools as ToolDef slices and register them one by one.
type ToolDef struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handler     ToolHandler
}

func (d ToolDef) Schema() Schema {
	return Schema{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  d.Parameters,
	}
}

// Registry accepts (name, handler, schema) triples. The in-memory
// implementation lives in internal/impl/registry; the agent framework may
// substitute its own.
type Registry interface {
	Register(name string, handler ToolHandler, schema Schema) error
}
