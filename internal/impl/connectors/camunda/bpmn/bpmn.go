// Package bpmn parses BPMN 2.0 process definitions and checks their
// structural soundness: start/end events present, sequence flows wired to
// known nodes, and every node on a path from a start to an end.
package bpmn

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
)

const modelNamespace = "http://www.omg.org/spec/BPMN/20100524/MODEL"

// Node is a flow element inside a process: an event, task, or gateway.
type Node struct {
	ID   string
	Name string
	Type string
}

// SequenceFlow connects two nodes by their IDs.
type SequenceFlow struct {
	ID        string
	Name      string
	SourceRef string
	TargetRef string
	Condition string
}

// Process is one bpmn:process element with its flow elements.
type Process struct {
	ID           string
	Name         string
	IsExecutable bool
	Nodes        []Node
	Flows        []SequenceFlow
}

// Definitions is the parsed root of a BPMN document.
type Definitions struct {
	Processes []Process
}

// nodeElements are the bpmn:process children treated as flow nodes.
// Everything else (laneSets, documentation, extensionElements) is skipped.
var nodeElements = map[string]bool{
	"startEvent":             true,
	"endEvent":               true,
	"intermediateCatchEvent": true,
	"intermediateThrowEvent": true,
	"boundaryEvent":          true,
	"task":                   true,
	"userTask":               true,
	"serviceTask":            true,
	"scriptTask":             true,
	"sendTask":               true,
	"receiveTask":            true,
	"manualTask":             true,
	"businessRuleTask":       true,
	"callActivity":           true,
	"subProcess":             true,
	"exclusiveGateway":       true,
	"parallelGateway":        true,
	"inclusiveGateway":       true,
	"eventBasedGateway":      true,
	"complexGateway":         true,
}

// Parse decodes BPMN XML into Definitions. It accepts any element prefix as
// long as the namespace matches the BPMN 2.0 model namespace.
func Parse(data []byte) (*Definitions, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	defs := &Definitions{}
	sawDefinitions := false

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errs.ValidationErrorf("invalid XML: %v", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case start.Name.Local == "definitions" && start.Name.Space == modelNamespace:
			sawDefinitions = true
		case start.Name.Local == "process" && start.Name.Space == modelNamespace:
			process, err := parseProcess(decoder, start)
			if err != nil {
				return nil, err
			}
			defs.Processes = append(defs.Processes, *process)
		}
	}

	if !sawDefinitions {
		return nil, errs.ValidationErrorf("not a BPMN document: missing bpmn:definitions root")
	}
	return defs, nil
}

func parseProcess(decoder *xml.Decoder, start xml.StartElement) (*Process, error) {
	process := &Process{
		ID:   attr(start, "id"),
		Name: attr(start, "name"),
	}
	if attr(start, "isExecutable") == "true" {
		process.IsExecutable = true
	}

	depth := 1
	flowIndex := -1
	inCondition := false
	var condition strings.Builder
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return nil, errs.ValidationErrorf("invalid XML inside process %q: %v", process.ID, err)
		}
		switch element := token.(type) {
		case xml.StartElement:
			depth++
			// conditionExpression sits one level inside its sequenceFlow.
			if depth == 3 && flowIndex >= 0 &&
				element.Name.Space == modelNamespace && element.Name.Local == "conditionExpression" {
				inCondition = true
				continue
			}
			if element.Name.Space != modelNamespace || depth != 2 {
				continue
			}
			switch {
			case element.Name.Local == "sequenceFlow":
				process.Flows = append(process.Flows, SequenceFlow{
					ID:        attr(element, "id"),
					Name:      attr(element, "name"),
					SourceRef: attr(element, "sourceRef"),
					TargetRef: attr(element, "targetRef"),
				})
				flowIndex = len(process.Flows) - 1
			case nodeElements[element.Name.Local]:
				process.Nodes = append(process.Nodes, Node{
					ID:   attr(element, "id"),
					Name: attr(element, "name"),
					Type: element.Name.Local,
				})
			}
		case xml.CharData:
			if inCondition {
				condition.Write(element)
			}
		case xml.EndElement:
			depth--
			if inCondition && depth == 2 {
				process.Flows[flowIndex].Condition = strings.TrimSpace(condition.String())
				condition.Reset()
				inCondition = false
			}
			if depth == 1 {
				flowIndex = -1
			}
		}
	}
	return process, nil
}

func attr(element xml.StartElement, name string) string {
	for _, a := range element.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Issue is a single structural problem found during validation.
type Issue struct {
	ProcessID string
	Message   string
}

func (i Issue) String() string {
	if i.ProcessID == "" {
		return i.Message
	}
	return fmt.Sprintf("process %q: %s", i.ProcessID, i.Message)
}

// Validate runs the structural checks on every process and returns the
// issues found. An empty slice means the model is structurally valid.
func Validate(defs *Definitions) []Issue {
	var issues []Issue
	if len(defs.Processes) == 0 {
		return []Issue{{Message: "no process elements found"}}
	}
	for _, process := range defs.Processes {
		issues = append(issues, validateProcess(process)...)
	}
	return issues
}

func validateProcess(process Process) []Issue {
	var issues []Issue
	report := func(format string, args ...any) {
		issues = append(issues, Issue{ProcessID: process.ID, Message: fmt.Sprintf(format, args...)})
	}

	nodes := make(map[string]Node, len(process.Nodes))
	var starts, ends []string
	for _, node := range process.Nodes {
		nodes[node.ID] = node
		switch node.Type {
		case "startEvent":
			starts = append(starts, node.ID)
		case "endEvent":
			ends = append(ends, node.ID)
		}
	}

	if len(starts) == 0 {
		report("no start event")
	}
	if len(ends) == 0 {
		report("no end event")
	}

	// Flows must reference declared nodes; broken references also break the
	// reachability analysis, so they are reported and skipped.
	outgoing := map[string][]string{}
	incoming := map[string][]string{}
	for _, flow := range process.Flows {
		_, sourceOK := nodes[flow.SourceRef]
		_, targetOK := nodes[flow.TargetRef]
		if !sourceOK {
			report("sequence flow %q references unknown source %q", flow.ID, flow.SourceRef)
		}
		if !targetOK {
			report("sequence flow %q references unknown target %q", flow.ID, flow.TargetRef)
		}
		if sourceOK && targetOK {
			outgoing[flow.SourceRef] = append(outgoing[flow.SourceRef], flow.TargetRef)
			incoming[flow.TargetRef] = append(incoming[flow.TargetRef], flow.SourceRef)
		}
	}

	reachable := walk(starts, outgoing)
	reachesEnd := walk(ends, incoming)

	for _, node := range process.Nodes {
		label := node.ID
		if node.Name != "" {
			label = fmt.Sprintf("%s (%s)", node.ID, node.Name)
		}
		connected := len(outgoing[node.ID]) > 0 || len(incoming[node.ID]) > 0
		if !connected && node.Type != "startEvent" && node.Type != "endEvent" {
			report("node %s has no incoming or outgoing flows", label)
			continue
		}
		if len(starts) > 0 && !reachable[node.ID] {
			report("node %s is not reachable from any start event", label)
		}
		if len(ends) > 0 && !reachesEnd[node.ID] {
			report("node %s cannot reach any end event", label)
		}
	}
	return issues
}

// walk does a BFS from the seed nodes over the adjacency map.
func walk(seeds []string, adjacency map[string][]string) map[string]bool {
	visited := make(map[string]bool)
	queue := append([]string(nil), seeds...)
	for _, seed := range seeds {
		visited[seed] = true
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// Report renders a human-readable validation report starting with VALID or
// INVALID.
func Report(defs *Definitions, issues []Issue) string {
	var summary []string
	for _, process := range defs.Processes {
		name := process.ID
		if process.Name != "" {
			name = fmt.Sprintf("%s (%s)", process.ID, process.Name)
		}
		summary = append(summary, fmt.Sprintf("  process %s: %d node(s), %d flow(s), executable: %v",
			name, len(process.Nodes), len(process.Flows), process.IsExecutable))
	}
	if len(issues) == 0 {
		return "VALID: no structural issues found.\n" + strings.Join(summary, "\n")
	}
	lines := []string{fmt.Sprintf("INVALID: %d issue(s) found:", len(issues))}
	for _, issue := range issues {
		lines = append(lines, "  - "+issue.String())
	}
	lines = append(lines, summary...)
	return strings.Join(lines, "\n")
}
