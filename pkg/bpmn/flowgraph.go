package bpmn

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const flowGraphParseError = "graph TD\n    Error[Parse error]"

// FlowGraph renders a mermaid flowchart of the process: one node per
// start/end event, task and gateway and one edge per sequence flow. It is a
// preview only and ignores everything else in the model.
func FlowGraph(xml string) string {
	root, err := parse(xml)
	if err != nil {
		return flowGraphParseError
	}

	lines := []string{"graph TD"}
	node := func(tags []string, defID, defName string, format func(id, name string) string) {
		for _, e := range descendants(root, NamespaceModel, tags...) {
			id := e.SelectAttrValue("id", defID)
			name := e.SelectAttrValue("name", defName)
			lines = append(lines, "    "+format(id, name))
		}
	}
	circle := func(id, name string) string { return fmt.Sprintf("%s(((%s)))", id, name) }
	box := func(id, name string) string {
		return fmt.Sprintf(`%s["%s"]`, id, strings.ReplaceAll(name, `"`, "'"))
	}
	diamond := func(id, name string) string { return fmt.Sprintf("%s{%s}", id, name) }

	node([]string{"startEvent"}, "start", "Start", circle)
	node([]string{"endEvent"}, "end", "End", circle)
	for _, tag := range []string{"task", "userTask", "serviceTask"} {
		node([]string{tag}, "task", "Task", box)
	}
	node([]string{"exclusiveGateway"}, "gateway", "X", diamond)
	node([]string{"parallelGateway"}, "gateway", "+", diamond)

	for _, flow := range descendants(root, NamespaceModel, "sequenceFlow") {
		lines = append(lines, edge(flow)...)
	}
	return strings.Join(lines, "\n")
}

func edge(flow *etree.Element) []string {
	source := flow.SelectAttrValue("sourceRef", "")
	target := flow.SelectAttrValue("targetRef", "")
	if source == "" || target == "" {
		return nil
	}
	if name := flow.SelectAttrValue("name", ""); name != "" {
		return []string{fmt.Sprintf("    %s -->|%s| %s", source, name, target)}
	}
	return []string{fmt.Sprintf("    %s --> %s", source, target)}
}
