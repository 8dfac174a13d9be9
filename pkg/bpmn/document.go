package bpmn

import (
	"fmt"

	"github.com/beevik/etree"
)

// Namespace URIs used by BPMN 2.0 documents.
const (
	NamespaceModel = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	NamespaceDI    = "http://www.omg.org/spec/BPMN/20100524/DI"
	NamespaceDC    = "http://www.omg.org/spec/DD/20100524/DC"
	NamespaceDDDI  = "http://www.omg.org/spec/DD/20100524/DI"
)

// Elements that need a DI shape.
var nodeTags = []string{
	"task", "userTask", "serviceTask", "manualTask", "scriptTask",
	"sendTask", "receiveTask", "businessRuleTask", "callActivity",
	"subProcess", "startEvent", "endEvent",
	"intermediateThrowEvent", "intermediateCatchEvent", "boundaryEvent",
	"exclusiveGateway", "parallelGateway", "inclusiveGateway", "eventBasedGateway",
	"complexGateway", "gateway",
	"dataObjectReference", "dataStoreReference",
}

// Elements that need a DI edge.
var flowTags = []string{
	"sequenceFlow", "messageFlow",
	"dataOutputAssociation", "dataInputAssociation",
}

// wrapperOpen declares the prefixes a model usually emits for a layout
// fragment, so the fragment parses even when it carries no declarations.
const wrapperOpen = `<temp xmlns="` + NamespaceModel + `" xmlns:bpmndi="` + NamespaceDI +
	`" xmlns:dc="` + NamespaceDC + `" xmlns:di="` + NamespaceDDDI + `">`

const wrapperClose = `</temp>`

func parse(xml string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

func is(e *etree.Element, space, tag string) bool {
	return e.Tag == tag && e.NamespaceURI() == space
}

// descendants returns every element below root (root excluded) in document
// order that matches one of tags in namespace space.
func descendants(root *etree.Element, space string, tags ...string) []*etree.Element {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if _, ok := want[child.Tag]; ok && child.NamespaceURI() == space {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

// CheckCompleteness compares the model elements against the DI section and
// reports one issue per deficit. An empty result means every node has a
// shape and every flow has an edge.
func CheckCompleteness(xml string) []string {
	root, err := parse(xml)
	if err != nil {
		return []string{fmt.Sprintf("XML Parse Error: %v", err)}
	}

	nodes := len(descendants(root, NamespaceModel, nodeTags...))
	flows := len(descendants(root, NamespaceModel, flowTags...))
	shapes := len(descendants(root, NamespaceDI, "BPMNShape"))
	edges := len(descendants(root, NamespaceDI, "BPMNEdge"))

	var issues []string
	if nodes > shapes {
		issues = append(issues, fmt.Sprintf("Missing DI shapes: %d", nodes-shapes))
	}
	if flows > edges {
		issues = append(issues, fmt.Sprintf("Missing DI edges: %d", flows-edges))
	}
	return issues
}

// MergeDiagram replaces the diagram section of model with the BPMNDiagram
// found in fragment. Any failure returns model unchanged.
func MergeDiagram(model, fragment string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(model); err != nil || doc.Root() == nil {
		return model
	}

	definitions := findDefinitions(doc.Root())
	if definitions == nil {
		return model
	}

	wrapper, err := parse(wrapperOpen + fragment + wrapperClose)
	if err != nil {
		return model
	}
	diagram := firstDescendant(wrapper, NamespaceDI, "BPMNDiagram")
	if diagram == nil {
		return model
	}

	for _, old := range definitions.ChildElements() {
		if is(old, NamespaceDI, "BPMNDiagram") {
			definitions.RemoveChild(old)
		}
	}

	declareMissing(diagram, definitions, wrapper)
	diagram.Parent().RemoveChild(diagram)
	definitions.AddChild(diagram)

	var out string
	if definitions == doc.Root() {
		out, err = doc.WriteToString()
	} else {
		out, err = detached(definitions).WriteToString()
	}
	if err != nil {
		return model
	}
	return out
}

func findDefinitions(root *etree.Element) *etree.Element {
	if is(root, NamespaceModel, "definitions") {
		return root
	}
	return firstDescendant(root, NamespaceModel, "definitions")
}

func firstDescendant(root *etree.Element, space, tag string) *etree.Element {
	if found := descendants(root, space, tag); len(found) > 0 {
		return found[0]
	}
	return nil
}

// declareMissing copies the wrapper's namespace declarations onto diagram
// for every prefix that target does not already resolve to the same URI.
func declareMissing(diagram, target, wrapper *etree.Element) {
	for _, attr := range wrapper.Attr {
		prefix, ok := namespacePrefix(attr)
		if !ok || hasOwnDeclaration(diagram, attr) {
			continue
		}
		if resolves(target, prefix) == attr.Value {
			continue
		}
		diagram.CreateAttr(attr.FullKey(), attr.Value)
	}
}

// detached copies e into its own document and carries over the namespace
// declarations it inherited from its ancestors.
func detached(e *etree.Element) *etree.Document {
	root := e.Copy()
	for p := e.Parent(); p != nil; p = p.Parent() {
		for _, attr := range p.Attr {
			if _, ok := namespacePrefix(attr); ok && root.SelectAttr(attr.FullKey()) == nil {
				root.CreateAttr(attr.FullKey(), attr.Value)
			}
		}
	}
	doc := etree.NewDocument()
	doc.SetRoot(root)
	return doc
}

// namespacePrefix reports the prefix declared by attr. The default namespace
// has prefix "".
func namespacePrefix(attr etree.Attr) (string, bool) {
	switch {
	case attr.Space == "" && attr.Key == "xmlns":
		return "", true
	case attr.Space == "xmlns":
		return attr.Key, true
	default:
		return "", false
	}
}

func hasOwnDeclaration(e *etree.Element, decl etree.Attr) bool {
	return e.SelectAttr(decl.FullKey()) != nil
}

// resolves returns the URI bound to prefix at e, or "" when unbound.
func resolves(e *etree.Element, prefix string) string {
	for p := e; p != nil; p = p.Parent() {
		for _, attr := range p.Attr {
			if got, ok := namespacePrefix(attr); ok && got == prefix {
				return attr.Value
			}
		}
	}
	return ""
}
