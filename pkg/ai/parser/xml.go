package parser

import (
	"regexp"
	"strings"
)

var (
	xmlEnvelopePattern = regexp.MustCompile(`(?s)<\?xml.*?>.*</.*?>`)
	definitionsPattern = regexp.MustCompile(`(?s)<(?:[A-Za-z_][\w.-]*:)?definitions\b.*</(?:[A-Za-z_][\w.-]*:)?definitions>`)
	diagramPattern     = regexp.MustCompile(`(?s)<(?:[A-Za-z_][\w.-]*:)?BPMNDiagram\b.*?</(?:[A-Za-z_][\w.-]*:)?BPMNDiagram>`)
)

// ExtractXMLModel pulls a BPMN model out of a model response. It prefers a
// full <?xml?> envelope, then a bare definitions element, and finally falls
// back to the trimmed response. The result may still be invalid XML.
func ExtractXMLModel(response string) string {
	if m := xmlEnvelopePattern.FindString(response); m != "" {
		return m
	}
	if m := definitionsPattern.FindString(response); m != "" {
		return m
	}
	return strings.TrimSpace(response)
}

// ExtractDiagram returns the first BPMNDiagram fragment in response, or ""
// when the model produced no layout.
func ExtractDiagram(response string) string {
	return diagramPattern.FindString(response)
}
