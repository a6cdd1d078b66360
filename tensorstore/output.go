package tensorstore

import (
	"bytes"

	json "github.com/goccy/go-json"
	g "github.com/reoring/tsspec/dsl"
	js "github.com/reoring/tsspec/jsonschema"
	"gopkg.in/yaml.v3"
)

// ToJSON renders a model as JSON with members in declaration order. A
// non-empty indent pretty-prints.
func ToJSON(m *g.Model, indent string) ([]byte, error) {
	b, err := m.MarshalJSON()
	if err != nil || indent == "" {
		return b, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToYAML renders a model as block-style YAML with members in declaration
// order.
func ToYAML(m *g.Model) ([]byte, error) {
	b, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	return yaml.Marshal(&doc)
}

// blockStyle clears the flow and quoting styles JSON input leaves on every
// node; the encoder still quotes strings that would read back as another
// type. Lists of scalars stay inline.
func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	if n.Kind == yaml.SequenceNode && scalars(n.Content) {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func scalars(nodes []*yaml.Node) bool {
	for _, c := range nodes {
		if c.Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

// JSONSchema projects a registered category onto JSON Schema.
func JSONSchema(category string) (*js.Schema, error) {
	cat, ok := Registry.Category(category)
	if !ok {
		return nil, &g.UnknownCategoryError{Name: category, Known: Registry.Names()}
	}
	return cat.JSONSchema(), nil
}
