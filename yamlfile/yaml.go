// Package yamlfile parses YAML translation files into flat key→entry
// maps.
//
// The expected file shape is a nested mapping with string leaf values:
//
//	greeting: Hello
//	nav:
//	  home: Home
//	  about: About
//
// Rails i18n style (the locale as a single top-level key) is also
// supported; the wrapping locale key does not contribute to key paths:
//
//	en:
//	  greeting: Hello
//
// Offsets are derived from yaml.v3 node line/column positions mapped
// through a line-start table. They are line-accurate, not exact —
// navigation consumers must tolerate small drift within the line.
package yamlfile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/transkit/transkit/locale"
	"github.com/transkit/transkit/translation"
)

// Parse flattens YAML data into relative-key → entry. Malformed input
// yields an empty map, never an error.
func Parse(data []byte, prefix, loc, path string) map[string]translation.Entry {
	out := make(map[string]translation.Entry)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return out
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return out
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return out
	}

	// Rails i18n style: a single top-level locale key wraps the tree.
	if len(root.Content) == 2 {
		keyNode, valNode := root.Content[0], root.Content[1]
		if keyNode.Kind == yaml.ScalarNode && valNode.Kind == yaml.MappingNode && locale.IsLocale(keyNode.Value) {
			root = valNode
		}
	}

	lines := lineStarts(data)
	collect(root, "", prefix, loc, path, lines, out)
	return out
}

// collect recursively walks a mapping node and records string leaves.
func collect(node *yaml.Node, rel, prefix, loc, path string, lines []int, out map[string]translation.Entry) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		childRel := keyNode.Value
		if rel != "" {
			childRel = rel + "." + childRel
		}

		switch valNode.Kind {
		case yaml.MappingNode:
			collect(valNode, childRel, prefix, loc, path, lines, out)
		case yaml.ScalarNode:
			// Only string scalars are translations — skip null, bool,
			// int, float. Untagged plain scalars resolve to !!str.
			switch valNode.Tag {
			case "!!bool", "!!int", "!!float", "!!null", "!!timestamp":
				continue
			}
			out[childRel] = translation.Entry{
				Key:    prefix + childRel,
				Value:  valNode.Value,
				Locale: loc,
				Path:   path,
				Offset: nodeOffset(keyNode, lines),
				Length: len(keyNode.Value),
			}
		}
	}
}

// lineStarts returns the byte offset of each line's first character.
func lineStarts(data []byte) []int {
	starts := []int{0}
	for i, c := range data {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// nodeOffset converts a node's 1-based line/column into a byte offset.
// Column counts runes, so multi-byte content earlier on the line shifts
// the result — hence the line-accurate-only contract.
func nodeOffset(n *yaml.Node, lines []int) int {
	if n.Line <= 0 || n.Line > len(lines) {
		return 0
	}
	return lines[n.Line-1] + n.Column - 1
}

// InsertKey inserts a new leaf under relKey, creating intermediate
// mappings as needed, and returns the rewritten file plus the offset of
// the inserted value's key for caret placement. The document is
// re-serialized by yaml.v3; comments survive through the node model.
func InsertKey(data []byte, relKey, value string) ([]byte, int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, 0, fmt.Errorf("YAML root must be a mapping, got kind %d", root.Kind)
	}

	node := root
	segs := strings.Split(relKey, ".")
	for _, seg := range segs[:len(segs)-1] {
		node = childMapping(node, seg)
	}

	leaf := segs[len(segs)-1]
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: leaf},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, 0, fmt.Errorf("writing YAML: %w", err)
	}

	caret := strings.LastIndex(string(out), leaf+":")
	if caret < 0 {
		caret = 0
	}
	return out, caret, nil
}

// childMapping returns the mapping under key, creating it when absent.
func childMapping(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key && node.Content[i+1].Kind == yaml.MappingNode {
			return node.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		child,
	)
	return child
}
