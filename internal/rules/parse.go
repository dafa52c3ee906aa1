package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse reads a rule file. Each top-level key is a label; its value is one of:
//
//	label: 'docs/**'                      # one {any: [pattern]} group
//	label: ['*.md', '!README.md']         # one {any: [...]} group
//	label:
//	  - any: ['src/**', '!src/**/*_test.go']
//	    all: ['!**/*.txt']
//	  - 'docs/**'                         # bare string: its own {any: [s]} group
//
// Label order follows the document. Anchors are left in place; see Resolve.
func Parse(data []byte) (*RawTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	raw := &RawTable{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return raw, nil
	}

	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: rule file must be a mapping of label to patterns", ErrMalformedRule)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		label := root.Content[i].Value
		groups, err := parseRule(deref(root.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", label, err)
		}
		raw.Rules = append(raw.Rules, Rule{Label: label, Groups: groups})
	}
	return raw, nil
}

// Load parses a rule file and resolves its anchors.
func Load(data []byte) (*Table, error) {
	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Resolve(raw)
}

// LoadFile reads and loads a rule file from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Load(data)
}

func parseRule(n *yaml.Node) ([]Group, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		s, err := scalar(n)
		if err != nil {
			return nil, err
		}
		return []Group{{Any: []string{s}}}, nil

	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return []Group{}, nil
		}
		if onlyScalars(n) {
			patterns, err := scalars(n)
			if err != nil {
				return nil, err
			}
			return []Group{{Any: patterns}}, nil
		}

		groups := make([]Group, 0, len(n.Content))
		for _, item := range n.Content {
			item = deref(item)
			switch item.Kind {
			case yaml.ScalarNode:
				s, err := scalar(item)
				if err != nil {
					return nil, err
				}
				groups = append(groups, Group{Any: []string{s}})
			case yaml.MappingNode:
				g, err := parseGroup(item)
				if err != nil {
					return nil, err
				}
				groups = append(groups, g)
			default:
				return nil, fmt.Errorf("%w: line %d: group must be a string or a mapping", ErrMalformedRule, item.Line)
			}
		}
		return groups, nil
	}

	return nil, fmt.Errorf("%w: line %d: expected a string or a list", ErrMalformedRule, n.Line)
}

func parseGroup(n *yaml.Node) (Group, error) {
	var g Group
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		patterns, err := patternList(deref(n.Content[i+1]))
		if err != nil {
			return Group{}, fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "all":
			g.All = patterns
		case "any":
			g.Any = patterns
		default:
			return Group{}, fmt.Errorf("%w: line %d: unknown key %q, want all or any", ErrMalformedRule, n.Content[i].Line, key)
		}
	}
	if g.All == nil && g.Any == nil {
		return Group{}, fmt.Errorf("%w: line %d: group needs all or any", ErrMalformedRule, n.Line)
	}
	return g, nil
}

// patternList accepts a single string or a list of strings.
func patternList(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		s, err := scalar(n)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	case yaml.SequenceNode:
		if !onlyScalars(n) {
			return nil, fmt.Errorf("%w: line %d: patterns must be strings", ErrMalformedRule, n.Line)
		}
		return scalars(n)
	}
	return nil, fmt.Errorf("%w: line %d: expected a string or a list of strings", ErrMalformedRule, n.Line)
}

func scalar(n *yaml.Node) (string, error) {
	if n.Tag == "!!null" {
		return "", fmt.Errorf("%w: line %d: empty pattern", ErrMalformedRule, n.Line)
	}
	return n.Value, nil
}

func scalars(n *yaml.Node) ([]string, error) {
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := scalar(deref(item))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func onlyScalars(n *yaml.Node) bool {
	for _, item := range n.Content {
		if deref(item).Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

// deref follows YAML aliases (*name) to the node they point at.
func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
