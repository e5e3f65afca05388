package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/arbor/internal/errs"
)

// ReadDocument parses a configuration file into its raw node tree for
// read-modify-write edits that preserve unrelated content and ordering.
func ReadDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config("unable to read %s: %v", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Config("invalid configuration document %s: %v", path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errs.Config("invalid configuration %s: top level is not a mapping", path)
	}
	return &doc, nil
}

// WriteDocument serializes a node tree back to disk.
func WriteDocument(doc *yaml.Node, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errs.Config("unable to serialize %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Config("unable to write %s: %v", path, err)
	}
	return nil
}

// EnsureMapping returns the mapping stored under key in the document's
// top-level mapping, creating an empty one when absent.
func EnsureMapping(doc *yaml.Node, key string) *yaml.Node {
	root := doc.Content[0]
	if existing := MappingEntry(root, key); existing != nil {
		return existing
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	valueNode := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content, keyNode, valueNode)
	return valueNode
}

// MappingEntry returns the value node stored under key, or nil.
func MappingEntry(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// SetMappingEntry replaces the value under key, appending the pair when the
// key is new.
func SetMappingEntry(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	mapping.Content = append(mapping.Content, keyNode, value)
}

// ScalarNode creates a scalar value node.
func ScalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

// BoolNode creates a boolean value node.
func BoolNode(value bool) *yaml.Node {
	text := "false"
	if value {
		text = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: text}
}
