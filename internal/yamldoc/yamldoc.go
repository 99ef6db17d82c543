// Package yamldoc wraps a yaml.v3 node tree with the structural accessors
// the middleware synchronizers need. Edits touch only the nodes they target,
// so comments and key order elsewhere in the file survive a round trip.
package yamldoc

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NotFoundError reports an absent middleware block. Callers recover from it
// by creating the block; every other error from this package is a malformed
// document and must propagate.
type NotFoundError struct {
	Middleware string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("middleware %q not found", e.Middleware)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Document is one parsed YAML file.
type Document struct {
	root *yaml.Node
}

// New returns an empty document.
func New() *Document {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	return &Document{root: &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{m}}}
}

// Parse parses YAML content. An empty file parses to an empty document.
func Parse(content []byte) (*Document, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(content, &n); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if n.Kind == 0 || len(n.Content) == 0 {
		return New(), nil
	}
	return &Document{root: &n}, nil
}

// Bytes serializes the document with 2-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("serialize yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serialize yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) mapping() (*yaml.Node, error) {
	m := d.root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yaml root is not a mapping")
	}
	return m, nil
}

// MapEntry returns the value node for key in a mapping node, or nil.
func MapEntry(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Scalar returns the string value of a scalar node, or "".
func Scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// EnsureMap returns the mapping value for key, creating it when absent.
func EnsureMap(m *yaml.Node, key string) *yaml.Node {
	if v := MapEntry(m, key); v != nil {
		return v
	}
	v := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	return v
}

// EnsureSeq returns the sequence value for key, creating it when absent.
func EnsureSeq(m *yaml.Node, key string) *yaml.Node {
	if v := MapEntry(m, key); v != nil {
		return v
	}
	v := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	return v
}

// EncodeNode marshals v into a fresh yaml node.
func EncodeNode(v any) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("encode yaml node: %w", err)
	}
	return n, nil
}

// FindCustomMiddleware returns the mapping node of the named entry in
// server.customMiddleware. Absence of the server block, the list, or the
// entry is a NotFoundError; a structurally malformed document is not.
func (d *Document) FindCustomMiddleware(name string) (*yaml.Node, error) {
	m, err := d.mapping()
	if err != nil {
		return nil, err
	}
	server := MapEntry(m, "server")
	if server == nil {
		return nil, &NotFoundError{Middleware: name}
	}
	if server.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("server is not a mapping")
	}
	list := MapEntry(server, "customMiddleware")
	if list == nil {
		return nil, &NotFoundError{Middleware: name}
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("server.customMiddleware is not a sequence")
	}
	for _, item := range list.Content {
		if Scalar(MapEntry(item, "name")) == name {
			return item, nil
		}
	}
	return nil, &NotFoundError{Middleware: name}
}

// AddCustomMiddleware appends mw to server.customMiddleware, creating the
// surrounding structure when needed.
func (d *Document) AddCustomMiddleware(mw any) error {
	m, err := d.mapping()
	if err != nil {
		return err
	}
	node, err := EncodeNode(mw)
	if err != nil {
		return err
	}
	server := EnsureMap(m, "server")
	list := EnsureSeq(server, "customMiddleware")
	list.Content = append(list.Content, node)
	return nil
}

// UpdateCustomMiddleware replaces the named entry in place.
func (d *Document) UpdateCustomMiddleware(name string, mw any) error {
	item, err := d.FindCustomMiddleware(name)
	if err != nil {
		return err
	}
	node, err := EncodeNode(mw)
	if err != nil {
		return err
	}
	*item = *node
	return nil
}
