package params

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Group is a nested parameter mapping. It wraps the document's own mapping
// node, so changes made through a Group linked into a document are visible
// in that document.
type Group struct {
	node *yaml.Node
}

// NewGroup returns an empty group that is not linked to any document.
func NewGroup() *Group {
	return &Group{node: &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}}
}

// GroupOf wraps a mapping node. It reports false for any other node kind.
func GroupOf(n *yaml.Node) (*Group, bool) {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, false
	}
	return &Group{node: n}, true
}

// YAMLNode returns the underlying mapping node.
func (g *Group) YAMLNode() *yaml.Node { return g.node }

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.node.Content) / 2 }

// Keys returns the names of the direct children in document order.
func (g *Group) Keys() []string {
	keys := make([]string, 0, g.Len())
	for i := 0; i+1 < len(g.node.Content); i += 2 {
		keys = append(keys, g.node.Content[i].Value)
	}
	return keys
}

// child returns the value node stored under name. The first occurrence wins
// when a key is repeated, matching the order Walk reports them in.
func (g *Group) child(name string) *yaml.Node {
	for i := 0; i+1 < len(g.node.Content); i += 2 {
		if g.node.Content[i].Value == name {
			return g.node.Content[i+1]
		}
	}
	return nil
}

// Child returns the node stored under name classified, or nil.
func (g *Group) Child(name string) Node {
	n := g.child(name)
	if n == nil {
		return nil
	}
	return Classify(n)
}

func (g *Group) lookup(path Path) (*yaml.Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	cur := g
	for i, name := range path {
		n := cur.child(name)
		if n == nil {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path[:i+1])
		}
		if i == len(path)-1 {
			return n, nil
		}
		next, ok := GroupOf(n)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a group", ErrPathNotFound, path[:i+1])
		}
		cur = next
	}
	return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
}

// Get reads the numeric leaf at path.
func (g *Group) Get(path Path) (Value, error) {
	n, err := g.lookup(path)
	if err != nil {
		return Value{}, err
	}
	v, ok := leafValue(Classify(n))
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return v, nil
}

// Set overwrites the numeric leaf at path with v. The leaf keeps its type:
// writing a Float into an IntLeaf, or the reverse, fails with ErrTypeMismatch.
func (g *Group) Set(path Path, v Value) error {
	n, err := g.lookup(path)
	if err != nil {
		return err
	}
	cur, ok := leafValue(Classify(n))
	if !ok {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if cur.Type() != v.Type() {
		return fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, path, cur.Type(), v.Type())
	}

	n.Value = v.String()
	n.Style = 0
	if v.Type() == Int {
		n.Tag = tagInt
	} else {
		n.Tag = tagFloat
	}
	return nil
}
