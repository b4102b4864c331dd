package params

import (
	"gopkg.in/yaml.v3"
)

// Node is one classified node of a parameter tree.
type Node interface {
	isNode()
}

// UnsupportedKind names why a node cannot be edited.
type UnsupportedKind string

const (
	KindSequence  UnsupportedKind = "sequence"
	KindString    UnsupportedKind = "string"
	KindBool      UnsupportedKind = "bool"
	KindNull      UnsupportedKind = "null"
	KindAlias     UnsupportedKind = "alias"
	KindDuplicate UnsupportedKind = "duplicate"
	KindUnknown   UnsupportedKind = "unknown"
)

// IntLeaf is an integer parameter.
type IntLeaf struct {
	Value int64
}

// FloatLeaf is a real-valued parameter.
type FloatLeaf struct {
	Value float64
}

// Unsupported is a node that is reported but never editable.
type Unsupported struct {
	Kind UnsupportedKind
}

func (*Group) isNode()      {}
func (IntLeaf) isNode()     {}
func (FloatLeaf) isNode()   {}
func (Unsupported) isNode() {}

const (
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagStr   = "!!str"
	tagBool  = "!!bool"
	tagNull  = "!!null"
	tagMap   = "!!map"
)

// Classify decides the variant of a document node. It is the only place that
// inspects the YAML representation of a parameter.
func Classify(n *yaml.Node) Node {
	if n == nil {
		return Unsupported{Kind: KindNull}
	}
	switch n.Kind {
	case yaml.MappingNode:
		return &Group{node: n}
	case yaml.SequenceNode:
		return Unsupported{Kind: KindSequence}
	case yaml.AliasNode:
		// Writing through an alias would silently edit its anchor too.
		return Unsupported{Kind: KindAlias}
	case yaml.ScalarNode:
		return classifyScalar(n)
	}
	return Unsupported{Kind: KindUnknown}
}

func classifyScalar(n *yaml.Node) Node {
	switch n.ShortTag() {
	case tagInt:
		var v int64
		if err := n.Decode(&v); err != nil {
			return Unsupported{Kind: KindUnknown}
		}
		return IntLeaf{Value: v}
	case tagFloat:
		var v float64
		if err := n.Decode(&v); err != nil {
			return Unsupported{Kind: KindUnknown}
		}
		return FloatLeaf{Value: v}
	case tagStr:
		return Unsupported{Kind: KindString}
	case tagBool:
		return Unsupported{Kind: KindBool}
	case tagNull:
		return Unsupported{Kind: KindNull}
	}
	return Unsupported{Kind: KindUnknown}
}

// leafValue converts a classified leaf into a Value.
func leafValue(n Node) (Value, bool) {
	switch leaf := n.(type) {
	case IntLeaf:
		return IntValue(leaf.Value), true
	case FloatLeaf:
		return FloatValue(leaf.Value), true
	}
	return Value{}, false
}
