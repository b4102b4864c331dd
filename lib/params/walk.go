package params

import (
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Visitor is called once per node with the node's path from the walk root.
type Visitor func(path Path, n Node)

// Walk visits every node below root depth first, in the order the keys appear
// in the document. A group is reported before its children. Keys are never
// sorted.
func Walk(root *Group, visit Visitor) {
	if root == nil || visit == nil {
		return
	}
	walkGroup(root, nil, visit)
}

func walkGroup(g *Group, prefix Path, visit Visitor) {
	content := g.node.Content
	for i := 0; i+1 < len(content); i += 2 {
		path := prefix.Child(content[i].Value)
		n := Classify(content[i+1])
		visit(path, n)
		if sub, ok := n.(*Group); ok {
			walkGroup(sub, path, visit)
		}
	}
}

// Descriptor is an editable leaf as handed to an editing surface.
type Descriptor struct {
	Path  Path
	Value Value
	Type  LeafType
}

// Skipped is a node that Descriptors did not turn into a descriptor.
type Skipped struct {
	Path Path
	Kind UnsupportedKind
}

// Descriptors flattens root into its editable leaves in walk order. Nodes
// that cannot be edited are returned separately. A path that repeats an
// earlier one (a duplicated mapping key) is skipped, so every returned path
// is unique within root.
func Descriptors(root *Group) ([]Descriptor, []Skipped) {
	var (
		descs   []Descriptor
		skipped []Skipped
		seen    = make(map[string]struct{})
		dead    = make(map[string]struct{})
	)
	Walk(root, func(path Path, n Node) {
		key := path.String()
		if _, under := dead[path[:len(path)-1].String()]; under && len(path) > 1 {
			if _, ok := n.(*Group); ok {
				dead[key] = struct{}{}
			}
			return
		}
		if _, dup := seen[key]; dup {
			if _, ok := n.(*Group); ok {
				dead[key] = struct{}{}
			}
			log.WithFields(logger.Fields{
				"at":   "params.Descriptors",
				"path": key,
			}).Warn("duplicate_parameter_path")
			skipped = append(skipped, Skipped{Path: path, Kind: KindDuplicate})
			return
		}
		seen[key] = struct{}{}

		switch leaf := n.(type) {
		case *Group:
		case Unsupported:
			skipped = append(skipped, Skipped{Path: path, Kind: leaf.Kind})
		default:
			v, _ := leafValue(n)
			descs = append(descs, Descriptor{Path: path, Value: v, Type: v.Type()})
		}
	})
	return descs, skipped
}
