package document

import (
	"gopkg.in/yaml.v3"
)

const (
	keyModules         = "modules"
	keyID              = "id"
	keyName            = "name"
	keyConstructorArgs = "constructor_args"
	keyCfg             = "cfg"
)

// Document is an in-memory configuration document.
type Document struct {
	root    *yaml.Node
	warning error
}

// ModuleEntry identifies one entry of the modules list.
type ModuleEntry struct {
	ID   string
	Name string
}

// New returns an empty document.
func New() *Document {
	return &Document{root: emptyRoot()}
}

func emptyRoot() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{newMapping()},
	}
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// Warning returns the ParseWarning recorded while loading, if any.
func (d *Document) Warning() error { return d.warning }

// Root returns the top-level mapping node.
func (d *Document) Root() *yaml.Node { return d.root.Content[0] }

// Modules lists the module entries in document order. Entries that are not
// mappings are left out.
func (d *Document) Modules() []ModuleEntry {
	var out []ModuleEntry
	for _, m := range d.moduleNodes() {
		out = append(out, ModuleEntry{
			ID:   scalarValue(mappingValue(m, keyID)),
			Name: scalarValue(mappingValue(m, keyName)),
		})
	}
	return out
}

func (d *Document) moduleNodes() []*yaml.Node {
	list := mappingValue(d.Root(), keyModules)
	if list == nil || list.Kind != yaml.SequenceNode {
		return nil
	}
	var out []*yaml.Node
	for _, m := range list.Content {
		if m.Kind == yaml.MappingNode {
			out = append(out, m)
		}
	}
	return out
}

// mappingValue returns the value stored under key in a mapping node.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
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

func scalarValue(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return ""
	}
	return n.Value
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
