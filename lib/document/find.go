package document

import (
	"fmt"

	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/params"
	"gopkg.in/yaml.v3"
)

// FindModuleSubtree returns the parameter group of a module, searching first
// by id across every entry, then by name when moduleName is not empty.
//
// The bool result reports whether the group is linked into doc. When no
// module matches, a fresh empty group is returned that is not part of the
// document; edits made through it will not be saved. When a module matches
// but has no `constructor_args.cfg` (or it is null), an empty mapping is
// created and linked so later edits persist.
func FindModuleSubtree(doc *Document, moduleID, moduleName string) (*params.Group, bool) {
	entry := findModule(doc, moduleID, moduleName)
	if entry == nil {
		log.WithFields(logger.Fields{
			"at":         "document.FindModuleSubtree",
			"moduleID":   moduleID,
			"moduleName": moduleName,
		}).Warn("module_not_found_edits_will_not_persist")
		return params.NewGroup(), false
	}

	cfg, err := linkCfg(entry)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":       "document.FindModuleSubtree",
			"moduleID": moduleID,
			"reason":   err.Error(),
		}).Warn("module_cfg_not_linkable_edits_will_not_persist")
		return params.NewGroup(), false
	}

	g, _ := params.GroupOf(cfg)
	return g, true
}

func findModule(doc *Document, moduleID, moduleName string) *yaml.Node {
	modules := doc.moduleNodes()
	for _, m := range modules {
		if scalarValue(mappingValue(m, keyID)) == moduleID && moduleID != "" {
			return m
		}
	}
	if moduleName == "" {
		return nil
	}
	for _, m := range modules {
		if scalarValue(mappingValue(m, keyName)) == moduleName {
			return m
		}
	}
	return nil
}

func linkCfg(entry *yaml.Node) (*yaml.Node, error) {
	args, err := ensureMapping(entry, keyConstructorArgs)
	if err != nil {
		return nil, err
	}
	return ensureMapping(args, keyCfg)
}

// ensureMapping returns the mapping under key, creating it when the key is
// absent or null. Any other existing value is left alone.
func ensureMapping(parent *yaml.Node, key string) (*yaml.Node, error) {
	v := mappingValue(parent, key)
	switch {
	case v == nil:
		v = newMapping()
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
		return v, nil
	case v.Kind == yaml.MappingNode:
		return v, nil
	case isNull(v):
		v.Kind = yaml.MappingNode
		v.Tag = "!!map"
		v.Value = ""
		v.Style = 0
		v.Content = nil
		return v, nil
	default:
		return nil, fmt.Errorf("%s holds a %s, not a mapping", key, v.ShortTag())
	}
}
