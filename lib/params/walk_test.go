package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visit struct {
	path string
	node Node
}

func collect(root *Group) []visit {
	var out []visit
	Walk(root, func(p Path, n Node) {
		out = append(out, visit{path: p.String(), node: n})
	})
	return out
}

func TestWalkClassifiesIntAndFloat(t *testing.T) {
	root := mustGroup(t, "x: 5\ny: 0.5\n")

	var paths []Path
	var nodes []Node
	Walk(root, func(p Path, n Node) {
		paths = append(paths, p)
		nodes = append(nodes, n)
	})

	assert.Equal(t, []Path{{"x"}, {"y"}}, paths)
	assert.Equal(t, IntLeaf{Value: 5}, nodes[0])
	assert.Equal(t, FloatLeaf{Value: 0.5}, nodes[1])
}

func TestWalkKeepsDocumentOrder(t *testing.T) {
	root := mustGroup(t, `
zeta: 1
alpha:
  mid: 2.0
  beta: 3
gamma: 4
`)
	got := collect(root)
	require.Len(t, got, 5)

	var order []string
	for _, v := range got {
		order = append(order, v.path)
	}
	assert.Equal(t, []string{"zeta", "alpha", "alpha.mid", "alpha.beta", "gamma"}, order)
	_, isGroup := got[1].node.(*Group)
	assert.True(t, isGroup, "alpha should be reported as a group before its children")
}

func TestWalkReportsUnsupportedNodes(t *testing.T) {
	root := mustGroup(t, `
list: [1, 2, 3]
label: armor
enabled: true
nothing: ~
anchored: &a 3
ref: *a
`)
	kinds := map[string]UnsupportedKind{}
	Walk(root, func(p Path, n Node) {
		if u, ok := n.(Unsupported); ok {
			kinds[p.String()] = u.Kind
		}
	})

	assert.Equal(t, KindSequence, kinds["list"])
	assert.Equal(t, KindString, kinds["label"])
	assert.Equal(t, KindBool, kinds["enabled"])
	assert.Equal(t, KindNull, kinds["nothing"])
	assert.Equal(t, KindAlias, kinds["ref"])
	_, anchoredUnsupported := kinds["anchored"]
	assert.False(t, anchoredUnsupported, "an anchored int is still an int")
}

func TestWalkNilIsNoop(t *testing.T) {
	called := false
	Walk(nil, func(Path, Node) { called = true })
	assert.False(t, called)
}

func TestDescriptorsFlattenNestedGroups(t *testing.T) {
	root := mustGroup(t, `
binary_thres: 100
light:
  min_ratio: 0.1
  max_angle: 40.0
armor:
  min_light_ratio: 0.7
  ids: [1, 2]
`)
	descs, skipped := Descriptors(root)

	require.Len(t, descs, 4)
	assert.Equal(t, Path{"binary_thres"}, descs[0].Path)
	assert.Equal(t, Int, descs[0].Type)
	assert.Equal(t, int64(100), descs[0].Value.Int())

	assert.Equal(t, Path{"light", "min_ratio"}, descs[1].Path)
	assert.Equal(t, Float, descs[1].Type)
	assert.Equal(t, "0.100000", descs[1].Value.String())

	assert.Equal(t, Path{"light", "max_angle"}, descs[2].Path)
	assert.Equal(t, Float, descs[2].Type, "40.0 is written as a float and stays one")

	require.Len(t, skipped, 1)
	assert.Equal(t, Path{"armor", "ids"}, skipped[0].Path)
	assert.Equal(t, KindSequence, skipped[0].Kind)
}

func TestDescriptorsSkipDuplicateKeys(t *testing.T) {
	root := mustGroup(t, `
a: 1
a: 2
g:
  x: 1
g:
  y: 2
`)
	descs, skipped := Descriptors(root)

	require.Len(t, descs, 2)
	assert.Equal(t, "a", descs[0].Path.String())
	assert.Equal(t, int64(1), descs[0].Value.Int())
	assert.Equal(t, "g.x", descs[1].Path.String())

	require.Len(t, skipped, 2)
	assert.Equal(t, KindDuplicate, skipped[0].Kind)
	assert.Equal(t, KindDuplicate, skipped[1].Kind)
}
