package params

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustGroup(t *testing.T, src string) *Group {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.Equal(t, yaml.DocumentNode, doc.Kind)
	g, ok := GroupOf(doc.Content[0])
	require.True(t, ok, "root is not a mapping")
	return g
}

func encode(t *testing.T, g *Group) string {
	t.Helper()
	out, err := yaml.Marshal(g.YAMLNode())
	require.NoError(t, err)
	return string(out)
}
