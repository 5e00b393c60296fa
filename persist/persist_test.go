// Geoflow
// Copyright (C) 2013-2026+ the Geoflow project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/node"
	"github.com/geoflow/geoflow/register"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

func testRegisters() *register.Map {
	m := register.NewMap()
	builtin := register.New("builtin")
	builtin.Add("Float", func(name string) *node.Node {
		n := node.New(name, "builtin", "Float", node.Base{})
		n.AddOutput("out", vtype.NewSet(vtype.Float))
		_, _ = n.AddParam("value", "a constant", vtype.Float, vtype.NewBox(vtype.Float, 0.0))
		return n
	})
	builtin.Add("FloatAdd", func(name string) *node.Node {
		n := node.New(name, "builtin", "FloatAdd", node.Base{})
		n.AddInput("a", vtype.NewSet(vtype.Float), false)
		n.AddInput("b", vtype.NewSet(vtype.Float), false)
		n.AddOutput("result", vtype.NewSet(vtype.Float))
		return n
	})
	m.Add(builtin)
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := flow.New("rt", testRegisters(), nil)

	_, err := g.AddGlobal("SCALE", "a scale factor", vtype.Float, vtype.NewBox(vtype.Float, 2.5))
	require.NoError(t, err)

	a, err := g.CreateNamedNode("a", "builtin", "Float")
	require.NoError(t, err)
	p, _ := a.Param("value")
	require.NoError(t, p.Set(vtype.NewBox(vtype.Float, 1.0)))

	b, err := g.CreateNamedNode("b", "builtin", "Float")
	require.NoError(t, err)
	bp, _ := b.Param("value")
	global, err := g.Global("SCALE")
	require.NoError(t, err)
	require.NoError(t, bp.SetMaster(global))

	sum, err := g.CreateNamedNode("sum", "builtin", "FloatAdd")
	require.NoError(t, err)
	require.NoError(t, g.Connect("a", "out", "sum", "a"))
	require.NoError(t, g.Connect("b", "out", "sum", "b"))

	aOut, err := a.Output("out")
	require.NoError(t, err)
	aOut.SetMarked(true)

	data, err := Save(g)
	require.NoError(t, err)

	g2 := flow.New("rt", testRegisters(), nil)
	require.NoError(t, Load(data, g2, Strict))

	a2, err := g2.Node("a")
	require.NoError(t, err)
	p2, err := a2.Param("value")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p2.Value().Float())

	b2, err := g2.Node("b")
	require.NoError(t, err)
	bp2, err := b2.Param("value")
	require.NoError(t, err)
	require.NotNil(t, bp2.Master())
	assert.Equal(t, "SCALE", bp2.Master().Key())

	sum2, err := g2.Node("sum")
	require.NoError(t, err)
	sumIn, err := sum2.Input("a")
	require.NoError(t, err)
	up, ok := sumIn.Upstream()
	require.True(t, ok)
	assert.Equal(t, terminal.Endpoint{Node: "a", Terminal: "out"}, up)

	aOut2, err := a2.Output("out")
	require.NoError(t, err)
	assert.True(t, aOut2.Marked())
}

func TestLoadLegacyGlobalEncoding(t *testing.T) {
	doc := `{"globals": {"NAME": ["str", "hello"]}, "nodes": {}}`
	g := flow.New("legacy", testRegisters(), nil)
	require.NoError(t, Load([]byte(doc), g, Strict))

	global, err := g.Global("NAME")
	require.NoError(t, err)
	assert.Equal(t, vtype.String, global.Tag())
	assert.Equal(t, "hello", global.Value().Str())
}

func TestLoadStrictFailsOnUnknownNode(t *testing.T) {
	doc := `{"nodes": {"x": {"type": ["builtin", "DoesNotExist"], "position": [0,0]}}}`
	g := flow.New("strict", testRegisters(), nil)
	err := Load([]byte(doc), g, Strict)
	require.Error(t, err)
}

func TestLoadYAMLEquivalentToJSON(t *testing.T) {
	doc := `
globals:
  NAME: ["a greeting target", "str", "world"]
nodes:
  a:
    type: ["builtin", "Float"]
    position: [0, 0]
    parameters:
      value: 5
`
	g := flow.New("yaml", testRegisters(), nil)
	require.NoError(t, LoadYAML([]byte(doc), g, Strict))

	a, err := g.Node("a")
	require.NoError(t, err)
	p, err := a.Param("value")
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.Value().Float())

	global, err := g.Global("NAME")
	require.NoError(t, err)
	assert.Equal(t, "world", global.Value().Str())
}

func TestLoadLenientSkipsUnknownNode(t *testing.T) {
	doc := `{"nodes": {
		"x": {"type": ["builtin", "DoesNotExist"], "position": [0,0]},
		"a": {"type": ["builtin", "Float"], "position": [0,0]}
	}}`
	g := flow.New("lenient", testRegisters(), nil)
	err := Load([]byte(doc), g, Lenient)
	assert.Error(t, err) // accumulated, non-nil, but load still proceeded
	_, err = g.Node("a")
	assert.NoError(t, err)
	_, err = g.Node("x")
	assert.Error(t, err)
}
