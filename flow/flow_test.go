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

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/node"
	"github.com/geoflow/geoflow/register"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

// floatSourceHooks emits a single constant value from a "value" parameter.
type floatSourceHooks struct{ node.Base }

func (floatSourceHooks) Process(n *node.Node, r terminal.Resolver) error {
	out, err := n.Output("out")
	if err != nil {
		return err
	}
	p, err := n.Param("value")
	if err != nil {
		return err
	}
	return out.Set(p.Value())
}

// floatAddHooks sums its two single-feature inputs into "result".
type floatAddHooks struct{ node.Base }

func (floatAddHooks) Process(n *node.Node, r terminal.Resolver) error {
	a, err := n.Input("a")
	if err != nil {
		return err
	}
	b, err := n.Input("b")
	if err != nil {
		return err
	}
	out, err := n.Output("result")
	if err != nil {
		return err
	}
	av, _ := a.Get(r, 0)
	bv, _ := b.Get(r, 0)
	return out.Set(vtype.NewBox(vtype.Float, av.Float()+bv.Float()))
}

func testRegisters(t *testing.T) *register.Map {
	t.Helper()
	m := register.NewMap()
	builtin := register.New("builtin")
	builtin.Add("Float", func(name string) *node.Node {
		n := node.New(name, "builtin", "Float", floatSourceHooks{})
		n.AddOutput("out", vtype.NewSet(vtype.Float))
		_, _ = n.AddParam("value", "", vtype.Float, vtype.NewBox(vtype.Float, 0.0))
		return n
	})
	builtin.Add("FloatAdd", func(name string) *node.Node {
		n := node.New(name, "builtin", "FloatAdd", floatAddHooks{})
		n.AddInput("a", vtype.NewSet(vtype.Float), false)
		n.AddInput("b", vtype.NewSet(vtype.Float), false)
		n.AddOutput("result", vtype.NewSet(vtype.Float))
		return n
	})
	m.Add(builtin)
	return m
}

// TestAddTwoNumbers exercises adding two constant Float nodes through a
// FloatAdd node and reading the summed result back out.
func TestAddTwoNumbers(t *testing.T) {
	g := New("add-two-numbers", testRegisters(t), nil)

	a, err := g.CreateNamedNode("a", "builtin", "Float")
	require.NoError(t, err)
	p, _ := a.Param("value")
	require.NoError(t, p.Set(vtype.NewBox(vtype.Float, 2.0)))

	b, err := g.CreateNamedNode("b", "builtin", "Float")
	require.NoError(t, err)
	pb, _ := b.Param("value")
	require.NoError(t, pb.Set(vtype.NewBox(vtype.Float, 3.0)))

	sum, err := g.CreateNamedNode("sum", "builtin", "FloatAdd")
	require.NoError(t, err)

	require.NoError(t, g.Connect("a", "out", "sum", "a"))
	require.NoError(t, g.Connect("b", "out", "sum", "b"))

	count, err := g.RunAll()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	out, err := sum.Output("result")
	require.NoError(t, err)
	v, ok := out.Get(0)
	require.True(t, ok)
	assert.Equal(t, 5.0, v.Float())
}

// TestCycleRejected verifies that feeding a node's own output back into
// one of its own inputs is rejected before it ever corrupts the graph.
func TestCycleRejected(t *testing.T) {
	g := New("cycle", testRegisters(t), nil)

	a, err := g.CreateNamedNode("a", "builtin", "Float")
	require.NoError(t, err)
	_ = a

	sum, err := g.CreateNamedNode("sum", "builtin", "FloatAdd")
	require.NoError(t, err)
	_ = sum

	require.NoError(t, g.Connect("a", "out", "sum", "a"))
	err = g.Connect("sum", "result", "sum", "b")
	require.Error(t, err)
	var cycleErr *gferrors.CycleDetectedError
	assert.ErrorAs(t, err, &cycleErr)
}

// TestClearOnDisconnect verifies that disconnecting an edge clears the
// downstream input's data and invalidates anything computed from it.
func TestClearOnDisconnect(t *testing.T) {
	g := New("clear-on-disconnect", testRegisters(t), nil)

	a, err := g.CreateNamedNode("a", "builtin", "Float")
	require.NoError(t, err)
	p, _ := a.Param("value")
	require.NoError(t, p.Set(vtype.NewBox(vtype.Float, 1.0)))

	b, err := g.CreateNamedNode("b", "builtin", "Float")
	require.NoError(t, err)
	pb, _ := b.Param("value")
	require.NoError(t, pb.Set(vtype.NewBox(vtype.Float, 1.0)))

	sum, err := g.CreateNamedNode("sum", "builtin", "FloatAdd")
	require.NoError(t, err)

	require.NoError(t, g.Connect("a", "out", "sum", "a"))
	require.NoError(t, g.Connect("b", "out", "sum", "b"))
	_, err = g.RunAll()
	require.NoError(t, err)

	out, _ := sum.Output("result")
	require.True(t, out.HasData())

	require.NoError(t, g.Disconnect("a", "out", "sum", "a"))

	sumInputA, err := sum.Input("a")
	require.NoError(t, err)
	assert.False(t, sumInputA.Connected())
	assert.False(t, out.HasData()) // sum was reset by invalidateForward
	assert.Equal(t, node.Waiting, sum.Status())
}

func TestGlobalSubstitution(t *testing.T) {
	g := New("globals", testRegisters(t), nil)
	_, err := g.AddGlobal("NAME", "", vtype.String, vtype.NewBox(vtype.String, "world"))
	require.NoError(t, err)

	out, err := g.SubstituteGlobals("hello {{NAME}}")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	_, err = g.SubstituteGlobals("hello {{MISSING}}")
	require.Error(t, err)
	var notFound *gferrors.GlobalNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
