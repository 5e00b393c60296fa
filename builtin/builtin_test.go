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

package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/register"
	"github.com/geoflow/geoflow/vtype"
)

func testRegisters() *register.Map {
	m := register.NewMap()
	m.Add(NewRegister())
	return m
}

// TestAddTwoNumbers adds two Int literals through a FloatAdd.
func TestAddTwoNumbers(t *testing.T) {
	g := flow.New("add-two-numbers", testRegisters(), nil)

	a, err := g.CreateNamedNode("a", RegisterName, "Int")
	require.NoError(t, err)
	ap, err := a.Param(valueParam)
	require.NoError(t, err)
	require.NoError(t, ap.Set(vtype.NewBox(vtype.Int, int64(3))))

	b, err := g.CreateNamedNode("b", RegisterName, "Int")
	require.NoError(t, err)
	bp, err := b.Param(valueParam)
	require.NoError(t, err)
	require.NoError(t, bp.Set(vtype.NewBox(vtype.Int, int64(4))))

	c, err := g.CreateNamedNode("c", RegisterName, "FloatAdd")
	require.NoError(t, err)

	require.NoError(t, g.Connect("a", "value", "c", "in1"))
	require.NoError(t, g.Connect("b", "value", "c", "in2"))

	_, err = g.RunAll()
	require.NoError(t, err)

	result, err := c.Output("result")
	require.NoError(t, err)
	require.Equal(t, 1, result.Size())
	v, ok := result.Get(0)
	require.True(t, ok)
	require.Equal(t, 7.0, v.Float())
}

// TestGlobalsSubstitution checks a Text node's parameter gets rewritten
// against a graph global before landing on its output.
func TestGlobalsSubstitution(t *testing.T) {
	g := flow.New("globals-substitution", testRegisters(), nil)

	_, err := g.AddGlobal("NAME", "a name to greet", vtype.String, vtype.NewBox(vtype.String, "world"))
	require.NoError(t, err)

	txt, err := g.CreateNamedNode("greeting", RegisterName, "Text")
	require.NoError(t, err)
	p, err := txt.Param(valueParam)
	require.NoError(t, err)
	require.NoError(t, p.Set(vtype.NewBox(vtype.String, "hello {{NAME}}")))

	_, err = g.RunAll()
	require.NoError(t, err)

	out, err := txt.Output(valueParam)
	require.NoError(t, err)
	v, ok := out.Get(0)
	require.True(t, ok)
	require.Equal(t, "hello world", v.Str())
}
