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

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

type fakeResolver struct {
	outputs map[terminal.Endpoint]terminal.Output
}

func (r *fakeResolver) ResolveOutput(ep terminal.Endpoint) (terminal.Output, bool) {
	o, ok := r.outputs[ep]
	return o, ok
}
func (r *fakeResolver) ResolveInput(terminal.Endpoint) (terminal.Input, bool) { return nil, false }

func TestNodeIsRootIsLeaf(t *testing.T) {
	n := New("src", "builtin", "Int", nil)
	assert.True(t, n.IsRoot())
	n.AddOutput("value", vtype.NewSet(vtype.Int))
	assert.True(t, n.IsRoot())
	assert.False(t, n.IsLeaf())

	m := New("sink", "builtin", "Print", nil)
	m.AddInput("in", vtype.NewSet(vtype.Int), false)
	assert.False(t, m.IsRoot())
	assert.True(t, m.IsLeaf())
}

func TestNodeUpdateStatusWaitsOnUnconnectedRequiredInput(t *testing.T) {
	n := New("add", "builtin", "FloatAdd", nil)
	n.AddInput("a", vtype.NewSet(vtype.Float), false)
	n.AddInput("b", vtype.NewSet(vtype.Float), false)
	n.AddOutput("result", vtype.NewSet(vtype.Float))

	r := &fakeResolver{outputs: map[terminal.Endpoint]terminal.Output{}}
	n.UpdateStatus(r)
	assert.Equal(t, Waiting, n.Status())
}

func TestNodeUpdateStatusReadyWhenInputsSatisfied(t *testing.T) {
	n := New("add", "builtin", "FloatAdd", nil)
	aIn := n.AddInput("a", vtype.NewSet(vtype.Float), false)
	bIn := n.AddInput("b", vtype.NewSet(vtype.Float), true) // optional
	n.AddOutput("result", vtype.NewSet(vtype.Float))
	_ = bIn

	src := terminal.NewSFO("srcnode", "out", vtype.NewSet(vtype.Float), false)
	require.NoError(t, src.PushBack(vtype.NewBox(vtype.Float, 1.5)))
	ep := terminal.Endpoint{Node: "srcnode", Terminal: "out"}

	r := &fakeResolver{outputs: map[terminal.Endpoint]terminal.Output{ep: src}}
	aIn.SetUpstream(ep)

	n.UpdateStatus(r)
	assert.Equal(t, Ready, n.Status())
}

func TestNodeResetClearsOutputsAndCallsOnClear(t *testing.T) {
	calls := 0
	hooks := &trackingHooks{Base: Base{}, onClear: func() { calls++ }}
	n := New("n", "builtin", "Int", hooks)
	out := n.AddOutput("value", vtype.NewSet(vtype.Int))
	require.NoError(t, out.PushBack(vtype.NewBox(vtype.Int, int64(1))))
	out.Touch()

	n.Reset()
	assert.Equal(t, Waiting, n.Status())
	assert.False(t, out.HasData())
	assert.False(t, out.IsTouched())
	assert.Equal(t, 1, calls)
}

func TestNodeStatusTransitionsPanicOutOfOrder(t *testing.T) {
	n := New("n", "builtin", "Int", nil)
	assert.Panics(t, func() { n.BeginProcessing() })
}

type trackingHooks struct {
	Base
	onClear func()
}

func (h *trackingHooks) OnClear(n *Node) {
	if h.onClear != nil {
		h.onClear()
	}
}
