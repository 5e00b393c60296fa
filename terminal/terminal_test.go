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

package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow/geoflow/vtype"
)

// fakeResolver resolves endpoints against a flat map, standing in for the
// graph in tests that only exercise terminal behaviour.
type fakeResolver struct {
	outputs map[Endpoint]Output
}

func newFakeResolver() *fakeResolver { return &fakeResolver{outputs: map[Endpoint]Output{}} }

func (r *fakeResolver) ResolveOutput(ep Endpoint) (Output, bool) {
	o, ok := r.outputs[ep]
	return o, ok
}

func (r *fakeResolver) ResolveInput(Endpoint) (Input, bool) { return nil, false }

func TestSFOPushBackRejectsWrongTag(t *testing.T) {
	out := NewSFO("n1", "out", vtype.NewSet(vtype.Int), false)
	err := out.PushBack(vtype.NewBox(vtype.String, "x"))
	require.Error(t, err)
	assert.False(t, out.HasData())
}

func TestSFIReadsThroughResolver(t *testing.T) {
	r := newFakeResolver()
	out := NewSFO("n1", "out", vtype.NewSet(vtype.Int), false)
	require.NoError(t, out.PushBack(vtype.NewBox(vtype.Int, int64(7))))
	ep := Endpoint{Node: "n1", Terminal: "out"}
	r.outputs[ep] = out

	in := NewSFI("n2", "in", vtype.NewSet(vtype.Int), false, false)
	assert.False(t, in.HasData(r))
	in.SetUpstream(ep)
	assert.True(t, in.HasData(r))
	assert.Equal(t, 1, in.Size(r))
	v, ok := in.Get(r, 0)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Int())

	in.Clear()
	assert.False(t, in.Connected())
}

func TestMFIFlattensSFOAndMFO(t *testing.T) {
	r := newFakeResolver()

	sfo := NewSFO("n1", "single", vtype.NewSet(vtype.Int), false)
	require.NoError(t, sfo.PushBack(vtype.NewBox(vtype.Int, int64(1))))
	sfoEp := Endpoint{Node: "n1", Terminal: "single"}
	r.outputs[sfoEp] = sfo

	mfo := NewMFO("n2", "multi", vtype.NewSet(vtype.Int), false)
	a, err := mfo.Add("a", vtype.Int)
	require.NoError(t, err)
	require.NoError(t, a.PushBack(vtype.NewBox(vtype.Int, int64(10))))
	b, err := mfo.Add("b", vtype.Int)
	require.NoError(t, err)
	require.NoError(t, b.PushBack(vtype.NewBox(vtype.Int, int64(20))))
	mfoEp := Endpoint{Node: "n2", Terminal: "multi"}
	r.outputs[mfoEp] = mfo
	r.outputs[mfo.Endpoint("a")] = a
	r.outputs[mfo.Endpoint("b")] = b

	in := NewMFI("n3", "poly", vtype.NewSet(vtype.Int), false, false)
	in.AddUpstream(sfoEp)
	in.AddUpstream(mfoEp)

	subs, err := in.SubTerminals(r)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "single", subs[0].Name)
	assert.Equal(t, "a", subs[1].Name)
	assert.Equal(t, "b", subs[2].Name)
	assert.Equal(t, 3, in.NumSubTerminals(r))
	assert.True(t, in.HasData(r))
}

func TestMFICheckEqualLengths(t *testing.T) {
	r := newFakeResolver()

	short := NewSFO("n1", "short", vtype.NewSet(vtype.Int), false)
	require.NoError(t, short.PushBack(vtype.NewBox(vtype.Int, int64(1))))
	shortEp := Endpoint{Node: "n1", Terminal: "short"}
	r.outputs[shortEp] = short

	long := NewSFO("n1", "long", vtype.NewSet(vtype.Int), false)
	require.NoError(t, long.PushBack(vtype.NewBox(vtype.Int, int64(1))))
	require.NoError(t, long.PushBack(vtype.NewBox(vtype.Int, int64(2))))
	longEp := Endpoint{Node: "n1", Terminal: "long"}
	r.outputs[longEp] = long

	in := NewMFI("n2", "poly", vtype.NewSet(vtype.Int), false, false)
	in.AddUpstream(shortEp)
	in.AddUpstream(longEp)

	err := in.CheckEqualLengths(r)
	require.Error(t, err)
	assert.Equal(t, 1, in.Size(r))
}

func TestMFOAssignFromMFI(t *testing.T) {
	r := newFakeResolver()

	sfo := NewSFO("n1", "x", vtype.NewSet(vtype.Int), false)
	require.NoError(t, sfo.PushBack(vtype.NewBox(vtype.Int, int64(5))))
	sfoEp := Endpoint{Node: "n1", Terminal: "x"}
	r.outputs[sfoEp] = sfo

	mfi := NewMFI("n2", "poly", vtype.NewSet(vtype.Int), false, false)
	mfi.AddUpstream(sfoEp)

	mfo := NewMFO("n3", "out", vtype.NewSet(vtype.Int), false)
	require.NoError(t, mfo.AssignFromMFI(r, mfi))

	sub, ok := mfo.Sub("x")
	require.True(t, ok)
	v, ok := sub.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Int())
}

func TestSFODownstreamOrderingIsDeterministic(t *testing.T) {
	out := NewSFO("n1", "out", vtype.NewSet(vtype.Int), false)
	e1 := Endpoint{Node: "a", Terminal: "in"}
	e2 := Endpoint{Node: "b", Terminal: "in"}
	out.AddDownstream(e2)
	out.AddDownstream(e1)
	out.AddDownstream(e2) // duplicate, no-op
	assert.Equal(t, []Endpoint{e2, e1}, out.Downstreams())

	out.RemoveDownstream(e2)
	assert.Equal(t, []Endpoint{e1}, out.Downstreams())
}
