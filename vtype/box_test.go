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

package vtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxStringForms(t *testing.T) {
	cases := []struct {
		box  Box
		want string
	}{
		{NewBox(Bool, true), "true"},
		{NewBox(Bool, false), "false"},
		{NewBox(Int, int64(7)), "7"},
		{NewBox(Float, 3.5), "3.5"},
		{NewBox(String, "world"), "world"},
		{EmptyBox(Int), ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.box.String())
	}
}

func TestBoxWrongTagPanics(t *testing.T) {
	b := NewBox(Int, int64(3))
	assert.Panics(t, func() { b.Bool() })
	assert.Panics(t, func() { EmptyBox(Int).Int() })
}

func TestCompatible(t *testing.T) {
	out := NewSet(Int)
	in := NewSet(Int, Float)
	require.True(t, Compatible(out, in))

	out2 := NewSet(Int, String)
	require.False(t, Compatible(out2, in))
}

func TestOpaqueTagRegistry(t *testing.T) {
	tag := Tag("geoflow.test.geometry")
	assert.False(t, IsRegistered(tag))
	RegisterOpaqueTag(tag)
	assert.True(t, IsRegistered(tag))
}
