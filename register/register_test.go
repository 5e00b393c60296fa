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

package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/node"
)

func TestRegisterCreateUnknownType(t *testing.T) {
	r := New("builtin")
	_, err := r.Create("n1", "DoesNotExist")
	require.Error(t, err)
	var ute *gferrors.UnknownTypeError
	require.ErrorAs(t, err, &ute)
}

func TestRegisterCreateKnownType(t *testing.T) {
	r := New("builtin")
	r.Add("Int", func(name string) *node.Node { return node.New(name, "builtin", "Int", nil) })

	n, err := r.Create("answer", "Int")
	require.NoError(t, err)
	assert.Equal(t, "answer", n.Name())
	assert.Equal(t, "Int", n.Kind())
}

func TestRegisterAddDuplicateTypePanics(t *testing.T) {
	r := New("builtin")
	r.Add("Int", func(name string) *node.Node { return node.New(name, "builtin", "Int", nil) })
	assert.Panics(t, func() {
		r.Add("Int", func(name string) *node.Node { return node.New(name, "builtin", "Int", nil) })
	})
}

func TestMapCreateAcrossRegisters(t *testing.T) {
	m := NewMap()
	builtin := New("builtin")
	builtin.Add("Int", func(name string) *node.Node { return node.New(name, "builtin", "Int", nil) })
	m.Add(builtin)

	n, err := m.Create("answer", "builtin", "Int")
	require.NoError(t, err)
	assert.Equal(t, "answer", n.Name())

	_, err = m.Create("x", "missing-register", "Int")
	require.Error(t, err)
}
