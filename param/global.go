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

package param

import "github.com/geoflow/geoflow/vtype"

// Global is a Parameter owned by the Graph and addressable by a unique
// string key. Globals may appear in string parameters as {{NAME}}
// placeholders and may master any number of node parameters whose declared
// tag matches.
type Global struct {
	Parameter
	key string
}

// NewGlobal builds a Global under the given key.
func NewGlobal(key, help string, tag vtype.Tag, initial vtype.Box) (*Global, error) {
	p, err := New(key, help, tag, initial)
	if err != nil {
		return nil, err
	}
	return &Global{Parameter: *p, key: key}, nil
}

// Key returns the global's unique name.
func (g *Global) Key() string { return g.key }
