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
	"strings"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/vtype"
)

func tagsString(tags vtype.Set) string {
	ss := make([]string, len(tags))
	for i, t := range tags {
		ss[i] = string(t)
	}
	return strings.Join(ss, "|")
}

// SFO is a single-feature output terminal. It owns an ordered sequence of
// value boxes and a touched flag that process() sets to signal it produced
// data this run, even if that data is an explicit empty box.
type SFO struct {
	base
	data        []vtype.Box
	touched     bool
	downstreams []Endpoint
}

// NewSFO builds a single-feature output terminal.
func NewSFO(parentName, name string, tags vtype.Set, vector bool) *SFO {
	return &SFO{base: newBase(parentName, name, tags, vector)}
}

func (o *SFO) Side() Side     { return Out }
func (o *SFO) Family() Family { return Single }

// PushBack appends a value to the output's sequence. It fails with
// TypeMismatchError if v's tag isn't one the terminal declared.
func (o *SFO) PushBack(v vtype.Box) error {
	if !o.accepts(v.Tag()) {
		return &gferrors.TypeMismatchError{Context: "output " + o.FullName(), Want: tagsString(o.tags), Got: string(v.Tag())}
	}
	o.data = append(o.data, v)
	o.touched = true
	return nil
}

// Set replaces the output's entire sequence with a single value.
func (o *SFO) Set(v vtype.Box) error {
	o.data = nil
	return o.PushBack(v)
}

// Clear empties the output's sequence and resets touched.
func (o *SFO) Clear() {
	o.data = nil
	o.touched = false
}

// Size returns the number of values currently held.
func (o *SFO) Size() int { return len(o.data) }

// Get returns the i'th value, if present.
func (o *SFO) Get(i int) (vtype.Box, bool) {
	if i < 0 || i >= len(o.data) {
		return vtype.Box{}, false
	}
	return o.data[i], true
}

// Data returns the full sequence, in order. Callers must not mutate it.
func (o *SFO) Data() []vtype.Box { return o.data }

// HasData reports whether the output currently holds any values.
func (o *SFO) HasData() bool { return len(o.data) > 0 }

// Touch marks the output as having produced data this run.
func (o *SFO) Touch() { o.touched = true }

// IsTouched reports whether Touch was called since the last Clear.
func (o *SFO) IsTouched() bool { return o.touched }

// Downstreams returns the connected inputs, in the order they were
// connected, so propagation notifies them deterministically.
func (o *SFO) Downstreams() []Endpoint { return o.downstreams }

// AddDownstream appends ep to the downstream list if not already present.
func (o *SFO) AddDownstream(ep Endpoint) {
	for _, d := range o.downstreams {
		if d == ep {
			return
		}
	}
	o.downstreams = append(o.downstreams, ep)
}

// RemoveDownstream removes ep from the downstream list, if present.
func (o *SFO) RemoveDownstream(ep Endpoint) {
	for i, d := range o.downstreams {
		if d == ep {
			o.downstreams = append(o.downstreams[:i], o.downstreams[i+1:]...)
			return
		}
	}
}
