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
	"fmt"

	"github.com/geoflow/geoflow/vtype"
)

// MFO is a multi-feature output terminal: a named, ordered collection of
// single-feature sub-terminals built up at runtime (e.g. one per attribute
// column a node discovers while processing). The family rule means an MFO
// may only ever connect to an MFI, never to an SFI.
type MFO struct {
	base
	subterminals map[string]*SFO
	order        []string
	touched      bool
	downstreams  []Endpoint
}

// NewMFO builds an empty multi-feature output terminal.
func NewMFO(parentName, name string, tags vtype.Set, vector bool) *MFO {
	return &MFO{base: newBase(parentName, name, tags, vector), subterminals: map[string]*SFO{}}
}

func (o *MFO) Side() Side     { return Out }
func (o *MFO) Family() Family { return Multi }

// Add creates a new named sub-terminal. It fails if the name is already in
// use; tag must be one this MFO declared as acceptable.
func (o *MFO) Add(name string, tag vtype.Tag) (*SFO, error) {
	if !o.accepts(tag) {
		return nil, fmt.Errorf("terminal: %s does not accept tag %s", o.FullName(), tag)
	}
	if _, exists := o.subterminals[name]; exists {
		return nil, fmt.Errorf("terminal: %s already has a sub-terminal named %q", o.FullName(), name)
	}
	sub := NewSFO(o.FullName(), name, NewTagSet(tag), o.vector)
	o.subterminals[name] = sub
	o.order = append(o.order, name)
	o.touched = true
	return sub, nil
}

// NewTagSet is a one-tag convenience wrapper around vtype.NewSet, used when
// a sub-terminal's accepted set is just the single tag it was created with.
func NewTagSet(tag vtype.Tag) vtype.Set { return vtype.NewSet(tag) }

// Sub returns the named sub-terminal, if it exists.
func (o *MFO) Sub(name string) (*SFO, bool) {
	s, ok := o.subterminals[name]
	return s, ok
}

// Order returns the sub-terminal names in creation order.
func (o *MFO) Order() []string { return o.order }

// Endpoint builds the dotted Endpoint a consuming MFI uses to address one of
// this MFO's sub-terminals directly.
func (o *MFO) Endpoint(subname string) Endpoint {
	return Endpoint{Node: o.parentName, Terminal: o.name + "." + subname}
}

// Clear removes every sub-terminal and resets touched, so the next process()
// call rebuilds the output's shape from scratch.
func (o *MFO) Clear() {
	o.subterminals = map[string]*SFO{}
	o.order = nil
	o.touched = false
}

// Size returns the number of sub-terminals currently held.
func (o *MFO) Size() int { return len(o.order) }

// HasData reports whether the output has at least one sub-terminal and every
// sub-terminal currently holds data.
func (o *MFO) HasData() bool {
	if len(o.subterminals) == 0 {
		return false
	}
	for _, name := range o.order {
		if !o.subterminals[name].HasData() {
			return false
		}
	}
	return true
}

func (o *MFO) Touch()         { o.touched = true }
func (o *MFO) IsTouched() bool { return o.touched }

func (o *MFO) Downstreams() []Endpoint { return o.downstreams }

func (o *MFO) AddDownstream(ep Endpoint) {
	for _, d := range o.downstreams {
		if d == ep {
			return
		}
	}
	o.downstreams = append(o.downstreams, ep)
}

func (o *MFO) RemoveDownstream(ep Endpoint) {
	for i, d := range o.downstreams {
		if d == ep {
			o.downstreams = append(o.downstreams[:i], o.downstreams[i+1:]...)
			return
		}
	}
}

// AssignFromMFI copies every sub-terminal's current data vector out of a
// connected MFI's flattened view, under the same sub-terminal names: the
// same whole-terminal copy a multi-feature output's assignment operator
// performs.
func (o *MFO) AssignFromMFI(r Resolver, mfi *MFI) error {
	o.Clear()
	subs, err := mfi.SubTerminals(r)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		out, ok := r.ResolveOutput(sub.Endpoint)
		if !ok {
			continue
		}
		sfo, ok := out.(*SFO)
		if !ok {
			continue
		}
		dst, err := o.Add(sub.Name, sfo.AcceptedTags()[0])
		if err != nil {
			return err
		}
		for _, v := range sfo.Data() {
			if err := dst.PushBack(v); err != nil {
				return err
			}
		}
	}
	return nil
}
