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
	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/vtype"
)

// MFI is a multi-feature input terminal. It may connect to any number of
// outputs (the family rule: any output may feed a multi-feature input); each
// connected SFO contributes itself as one sub-terminal, and each connected
// MFO contributes all of its own sub-terminals, in that output's order. The
// result is the terminal's flattened sub-terminal view.
type MFI struct {
	base
	optional  bool
	upstreams []Endpoint
}

// NewMFI builds a multi-feature input terminal.
func NewMFI(parentName, name string, tags vtype.Set, optional, vector bool) *MFI {
	return &MFI{base: newBase(parentName, name, tags, vector), optional: optional}
}

func (i *MFI) Side() Side     { return In }
func (i *MFI) Family() Family { return Multi }

// Optional reports whether the flowchart may leave this input unconnected.
func (i *MFI) Optional() bool { return i.optional }

// Upstreams returns the directly connected endpoints, in connection order.
// Each may resolve to either an SFO or an MFO.
func (i *MFI) Upstreams() []Endpoint { return append([]Endpoint(nil), i.upstreams...) }

// AddUpstream appends ep if not already present.
func (i *MFI) AddUpstream(ep Endpoint) {
	for _, u := range i.upstreams {
		if u == ep {
			return
		}
	}
	i.upstreams = append(i.upstreams, ep)
}

// RemoveUpstream removes ep, if present.
func (i *MFI) RemoveUpstream(ep Endpoint) {
	for idx, u := range i.upstreams {
		if u == ep {
			i.upstreams = append(i.upstreams[:idx], i.upstreams[idx+1:]...)
			return
		}
	}
}

// Clear detaches every upstream.
func (i *MFI) Clear() { i.upstreams = nil }

// SubTerminalRef names one leaf of the input's flattened sub-terminal view.
type SubTerminalRef struct {
	Name     string
	Endpoint Endpoint
}

// SubTerminals resolves the flattened sub-terminal view: each connected SFO
// contributes itself, each connected MFO contributes its own sub-terminals
// in creation order.
func (i *MFI) SubTerminals(r Resolver) ([]SubTerminalRef, error) {
	var out []SubTerminalRef
	for _, ep := range i.upstreams {
		up, ok := r.ResolveOutput(ep)
		if !ok {
			continue
		}
		switch t := up.(type) {
		case *SFO:
			out = append(out, SubTerminalRef{Name: t.Name(), Endpoint: ep})
		case *MFO:
			for _, name := range t.Order() {
				out = append(out, SubTerminalRef{Name: name, Endpoint: t.Endpoint(name)})
			}
		}
	}
	return out, nil
}

// NumSubTerminals returns the count of flattened sub-terminals: one for
// each connected SFO, plus each connected MFO's number of sub-terminals.
func (i *MFI) NumSubTerminals(r Resolver) int {
	subs, _ := i.SubTerminals(r)
	return len(subs)
}

// Size returns the length of the first connected sub-terminal, which is what
// a nested flowchart's fanout loop uses as its iteration count N, and what
// CheckEqualLengths treats as the expected length for every other
// sub-terminal.
func (i *MFI) Size(r Resolver) int {
	subs, _ := i.SubTerminals(r)
	if len(subs) == 0 {
		return 0
	}
	out, ok := r.ResolveOutput(subs[0].Endpoint)
	if !ok {
		return 0
	}
	return out.Size()
}

// HasData reports whether at least one sub-terminal is connected and every
// connected output currently holds data.
func (i *MFI) HasData(r Resolver) bool {
	subs, _ := i.SubTerminals(r)
	if len(subs) == 0 {
		return false
	}
	seen := map[Endpoint]bool{}
	for _, s := range subs {
		if seen[s.Endpoint] {
			continue
		}
		seen[s.Endpoint] = true
		out, ok := r.ResolveOutput(s.Endpoint)
		if !ok || !out.HasData() {
			return false
		}
	}
	return true
}

// CheckEqualLengths fails fast with MismatchedLengthError when the input's
// connected sub-terminals don't all share the same length, rejecting the
// run before process() ever sees ragged data.
func (i *MFI) CheckEqualLengths(r Resolver) error {
	subs, _ := i.SubTerminals(r)
	if len(subs) == 0 {
		return nil
	}
	want := -1
	for _, s := range subs {
		out, ok := r.ResolveOutput(s.Endpoint)
		if !ok {
			continue
		}
		n := out.Size()
		if want == -1 {
			want = n
			continue
		}
		if n != want {
			return &gferrors.MismatchedLengthError{Terminal: i.FullName()}
		}
	}
	return nil
}
