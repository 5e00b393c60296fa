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

import "github.com/geoflow/geoflow/vtype"

// SFI is a single-feature input terminal. It has at most one upstream; a
// second Connect implicitly disconnects the first, so the field is a single
// optional Endpoint rather than a slice.
type SFI struct {
	base
	optional bool
	upstream *Endpoint
}

// NewSFI builds a single-feature input terminal.
func NewSFI(parentName, name string, tags vtype.Set, optional, vector bool) *SFI {
	return &SFI{base: newBase(parentName, name, tags, vector), optional: optional}
}

func (i *SFI) Side() Side     { return In }
func (i *SFI) Family() Family { return Single }

// Optional reports whether the flowchart may leave this input unconnected.
func (i *SFI) Optional() bool { return i.optional }

// Connected reports whether an upstream output is attached.
func (i *SFI) Connected() bool { return i.upstream != nil }

// Upstream returns the connected endpoint, if any.
func (i *SFI) Upstream() (Endpoint, bool) {
	if i.upstream == nil {
		return Endpoint{}, false
	}
	return *i.upstream, true
}

// SetUpstream records ep as the sole upstream, replacing any previous one.
func (i *SFI) SetUpstream(ep Endpoint) { e := ep; i.upstream = &e }

// Clear detaches the upstream, per the SFI Clear() contract in the Input
// interface; disconnection logic that needs to notify the old upstream's
// Downstreams lives in the graph, which holds both ends.
func (i *SFI) Clear() { i.upstream = nil }

// HasData reports whether the connected output currently holds data. An
// unconnected optional input reports false without needing a Resolver call.
func (i *SFI) HasData(r Resolver) bool {
	ep, ok := i.Upstream()
	if !ok {
		return false
	}
	out, ok := r.ResolveOutput(ep)
	return ok && out.HasData()
}

// Size returns the connected output's length, or 0 if unconnected.
func (i *SFI) Size(r Resolver) int {
	ep, ok := i.Upstream()
	if !ok {
		return 0
	}
	out, ok := r.ResolveOutput(ep)
	if !ok {
		return 0
	}
	return out.Size()
}

// GetConnectedType returns the declared tag of the output this input is
// connected to, or false if it isn't connected to anything. A poly-typed
// input uses this to discover, at connect time, which of its several
// accepted tags the upstream actually produces.
func (i *SFI) GetConnectedType(r Resolver) (vtype.Tag, bool) {
	ep, ok := i.Upstream()
	if !ok {
		return "", false
	}
	out, ok := r.ResolveOutput(ep)
	if !ok {
		return "", false
	}
	tags := out.AcceptedTags()
	if len(tags) == 0 {
		return "", false
	}
	return tags[0], true
}

// Get returns the j'th value from the connected output.
func (i *SFI) Get(r Resolver, j int) (vtype.Box, bool) {
	ep, ok := i.Upstream()
	if !ok {
		return vtype.Box{}, false
	}
	out, ok := r.ResolveOutput(ep)
	if !ok {
		return vtype.Box{}, false
	}
	sfo, ok := out.(*SFO)
	if !ok {
		return vtype.Box{}, false
	}
	return sfo.Get(j)
}
