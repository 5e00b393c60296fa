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

// Package vtype implements the closed type-tag registry and the opaque
// value box that terminals and parameters carry at runtime.
package vtype

import "sync"

// Tag names the runtime type of a value. The primitive tags form a closed
// set; node implementations may additionally register opaque domain tags
// (e.g. a geometry or feature-collection type) through RegisterOpaqueTag.
type Tag string

// The closed registry of primitive tags.
const (
	Bool     Tag = "bool"
	Int      Tag = "int"
	Float    Tag = "float"
	String   Tag = "string"
	Date     Tag = "date"
	Time     Tag = "time"
	DateTime Tag = "datetime"
)

var primitiveTags = map[Tag]bool{
	Bool:     true,
	Int:      true,
	Float:    true,
	String:   true,
	Date:     true,
	Time:     true,
	DateTime: true,
}

var (
	opaqueMu   sync.RWMutex
	opaqueTags = map[Tag]bool{}
)

// RegisterOpaqueTag adds a plugin-defined tag to the registry. It is a no-op
// if the tag is already a primitive or already registered. Node registers
// call this during init, the same way the engine's register construction
// step runs before any flowchart is loaded.
func RegisterOpaqueTag(tag Tag) {
	if primitiveTags[tag] {
		return
	}
	opaqueMu.Lock()
	defer opaqueMu.Unlock()
	opaqueTags[tag] = true
}

// IsRegistered reports whether tag is a known primitive or a registered
// opaque tag.
func IsRegistered(tag Tag) bool {
	if primitiveTags[tag] {
		return true
	}
	opaqueMu.RLock()
	defer opaqueMu.RUnlock()
	return opaqueTags[tag]
}

// Set is a non-empty ordered collection of tags declared by a terminal. The
// order is preserved only for deterministic stringification; membership is
// what matters for compatibility checks.
type Set []Tag

// NewSet builds a Set from one or more tags. It panics if called with no
// tags: a terminal's accepted-tag set is required to be non-empty.
func NewSet(tags ...Tag) Set {
	if len(tags) == 0 {
		panic("vtype: a terminal's accepted tag set must not be empty")
	}
	out := make(Set, len(tags))
	copy(out, tags)
	return out
}

// Accepts reports whether tag is a member of the set.
func (s Set) Accepts(tag Tag) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// Compatible implements the output/input tag-subset rule: every tag the
// output declares must be accepted by the input.
func Compatible(out, in Set) bool {
	for _, t := range out {
		if !in.Accepts(t) {
			return false
		}
	}
	return true
}
