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
	"fmt"
	"strconv"
)

// Box pairs a type tag with an opaque payload. Engine code never inspects
// the payload directly; it is unpacked by nodes through the typed accessors
// below, keyed on the tag the box carries. An access through the wrong
// accessor is a programmer error and panics, per the engine's error model:
// tag mismatches at the terminal/parameter boundary are caught earlier as
// ordinary errors, so a mismatch here means the caller didn't check.
type Box struct {
	tag     Tag
	payload interface{}
	absent  bool
}

// NewBox wraps a value under the given tag.
func NewBox(tag Tag, payload interface{}) Box {
	return Box{tag: tag, payload: payload}
}

// EmptyBox returns a value-box of the given tag whose payload is absent.
// Nested-flowchart fanout appends one of these when a per-iteration
// single-feature export produced no value.
func EmptyBox(tag Tag) Box {
	return Box{tag: tag, absent: true}
}

// Tag returns the box's declared type.
func (b Box) Tag() Tag { return b.tag }

// IsEmpty reports whether the box carries no payload.
func (b Box) IsEmpty() bool { return b.absent }

func (b Box) mustTag(want Tag) {
	if b.tag != want {
		panic(fmt.Sprintf("vtype: accessed a %s box as %s", b.tag, want))
	}
	if b.absent {
		panic(fmt.Sprintf("vtype: accessed an empty %s box", b.tag))
	}
}

// Bool unpacks a Bool-tagged box. Panics if the tag isn't Bool.
func (b Box) Bool() bool {
	b.mustTag(Bool)
	return b.payload.(bool)
}

// Int unpacks an Int-tagged box. Panics if the tag isn't Int.
func (b Box) Int() int64 {
	b.mustTag(Int)
	return b.payload.(int64)
}

// Float unpacks a Float-tagged box. Panics if the tag isn't Float.
func (b Box) Float() float64 {
	b.mustTag(Float)
	return b.payload.(float64)
}

// Str unpacks a String-tagged box. Panics if the tag isn't String.
func (b Box) Str() string {
	b.mustTag(String)
	return b.payload.(string)
}

// Raw returns the untyped payload, or nil if the box is empty. Opaque
// domain tags are read this way and cast by the node that defined them.
func (b Box) Raw() interface{} {
	if b.absent {
		return nil
	}
	return b.payload
}

// String renders the box's value in the canonical decimal/literal form used
// by global substitution: booleans as "true"/"false", numbers in canonical
// decimal form, strings verbatim.
func (b Box) String() string {
	if b.absent {
		return ""
	}
	switch b.tag {
	case Bool:
		return strconv.FormatBool(b.payload.(bool))
	case Int:
		return strconv.FormatInt(b.payload.(int64), 10)
	case Float:
		return strconv.FormatFloat(b.payload.(float64), 'g', -1, 64)
	case String, Date, Time, DateTime:
		if s, ok := b.payload.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", b.payload)
	default:
		return fmt.Sprintf("%v", b.payload)
	}
}
