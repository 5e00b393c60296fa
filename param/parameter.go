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

// Package param implements node parameters and the graph-owned globals that
// can master them, grounded on mgmt's meta-parameter and Send/Recv
// machinery (engine/resources.go, engine/sendrecv.go): a parameter here
// plays the role their Init.Send/Init.Recv handles play, except the "sender"
// is always the graph's global table rather than another node.
package param

import (
	"encoding/json"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/vtype"
)

// Parameter is a named, typed, editable value. It may be slaved to a Global:
// when a master is set and its type is compatible, RefreshFromMaster copies
// the master's value in at the start of every run_all.
type Parameter struct {
	label string
	help  string
	tag   vtype.Tag
	value vtype.Box

	hasRange bool
	min, max vtype.Box

	master *Global
}

// New builds a Parameter with the given label, help text, declared tag, and
// initial value. It returns a TypeMismatchError if initial's tag doesn't
// match the declared tag.
func New(label, help string, tag vtype.Tag, initial vtype.Box) (*Parameter, error) {
	p := &Parameter{label: label, help: help, tag: tag}
	if err := p.Set(initial); err != nil {
		return nil, err
	}
	return p, nil
}

// Label returns the parameter's stable identifying label.
func (p *Parameter) Label() string { return p.label }

// Help returns the parameter's help string.
func (p *Parameter) Help() string { return p.help }

// Tag returns the parameter's declared type tag.
func (p *Parameter) Tag() vtype.Tag { return p.tag }

// Value returns the parameter's current value.
func (p *Parameter) Value() vtype.Box { return p.value }

// Set assigns a new value. It fails with TypeMismatchError if the value's
// tag differs from the declared tag, preserving the invariant that
// parameter.value.tag always equals parameter.declared_tag.
func (p *Parameter) Set(v vtype.Box) error {
	if v.Tag() != p.tag {
		return &gferrors.TypeMismatchError{Context: "parameter " + p.label, Want: string(p.tag), Got: string(v.Tag())}
	}
	p.value = v
	return nil
}

// SetRange records an optional numeric [min, max] range. Both bounds must
// carry the parameter's declared tag.
func (p *Parameter) SetRange(min, max vtype.Box) error {
	if min.Tag() != p.tag || max.Tag() != p.tag {
		return &gferrors.TypeMismatchError{Context: "parameter " + p.label + " range", Want: string(p.tag), Got: string(min.Tag())}
	}
	p.min, p.max = min, max
	p.hasRange = true
	return nil
}

// Range returns the configured [min, max] bounds, if any.
func (p *Parameter) Range() (min, max vtype.Box, ok bool) {
	return p.min, p.max, p.hasRange
}

// SetMaster slaves this parameter to a Global. It fails with
// TypeMismatchError if the global's declared tag differs from this
// parameter's; the reference is weak in the sense that deleting the global
// from the graph should call ClearMaster, after which the parameter reverts
// to using its own stored value.
func (p *Parameter) SetMaster(g *Global) error {
	if g.Tag() != p.tag {
		return &gferrors.TypeMismatchError{Context: "master of parameter " + p.label, Want: string(p.tag), Got: string(g.Tag())}
	}
	p.master = g
	return nil
}

// ClearMaster detaches the current master, if any. The parameter keeps
// whatever value it last held.
func (p *Parameter) ClearMaster() { p.master = nil }

// Master returns the parameter's current master global, or nil.
func (p *Parameter) Master() *Global { return p.master }

// RefreshFromMaster overwrites the parameter's value from its master's
// current value, if a master is set. It is called at the start of every
// run and again immediately before each node's process() call.
func (p *Parameter) RefreshFromMaster() error {
	if p.master == nil {
		return nil
	}
	return p.Set(p.master.Value())
}

// boxToJSON gives the wire shape: the parameter's value as its native Go
// JSON representation, chosen by tag so FromJSON can decode it back.
func boxToJSON(b vtype.Box) (interface{}, error) {
	if b.IsEmpty() {
		return nil, nil
	}
	switch b.Tag() {
	case vtype.Bool:
		return b.Bool(), nil
	case vtype.Int:
		return b.Int(), nil
	case vtype.Float:
		return b.Float(), nil
	default:
		return b.Str(), nil
	}
}

func boxFromJSON(tag vtype.Tag, raw json.RawMessage) (vtype.Box, error) {
	switch tag {
	case vtype.Bool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return vtype.Box{}, err
		}
		return vtype.NewBox(tag, v), nil
	case vtype.Int:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return vtype.Box{}, err
		}
		return vtype.NewBox(tag, v), nil
	case vtype.Float:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return vtype.Box{}, err
		}
		return vtype.NewBox(tag, v), nil
	default:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return vtype.Box{}, err
		}
		return vtype.NewBox(tag, v), nil
	}
}

// AsJSON round-trips the value, preserving tag, for flowchart serialisation.
func (p *Parameter) AsJSON() (interface{}, error) {
	return boxToJSON(p.value)
}

// FromJSON decodes raw into this parameter's declared tag and sets it.
func (p *Parameter) FromJSON(raw json.RawMessage) error {
	box, err := boxFromJSON(p.tag, raw)
	if err != nil {
		return err
	}
	return p.Set(box)
}
