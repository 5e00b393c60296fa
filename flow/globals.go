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

package flow

import (
	"regexp"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/param"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// AddGlobal declares a new graph-owned global under key.
func (g *Graph) AddGlobal(key, help string, tag vtype.Tag, initial vtype.Box) (*param.Global, error) {
	if _, exists := g.globals[key]; exists {
		return nil, &gferrors.FlowchartError{Reason: "global " + key + " already exists"}
	}
	global, err := param.NewGlobal(key, help, tag, initial)
	if err != nil {
		return nil, err
	}
	g.globals[key] = global
	return global, nil
}

// Global looks up a global by key.
func (g *Graph) Global(key string) (*param.Global, error) {
	global, ok := g.globals[key]
	if !ok {
		return nil, &gferrors.GlobalNotFoundError{Name: key}
	}
	return global, nil
}

// SetGlobal assigns a global's value, failing with GlobalNotFoundError if
// key isn't declared and TypeMismatchError if v's tag doesn't match.
func (g *Graph) SetGlobal(key string, v vtype.Box) error {
	global, err := g.Global(key)
	if err != nil {
		return err
	}
	return global.Set(v)
}

// RemoveGlobal deletes a global and clears it from any parameter that was
// mastered by it, the way a dangling master reference must be cleaned up
// rather than left pointing at nothing.
func (g *Graph) RemoveGlobal(key string) error {
	global, err := g.Global(key)
	if err != nil {
		return err
	}
	for _, n := range g.nodes {
		for _, p := range n.Params() {
			if p.Master() == global {
				p.ClearMaster()
			}
		}
	}
	delete(g.globals, key)
	return nil
}

// GlobalNames returns every declared global's key.
func (g *Graph) GlobalNames() []string {
	names := make([]string, 0, len(g.globals))
	for k := range g.globals {
		names = append(names, k)
	}
	return names
}

// SubstituteGlobals rewrites every {{NAME}} occurrence in s with the current
// value of the graph global NAME. It fails with GlobalNotFoundError on the
// first unresolved placeholder.
func (g *Graph) SubstituteGlobals(s string) (string, error) {
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderRe.FindStringSubmatch(match)[1]
		global, err := g.Global(name)
		if err != nil {
			firstErr = err
			return match
		}
		return global.Value().String()
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// SubstituteFromTerminal rewrites {{NAME}} placeholders against the idx'th
// value of a multi-feature input's flattened sub-terminals, keyed by
// sub-terminal name rather than by graph global, playing the same role as
// substitute_from_term in the node-fanout scheme this engine's NestNode
// descends from. The nest package does not call it: it builds its child
// graph's per-iteration globals from the ".globals" sub-terminals directly.
func (g *Graph) SubstituteFromTerminal(s string, mfi *terminal.MFI, idx int) (string, error) {
	subs, err := mfi.SubTerminals(g)
	if err != nil {
		return "", err
	}
	values := map[string]vtype.Box{}
	for _, sub := range subs {
		out, ok := g.ResolveOutput(sub.Endpoint)
		if !ok {
			continue
		}
		sfo, ok := out.(*terminal.SFO)
		if !ok {
			continue
		}
		if v, ok := sfo.Get(idx); ok {
			values[sub.Name] = v
		}
	}
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := placeholderRe.FindStringSubmatch(match)[1]
		v, ok := values[name]
		if !ok {
			firstErr = &gferrors.GlobalNotFoundError{Name: name}
			return match
		}
		return v.String()
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
