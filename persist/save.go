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

package persist

import (
	"encoding/json"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/vtype"
)

func marshalBox(b vtype.Box) (json.RawMessage, error) {
	v, err := encodeBox(b)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Save encodes g into the current (help, type, value) global encoding and
// the node/connection/marked-terminal shape Load expects, satisfying the
// round-trip law: Load(Save(g)) reproduces g's nodes, parameters,
// connections, and marks exactly, though not necessarily any runtime data
// sitting in an output at the moment of saving.
func Save(g *flow.Graph) ([]byte, error) {
	doc := flowchartDoc{
		Globals: map[string][]json.RawMessage{},
		Nodes:   map[string]nodeDoc{},
	}

	for _, key := range g.GlobalNames() {
		global, err := g.Global(key)
		if err != nil {
			return nil, err
		}
		valRaw, err := marshalBox(global.Value())
		if err != nil {
			return nil, err
		}
		helpRaw, _ := json.Marshal(global.Help())
		typeRaw, _ := json.Marshal(globalTypeName(global.Tag()))
		doc.Globals[key] = []json.RawMessage{helpRaw, typeRaw, valRaw}
	}

	for _, n := range g.Nodes() {
		nd := nodeDoc{Type: [2]string{n.Register(), n.Kind()}, Parameters: map[string]json.RawMessage{}}
		x, y := n.Position()
		nd.Position = [2]float64{x, y}

		for _, label := range n.ParamNames() {
			p, err := n.Param(label)
			if err != nil {
				return nil, err
			}
			if master := p.Master(); master != nil {
				nd.Parameters[label] = masterValue(master.Key())
				continue
			}
			raw, err := marshalBox(p.Value())
			if err != nil {
				return nil, err
			}
			nd.Parameters[label] = raw
		}

		for _, outName := range n.OutputNames() {
			out, ok := n.OutputTerminal(outName)
			if !ok {
				continue
			}
			for _, down := range out.Downstreams() {
				if nd.Connections == nil {
					nd.Connections = map[string][][2]string{}
				}
				nd.Connections[outName] = append(nd.Connections[outName], [2]string{down.Node, down.Terminal})
			}
			if out.Marked() {
				if nd.MarkedOutputs == nil {
					nd.MarkedOutputs = map[string]bool{}
				}
				nd.MarkedOutputs[outName] = true
			}
		}
		for _, inName := range n.InputNames() {
			in, ok := n.InputTerminal(inName)
			if !ok {
				continue
			}
			if in.Marked() {
				if nd.MarkedInputs == nil {
					nd.MarkedInputs = map[string]bool{}
				}
				nd.MarkedInputs[inName] = true
			}
		}

		doc.Nodes[n.Name()] = nd
	}

	return json.MarshalIndent(doc, "", "  ")
}
