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

// Package persist implements flowchart JSON serialisation: loading a Graph
// from a document and writing one back out. Grounded on mgmt's
// yamlgraph2.GraphConfig, which walks a declarative document (graph meta,
// resources keyed by kind, edges) into a live pgraph.Graph; here the
// document is JSON (LoadYAML accepts the same shape YAML-encoded) and
// vertices are geoflow nodes rather than resources, but the two-pass shape (decode structure, then resolve
// names into live objects) is the same.
package persist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/vtype"
)

// Mode controls how Load reacts to a reference to a missing register, node,
// or terminal.
type Mode int

const (
	// Strict aborts the whole load with a FlowchartError on the first bad
	// reference.
	Strict Mode = iota
	// Lenient skips the offending entry, reports it through the graph's
	// Logf, and accumulates every skip into one returned multierror so the
	// caller can decide how to react.
	Lenient
)

// nodeDoc is one node's entry under the "nodes" map: its type and position,
// its parameters (including any mastered onto a global), the edges leading
// out of each of its outputs, and which of its own terminals are marked.
type nodeDoc struct {
	Type          [2]string                  `json:"type"`
	Position      [2]float64                 `json:"position"`
	Parameters    map[string]json.RawMessage `json:"parameters,omitempty"`
	Connections   map[string][][2]string     `json:"connections,omitempty"`
	MarkedInputs  map[string]bool            `json:"marked_inputs,omitempty"`
	MarkedOutputs map[string]bool            `json:"marked_outputs,omitempty"`
}

type flowchartDoc struct {
	Globals map[string][]json.RawMessage `json:"globals,omitempty"`
	Nodes   map[string]nodeDoc           `json:"nodes"`
}

// globalTypeName/tagFromGlobalType translate between the short type names a
// flowchart document uses for globals ("bool", "int", "float", "str") and
// the engine's internal tag names, which spell the string tag out in full.
// Every other tag round-trips unchanged.
func tagFromGlobalType(s string) vtype.Tag {
	if s == "str" {
		return vtype.String
	}
	return vtype.Tag(s)
}

func globalTypeName(tag vtype.Tag) string {
	if tag == vtype.String {
		return "str"
	}
	return string(tag)
}

func decodeBox(tag vtype.Tag, raw json.RawMessage) (vtype.Box, error) {
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

func encodeBox(b vtype.Box) (interface{}, error) {
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

// masterGlobalName extracts the global name from a "{{NAME}}"-shaped
// parameter value, the way the original engine's get_global_name scans for
// the first "{{"/"}}" pair rather than requiring an exact whole-string
// match. It never fires for a string-typed parameter: a string parameter's
// own value legitimately looks like "{{NAME}}" when it's a substitution
// template rather than a master reference, so only non-string parameters
// treat this shape specially.
func masterGlobalName(tag vtype.Tag, raw json.RawMessage) (string, bool) {
	if tag == vtype.String {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	open := strings.Index(s, "{{")
	close := strings.Index(s, "}}")
	if open < 0 || close < 0 || close <= open+2 {
		return "", false
	}
	return s[open+2 : close], true
}

func masterValue(name string) json.RawMessage {
	raw, _ := json.Marshal("{{" + name + "}}")
	return raw
}

// Load decodes data into g. In Strict mode the first reference to a missing
// register, node, or terminal aborts with a FlowchartError; in Lenient mode
// every bad reference is skipped and folded into the returned multierror.
func Load(data []byte, g *flow.Graph, mode Mode) error {
	var doc flowchartDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return &gferrors.FlowchartError{Reason: errors.Wrap(err, "invalid JSON").Error()}
	}

	var errs error
	fail := func(err error) error {
		if mode == Strict {
			if _, ok := err.(*gferrors.FlowchartError); ok {
				return err
			}
			return &gferrors.FlowchartError{Reason: err.Error()}
		}
		g.Logf("skipping flowchart entry: %v", err)
		errs = multierror.Append(errs, err)
		return nil
	}

	// globals first: node parameters may master them.
	globalKeys := make([]string, 0, len(doc.Globals))
	for k := range doc.Globals {
		globalKeys = append(globalKeys, k)
	}
	sort.Strings(globalKeys)
	for _, key := range globalKeys {
		tuple := doc.Globals[key]
		var help, typeName string
		var raw json.RawMessage
		switch len(tuple) {
		case 2: // legacy [type, value]
			if err := json.Unmarshal(tuple[0], &typeName); err != nil {
				if err := fail(&gferrors.FlowchartError{Reason: "global " + key + ": " + err.Error()}); err != nil {
					return err
				}
				continue
			}
			raw = tuple[1]
		case 3: // current [help, type, value]
			if err := json.Unmarshal(tuple[0], &help); err != nil {
				if err := fail(&gferrors.FlowchartError{Reason: "global " + key + ": " + err.Error()}); err != nil {
					return err
				}
				continue
			}
			if err := json.Unmarshal(tuple[1], &typeName); err != nil {
				if err := fail(&gferrors.FlowchartError{Reason: "global " + key + ": " + err.Error()}); err != nil {
					return err
				}
				continue
			}
			raw = tuple[2]
		default:
			if err := fail(&gferrors.FlowchartError{Reason: fmt.Sprintf("global %s: malformed entry of length %d", key, len(tuple))}); err != nil {
				return err
			}
			continue
		}
		tag := tagFromGlobalType(typeName)
		box, err := decodeBox(tag, raw)
		if err != nil {
			if err := fail(&gferrors.FlowchartError{Reason: "global " + key + ": " + err.Error()}); err != nil {
				return err
			}
			continue
		}
		if _, err := g.AddGlobal(key, help, tag, box); err != nil {
			if err := fail(err); err != nil {
				return err
			}
		}
	}

	nodeNames := make([]string, 0, len(doc.Nodes))
	for k := range doc.Nodes {
		nodeNames = append(nodeNames, k)
	}
	sort.Strings(nodeNames)
	for _, name := range nodeNames {
		nd := doc.Nodes[name]
		n, err := g.CreateNamedNode(name, nd.Type[0], nd.Type[1])
		if err != nil {
			if err := fail(err); err != nil {
				return err
			}
			continue
		}
		n.SetPosition(nd.Position[0], nd.Position[1])

		paramNames := make([]string, 0, len(nd.Parameters))
		for k := range nd.Parameters {
			paramNames = append(paramNames, k)
		}
		sort.Strings(paramNames)
		for _, label := range paramNames {
			raw := nd.Parameters[label]
			p, err := n.Param(label)
			if err != nil {
				if err := fail(&gferrors.FlowchartError{Reason: err.Error()}); err != nil {
					return err
				}
				continue
			}
			if name, ok := masterGlobalName(p.Tag(), raw); ok {
				global, err := g.Global(name)
				if err != nil {
					if err := fail(err); err != nil {
						return err
					}
					continue
				}
				if err := p.SetMaster(global); err != nil {
					if err := fail(err); err != nil {
						return err
					}
				}
				continue
			}
			box, err := decodeBox(p.Tag(), raw)
			if err == nil {
				err = n.SetParam(label, box)
			}
			if err != nil {
				if err := fail(&gferrors.FlowchartError{Reason: err.Error()}); err != nil {
					return err
				}
			}
		}
		n.Hooks().PostParameterLoad(n)
	}

	for _, name := range nodeNames {
		nd := doc.Nodes[name]
		n, err := g.Node(name)
		if err != nil {
			continue // already failed (lenient) or aborted (strict) above
		}

		inNames := make([]string, 0, len(nd.MarkedInputs))
		for k := range nd.MarkedInputs {
			inNames = append(inNames, k)
		}
		sort.Strings(inNames)
		for _, termName := range inNames {
			if !nd.MarkedInputs[termName] {
				continue
			}
			t, ok := n.InputTerminal(termName)
			if !ok {
				if err := fail(&gferrors.UnknownTerminalError{Node: name, Terminal: termName}); err != nil {
					return err
				}
				continue
			}
			t.SetMarked(true)
		}

		outNames := make([]string, 0, len(nd.MarkedOutputs))
		for k := range nd.MarkedOutputs {
			outNames = append(outNames, k)
		}
		sort.Strings(outNames)
		for _, termName := range outNames {
			if !nd.MarkedOutputs[termName] {
				continue
			}
			t, ok := n.OutputTerminal(termName)
			if !ok {
				if err := fail(&gferrors.UnknownTerminalError{Node: name, Terminal: termName}); err != nil {
					return err
				}
				continue
			}
			t.SetMarked(true)
		}
	}

	for _, name := range nodeNames {
		nd := doc.Nodes[name]

		outTermNames := make([]string, 0, len(nd.Connections))
		for k := range nd.Connections {
			outTermNames = append(outTermNames, k)
		}
		sort.Strings(outTermNames)
		for _, outTerm := range outTermNames {
			for _, down := range nd.Connections[outTerm] {
				if err := g.Connect(name, outTerm, down[0], down[1]); err != nil {
					if err := fail(err); err != nil {
						return err
					}
				}
			}
		}
	}

	return errs
}
