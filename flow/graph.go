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

// Package flow implements the Graph: node ownership, globals, the
// connection algebra, and the readiness-driven scheduler. It is the one
// package that mediates between terminal Endpoints and live terminals (it
// implements terminal.Resolver), the way mgmt's pgraph.Graph is the one
// thing that turns an edge's two vertex pointers into actual traversable
// adjacency, rather than vertices pointing directly at each other.
package flow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/node"
	"github.com/geoflow/geoflow/param"
	"github.com/geoflow/geoflow/register"
	"github.com/geoflow/geoflow/terminal"
)

// Logf is the logging hook threaded through the graph and down into nodes,
// mirroring engine.Init.Logf: a plain closure rather than a logging-library
// handle, since mgmt's own core never takes a dependency on one either.
type Logf func(format string, v ...interface{})

// Graph owns a set of uniquely-named nodes, a table of globals, and the
// registers new nodes may be constructed from. It is the sole implementation
// of terminal.Resolver.
type Graph struct {
	name string

	nodes     map[string]*node.Node
	nodeOrder []string

	globals map[string]*param.Global

	registers *register.Map

	logf Logf

	// queue and inQueue back the scheduler in run.go; they're only
	// meaningful for the duration of a RunAll call.
	queue   []string
	inQueue map[string]bool
}

// New builds an empty graph backed by the given register map.
func New(name string, registers *register.Map, logf Logf) *Graph {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Graph{
		name:      name,
		nodes:     map[string]*node.Node{},
		globals:   map[string]*param.Global{},
		registers: registers,
		logf:      logf,
	}
}

func (g *Graph) Name() string { return g.name }

// Logf logs a message tagged with the graph's name, the way a resource's
// Init.Logf tags its lines with the resource's kind and name.
func (g *Graph) Logf(format string, v ...interface{}) {
	g.logf("flow: "+g.name+": "+format, v...)
}

// --- node lifecycle ---------------------------------------------------------

// CreateNode constructs a node of [registerName, typeName] and installs it
// under a generated unique name, the way lib/deploy.go mints a uuid-suffixed
// name to avoid collisions, rather than requiring the caller to pick one.
func (g *Graph) CreateNode(registerName, typeName string) (*node.Node, error) {
	base := typeName
	name := fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
	for {
		if _, exists := g.nodes[name]; !exists {
			break
		}
		name = fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
	}
	return g.CreateNamedNode(name, registerName, typeName)
}

// CreateNamedNode constructs a node of [registerName, typeName] under an
// explicit, caller-chosen name. It fails if the name is already taken or the
// type isn't known to the register map.
func (g *Graph) CreateNamedNode(name, registerName, typeName string) (*node.Node, error) {
	if _, exists := g.nodes[name]; exists {
		return nil, &gferrors.FlowchartError{Reason: fmt.Sprintf("node %q already exists", name)}
	}
	n, err := g.registers.Create(name, registerName, typeName)
	if err != nil {
		return nil, err
	}
	g.nodes[name] = n
	g.nodeOrder = append(g.nodeOrder, name)
	return n, nil
}

// RenameNode changes a node's key in the graph. Every Endpoint anywhere in
// the graph that names the old node would dangle, so RenameNode walks every
// terminal's upstream/downstream references and rewrites the Node field,
// fixing up every terminal that references the renamed node by name.
func (g *Graph) RenameNode(oldName, newName string) error {
	n, ok := g.nodes[oldName]
	if !ok {
		return &gferrors.UnknownNodeError{Name: oldName}
	}
	if _, exists := g.nodes[newName]; exists {
		return &gferrors.FlowchartError{Reason: fmt.Sprintf("node %q already exists", newName)}
	}
	delete(g.nodes, oldName)
	g.nodes[newName] = n
	for i, nm := range g.nodeOrder {
		if nm == oldName {
			g.nodeOrder[i] = newName
		}
	}
	g.rewriteEndpoints(oldName, newName)
	return nil
}

func (g *Graph) rewriteEndpoints(oldName, newName string) {
	rewrite := func(ep terminal.Endpoint) terminal.Endpoint {
		if ep.Node == oldName {
			ep.Node = newName
		}
		return ep
	}
	for _, n := range g.nodes {
		for _, inName := range n.InputNames() {
			in, _ := n.InputTerminal(inName)
			switch t := in.(type) {
			case *terminal.SFI:
				if up, ok := t.Upstream(); ok {
					t.SetUpstream(rewrite(up))
				}
			case *terminal.MFI:
				for _, up := range t.Upstreams() {
					if up.Node == oldName {
						t.RemoveUpstream(up)
						t.AddUpstream(rewrite(up))
					}
				}
			}
		}
		for _, outName := range n.OutputNames() {
			out, _ := n.OutputTerminal(outName)
			switch t := out.(type) {
			case *terminal.SFO:
				for _, d := range t.Downstreams() {
					if d.Node == oldName {
						t.RemoveDownstream(d)
						t.AddDownstream(rewrite(d))
					}
				}
			case *terminal.MFO:
				for _, d := range t.Downstreams() {
					if d.Node == oldName {
						t.RemoveDownstream(d)
						t.AddDownstream(rewrite(d))
					}
				}
			}
		}
	}
}

// RemoveNode disconnects every edge touching name and deletes it.
func (g *Graph) RemoveNode(name string) error {
	n, ok := g.nodes[name]
	if !ok {
		return &gferrors.UnknownNodeError{Name: name}
	}
	var errs error
	for _, inName := range n.InputNames() {
		in, _ := n.InputTerminal(inName)
		for _, up := range upstreamsOf(in) {
			if err := g.Disconnect(up.Node, up.Terminal, name, inName); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	for _, outName := range n.OutputNames() {
		out, _ := n.OutputTerminal(outName)
		for _, d := range append([]terminal.Endpoint(nil), out.Downstreams()...) {
			if err := g.Disconnect(name, outName, d.Node, d.Terminal); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	delete(g.nodes, name)
	for i, nm := range g.nodeOrder {
		if nm == name {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
	return errs
}

// upstreamsOf returns every endpoint feeding an input terminal, regardless
// of whether it's a single-feature input (at most one) or a multi-feature
// one (any number).
func upstreamsOf(in terminal.Input) []terminal.Endpoint {
	switch t := in.(type) {
	case *terminal.SFI:
		if up, ok := t.Upstream(); ok {
			return []terminal.Endpoint{up}
		}
		return nil
	case *terminal.MFI:
		return t.Upstreams()
	default:
		return nil
	}
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (*node.Node, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, &gferrors.UnknownNodeError{Name: name}
	}
	return n, nil
}

// Nodes returns every node in declaration order.
func (g *Graph) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(g.nodeOrder))
	for _, name := range g.nodeOrder {
		out = append(out, g.nodes[name])
	}
	return out
}

// NodeNames returns every node's name in declaration order.
func (g *Graph) NodeNames() []string { return append([]string(nil), g.nodeOrder...) }

// Registers returns the graph's register map, so persistence can look up a
// node's type when serialising, and so nested-flowchart loading can build a
// child graph from the same registers as the parent.
func (g *Graph) Registers() *register.Map { return g.registers }

// --- terminal.Resolver -------------------------------------------------------

func (g *Graph) ResolveOutput(ep terminal.Endpoint) (terminal.Output, bool) {
	n, ok := g.nodes[ep.Node]
	if !ok {
		return resolveSubOutput(g, ep)
	}
	if out, ok := n.OutputTerminal(ep.Terminal); ok {
		return out, true
	}
	return resolveSubOutput(g, ep)
}

// resolveSubOutput resolves a dotted MFO sub-terminal endpoint of the shape
// "{poly_output_name}.{sub_name}", built by MFO.Endpoint.
func resolveSubOutput(g *Graph, ep terminal.Endpoint) (terminal.Output, bool) {
	n, ok := g.nodes[ep.Node]
	if !ok {
		return nil, false
	}
	name, sub, ok := splitDotted(ep.Terminal)
	if !ok {
		return nil, false
	}
	mfo, err := n.PolyOutput(name)
	if err != nil {
		return nil, false
	}
	return mfo.Sub(sub)
}

func splitDotted(s string) (head, tail string, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func (g *Graph) ResolveInput(ep terminal.Endpoint) (terminal.Input, bool) {
	n, ok := g.nodes[ep.Node]
	if !ok {
		return nil, false
	}
	return n.InputTerminal(ep.Terminal)
}
