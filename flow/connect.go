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
	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

// Connect attaches outNode.outTerm to inNode.inTerm. It enforces the
// connection algebra: tag compatibility (output's accepted tags must be a
// subset of the input's), the family rule (any output may feed a
// multi-feature input; a single-feature input only ever accepts a
// single-feature output), and acyclicity. A second connection to an
// already-connected single-feature input implicitly replaces the first.
func (g *Graph) Connect(outNode, outTerm, inNode, inTerm string) error {
	outN, err := g.Node(outNode)
	if err != nil {
		return err
	}
	inN, err := g.Node(inNode)
	if err != nil {
		return err
	}
	out, ok := outN.OutputTerminal(outTerm)
	if !ok {
		return &gferrors.UnknownTerminalError{Node: outNode, Terminal: outTerm}
	}
	in, ok := inN.InputTerminal(inTerm)
	if !ok {
		return &gferrors.UnknownTerminalError{Node: inNode, Terminal: inTerm}
	}

	if !vtype.Compatible(out.AcceptedTags(), in.AcceptedTags()) {
		return &gferrors.TypeMismatchError{
			Context: out.FullName() + " -> " + in.FullName(),
			Want:    tagsString(in.AcceptedTags()),
			Got:     tagsString(out.AcceptedTags()),
		}
	}
	if in.Family() == terminal.Single && out.Family() != terminal.Single {
		return &gferrors.TypeMismatchError{
			Context: out.FullName() + " -> " + in.FullName(),
			Want:    "single-feature output",
			Got:     "multi-feature output",
		}
	}

	if g.forwardReachable(inNode)[outNode] {
		return &gferrors.CycleDetectedError{From: out.FullName(), To: in.FullName()}
	}

	outEp := terminal.Endpoint{Node: outNode, Terminal: outTerm}
	inEp := terminal.Endpoint{Node: inNode, Terminal: inTerm}

	switch t := in.(type) {
	case *terminal.SFI:
		if prev, connected := t.Upstream(); connected {
			if err := g.Disconnect(prev.Node, prev.Terminal, inNode, inTerm); err != nil {
				return err
			}
		}
		t.SetUpstream(outEp)
	case *terminal.MFI:
		t.AddUpstream(outEp)
	default:
		return &gferrors.UnknownTerminalError{Node: inNode, Terminal: inTerm}
	}
	out.AddDownstream(inEp)

	outN.Hooks().OnConnectOutput(outN, outTerm)
	inN.Hooks().OnConnectInput(inN, inTerm)

	if out.HasData() || out.IsTouched() {
		g.notifyReceive(inNode, inTerm)
	}
	return nil
}

// Disconnect detaches outNode.outTerm from inNode.inTerm, clears the
// input's data, and invalidates every node downstream of inNode, since
// whatever they last computed may have depended on the edge that just
// disappeared.
func (g *Graph) Disconnect(outNode, outTerm, inNode, inTerm string) error {
	outN, err := g.Node(outNode)
	if err != nil {
		return err
	}
	inN, err := g.Node(inNode)
	if err != nil {
		return err
	}
	out, ok := outN.OutputTerminal(outTerm)
	if !ok {
		return &gferrors.UnknownTerminalError{Node: outNode, Terminal: outTerm}
	}
	in, ok := inN.InputTerminal(inTerm)
	if !ok {
		return &gferrors.UnknownTerminalError{Node: inNode, Terminal: inTerm}
	}

	outEp := terminal.Endpoint{Node: outNode, Terminal: outTerm}
	inEp := terminal.Endpoint{Node: inNode, Terminal: inTerm}

	switch t := in.(type) {
	case *terminal.SFI:
		t.Clear()
	case *terminal.MFI:
		t.RemoveUpstream(outEp)
	}
	out.RemoveDownstream(inEp)

	g.invalidateForward(inNode)
	return nil
}

// forwardReachable returns the set of node names reachable from start by
// following existing output-to-input edges, used by Connect's cycle check:
// attaching out->in would close a cycle exactly when out's node is already
// reachable from in's node.
func (g *Graph) forwardReachable(start string) map[string]bool {
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := g.nodes[cur]
		if !ok {
			continue
		}
		for _, outName := range n.OutputNames() {
			out, _ := n.OutputTerminal(outName)
			for _, d := range out.Downstreams() {
				if !seen[d.Node] {
					seen[d.Node] = true
					stack = append(stack, d.Node)
				}
			}
		}
	}
	return seen
}

// invalidateForward resets start and every node reachable from it, the way
// a Disconnect must unwind any already-Done state that depended on the
// removed edge.
func (g *Graph) invalidateForward(start string) {
	for name := range g.forwardReachable(start) {
		if n, ok := g.nodes[name]; ok {
			n.Reset()
		}
	}
}

func tagsString(s vtype.Set) string {
	out := ""
	for i, t := range s {
		if i > 0 {
			out += "|"
		}
		out += string(t)
	}
	return out
}
