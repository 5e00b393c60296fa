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
	"github.com/geoflow/geoflow/node"
)

// RunAll runs every autorun root to completion: each node's outputs are
// cleared and its mastered parameters refreshed once up front, then for
// every root node (one with no inputs) whose
// Autorun flag is set, Run is invoked in turn, notifying descendants and
// driving them by readiness. It fails fast on the first node processing
// error, unwinding the whole run rather than letting siblings keep going
// with partial state. Returns the total number of nodes that actually ran.
func (g *Graph) RunAll() (int, error) {
	for _, n := range g.Nodes() {
		n.Reset()
		for _, label := range n.ParamNames() {
			if err := n.RefreshParam(label); err != nil {
				return 0, &gferrors.NodeProcessingError{Node: n.Name(), Err: err}
			}
		}
	}

	total := 0
	for _, n := range g.Nodes() {
		if !n.IsRoot() || !n.Autorun() {
			continue
		}
		count, err := g.run(n.Name())
		total += count
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Run executes name to completion, along with every other node that becomes
// ready as a consequence: the queue is cleared, name is enqueued if ready,
// and execution then proceeds dequeue by dequeue until nothing is left
// runnable. It does not reset node state first, unlike RunAll, so it can be
// used to re-drive a single node after a targeted parameter or connection
// change. Returns the number of nodes whose process() actually ran.
func (g *Graph) Run(name string) (int, error) {
	if _, err := g.Node(name); err != nil {
		return 0, err
	}
	return g.run(name)
}

func (g *Graph) run(name string) (int, error) {
	g.queue = nil
	g.inQueue = map[string]bool{}
	g.enqueueIfReady(name)

	count := 0
	for len(g.queue) > 0 {
		next := g.queue[0]
		g.queue = g.queue[1:]
		delete(g.inQueue, next)

		if err := g.runOne(next); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (g *Graph) runOne(name string) error {
	n, err := g.Node(name)
	if err != nil {
		return err
	}

	for _, label := range n.ParamNames() {
		if err := n.RefreshParam(label); err != nil {
			return &gferrors.NodeProcessingError{Node: name, Err: err}
		}
	}

	n.BeginProcessing()
	if err := n.Hooks().Process(n, g); err != nil {
		return &gferrors.NodeProcessingError{Node: name, Err: err}
	}
	n.FinishProcessing()

	g.propagate(n)
	return nil
}

// propagate notifies every downstream input of every output this node
// produced, in each output's deterministic connection order, and then
// re-checks readiness for the nodes that own those inputs.
func (g *Graph) propagate(n *node.Node) {
	for _, outName := range n.OutputNames() {
		out, ok := n.OutputTerminal(outName)
		if !ok || (!out.HasData() && !out.IsTouched()) {
			continue
		}
		for _, ep := range out.Downstreams() {
			g.notifyReceive(ep.Node, ep.Terminal)
		}
	}
}

// notifyReceive is called whenever a connected output changes shape: right
// after Connect, when an already-producing output gets a new downstream,
// and during propagate, once per run, for every edge a node's process()
// fed data into.
func (g *Graph) notifyReceive(nodeName, terminalName string) {
	n, err := g.Node(nodeName)
	if err != nil {
		return
	}
	n.Hooks().OnReceive(n, terminalName)
	g.enqueueIfReady(nodeName)
}

func (g *Graph) enqueueIfReady(name string) {
	n, err := g.Node(name)
	if err != nil {
		return
	}
	n.UpdateStatus(g)
	if n.Status() != node.Ready {
		return
	}
	if g.inQueue == nil {
		g.inQueue = map[string]bool{}
	}
	if g.inQueue[name] {
		return
	}
	g.inQueue[name] = true
	g.queue = append(g.queue, name)
}
