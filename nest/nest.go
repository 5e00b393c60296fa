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

// Package nest implements the nested-flowchart node: a node whose process
// loads a sub-flowchart from disk, runs it once per element of its own
// vector/poly inputs, and aggregates each run's marked outputs back into its
// own vector/poly outputs. Grounded on core_nodes.hpp's NestNode: a
// synthetic "Proxy" node feeds each run's inputs into the cloned sub-graph's
// marked input terminals, a per-iteration "GF_I" global carries the loop
// index into the child, and outputs are collected by appending each run's
// full data vector rather than just its first value.
package nest

import (
	"fmt"
	"strings"
	"time"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/iofs"
	"github.com/geoflow/geoflow/node"
	"github.com/geoflow/geoflow/persist"
	"github.com/geoflow/geoflow/register"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

const (
	typeName  = "Nest"
	pathParam = "path"

	// ProxyRegisterName is the register a nest node installs into every
	// child graph it builds, holding only the synthetic Proxy node type.
	ProxyRegisterName = "nest-proxy"
	proxyTypeName     = "Proxy"
	proxyNodeName     = "proxy"
)

func globalsTerminalName(n *node.Node) string { return n.Name() + ".globals" }
func timingsTerminalName(n *node.Node) string { return n.Name() + ".timings" }

// exportedTerminal names one marked terminal of the sub-flowchart that a
// nest node mirrors on itself, under the dotted "node.terminal" name the
// sub-flowchart's own node and terminal were declared with.
type exportedTerminal struct {
	exposedName string
	childEP     terminal.Endpoint
	single      bool
	tags        vtype.Set
}

// hooks holds a nest node's behaviour. It is mutable (PostParameterLoad fills
// in doc/exportedInputs/exportedOutputs, Process reads them back), so a nest
// node's Hooks value is always a *hooks, never a bare value.
type hooks struct {
	node.Base

	fs              *iofs.Fs
	parentRegisters *register.Map

	loadErr error
	doc     []byte

	exportedInputs  []exportedTerminal
	exportedOutputs []exportedTerminal
}

// NewFactory builds a register.Factory for nest nodes. registerName must
// match the name of the register this factory is installed under, since a
// node's own Register() is part of its persisted [register, type] pair.
func NewFactory(registerName string, fs *iofs.Fs, parentRegisters *register.Map) register.Factory {
	return func(name string) *node.Node {
		h := &hooks{fs: fs, parentRegisters: parentRegisters}
		n := node.New(name, registerName, typeName, h)
		_, _ = n.AddParam(pathParam, "path to the sub-flowchart JSON this node wraps", vtype.String, vtype.NewBox(vtype.String, ""))
		n.AddPolyInput(globalsTerminalName(n), vtype.NewSet(vtype.Bool, vtype.Int, vtype.Float, vtype.String), true)
		n.AddVectorOutput(timingsTerminalName(n), vtype.NewSet(vtype.Float))
		return n
	}
}

// proxyState is the per-Process-call data the synthetic Proxy node's hooks
// read from when the child graph's own scheduler runs them. It has to live
// outside the Proxy node itself because child.RunAll resets (clears) every
// node's outputs, including the Proxy's, at the start of every single
// iteration's run: setting the Proxy's outputs has to happen from inside its
// own Process, which runs after that reset, rather than by the outer loop
// poking them beforehand.
type proxyState struct {
	nest     *node.Node
	parent   *flow.Graph
	exported []exportedTerminal
	index    int
}

type proxyHooks struct {
	node.Base
	state *proxyState
}

func (h *proxyHooks) Process(n *node.Node, r terminal.Resolver) error {
	return setProxyInputs(h.state.parent, n, h.state.nest, h.state.exported, h.state.index)
}

// newProxyRegister builds the register a cloned sub-graph's synthetic Proxy
// node is constructed from. state is nil when the register is only needed to
// satisfy a reference to the "nest-proxy" register during introspection (the
// introspected document never actually contains a Proxy node), in which case
// the Proxy type is declared with no terminals.
func newProxyRegister(state *proxyState) *register.NodeRegister {
	r := register.New(ProxyRegisterName)
	r.Add(proxyTypeName, func(name string) *node.Node {
		n := node.New(name, ProxyRegisterName, proxyTypeName, &proxyHooks{state: state})
		if state != nil {
			for _, exp := range state.exported {
				if exp.single {
					n.AddOutput(exp.exposedName, exp.tags)
				} else {
					n.AddPolyOutput(exp.exposedName, exp.tags)
				}
			}
		}
		return n
	})
	return r
}

// childRegisters builds the register map a cloned sub-graph constructs its
// nodes from: every register the parent graph knows about, plus the
// synthetic Proxy register this package owns. The underlying *NodeRegister
// values are shared with the parent map, not copied, so a single set of
// node-type factories serves both graphs.
func childRegisters(parent *register.Map, state *proxyState) *register.Map {
	m := register.NewMap()
	for _, name := range parent.RegisterNames() {
		r, ok := parent.Get(name)
		if !ok {
			continue
		}
		m.Add(r)
	}
	m.Add(newProxyRegister(state))
	return m
}

func splitExposedName(s string) (nodeName, termName string, ok bool) {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// PostParameterLoad loads the sub-flowchart named by the "path" parameter
// into a throwaway graph purely to discover its marked terminals, then
// mirrors each one onto this node as a vector (single-feature) or poly
// (multi-feature) terminal. A failure here is recorded rather than returned
// (the Hooks contract gives PostParameterLoad no error return) and is
// surfaced through ParametersValid, which keeps the node permanently Waiting
// until it's fixed.
func (h *hooks) PostParameterLoad(n *node.Node) {
	h.loadErr = nil
	h.doc = nil
	h.exportedInputs = nil
	h.exportedOutputs = nil

	p, err := n.Param(pathParam)
	if err != nil {
		h.loadErr = err
		return
	}
	path := p.Value().Str()
	if path == "" {
		return
	}

	data, err := h.fs.ReadFile(path)
	if err != nil {
		h.loadErr = &gferrors.IOError{Path: path, Err: err}
		return
	}
	h.doc = data

	introspect := flow.New(n.Name()+".introspect", childRegisters(h.parentRegisters, nil), nil)
	if err := persist.Load(data, introspect, persist.Strict); err != nil {
		h.loadErr = err
		return
	}

	for _, cn := range introspect.Nodes() {
		for _, inName := range cn.InputNames() {
			in, ok := cn.InputTerminal(inName)
			if !ok || !in.Marked() {
				continue
			}
			h.exportedInputs = append(h.exportedInputs, exportedTerminal{
				exposedName: cn.Name() + "." + inName,
				childEP:     terminal.Endpoint{Node: cn.Name(), Terminal: inName},
				single:      in.Family() == terminal.Single,
				tags:        in.AcceptedTags(),
			})
		}
		for _, outName := range cn.OutputNames() {
			out, ok := cn.OutputTerminal(outName)
			if !ok || !out.Marked() {
				continue
			}
			h.exportedOutputs = append(h.exportedOutputs, exportedTerminal{
				exposedName: cn.Name() + "." + outName,
				childEP:     terminal.Endpoint{Node: cn.Name(), Terminal: outName},
				single:      out.Family() == terminal.Single,
				tags:        out.AcceptedTags(),
			})
		}
	}

	for _, exp := range h.exportedInputs {
		if _, ok := n.InputTerminal(exp.exposedName); ok {
			continue
		}
		if exp.single {
			n.AddVectorInput(exp.exposedName, exp.tags, false)
		} else {
			n.AddPolyInput(exp.exposedName, exp.tags, false)
		}
	}
	for _, exp := range h.exportedOutputs {
		if _, ok := n.OutputTerminal(exp.exposedName); ok {
			continue
		}
		if exp.single {
			n.AddVectorOutput(exp.exposedName, exp.tags)
		} else {
			n.AddPolyOutput(exp.exposedName, exp.tags)
		}
	}
}

// ParametersValid surfaces any error PostParameterLoad recorded, keeping a
// misconfigured nest node (bad path, unreadable file, malformed JSON)
// permanently Waiting instead of letting it run against a half-built set of
// exposed terminals.
func (h *hooks) ParametersValid(*node.Node) error { return h.loadErr }

// Process clones the sub-flowchart once, wires a synthetic Proxy node's
// outputs onto every marked input of the clone, then runs the clone to
// completion once per element of this node's own inputs, feeding the i'th
// element of each input through the Proxy and appending each run's marked
// outputs onto this node's own outputs.
func (h *hooks) Process(n *node.Node, r terminal.Resolver) error {
	if h.loadErr != nil {
		return h.loadErr
	}
	if len(h.doc) == 0 {
		return nil
	}
	parent, ok := r.(*flow.Graph)
	if !ok {
		return fmt.Errorf("nest: %s: resolver does not support global lookup", n.Name())
	}

	count, err := iterationCount(n, r)
	if err != nil {
		return err
	}

	state := &proxyState{nest: n, parent: parent, exported: h.exportedInputs}
	child := flow.New(n.Name()+".child", childRegisters(h.parentRegisters, state), nil)
	if err := persist.Load(h.doc, child, persist.Strict); err != nil {
		return err
	}
	if err := copyGlobals(parent, child); err != nil {
		return err
	}

	if _, err := child.CreateNamedNode(proxyNodeName, ProxyRegisterName, proxyTypeName); err != nil {
		return err
	}
	for _, exp := range h.exportedInputs {
		childNode, childTerm, ok := splitExposedName(exp.exposedName)
		if !ok {
			continue
		}
		if err := child.Connect(proxyNodeName, exp.exposedName, childNode, childTerm); err != nil {
			return err
		}
	}

	globalsIn, err := n.PolyInput(globalsTerminalName(n))
	if err != nil {
		return err
	}
	timings, err := n.Output(timingsTerminalName(n))
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		if err := setIterationIndex(child, i); err != nil {
			return err
		}
		if err := setIterationGlobals(parent, child, globalsIn, i); err != nil {
			return err
		}
		state.index = i

		start := time.Now()
		if _, err := child.RunAll(); err != nil {
			return err
		}
		elapsed := time.Since(start)

		if err := collectIterationOutputs(child, n, h.exportedOutputs); err != nil {
			return err
		}
		if err := timings.PushBack(vtype.NewBox(vtype.Float, elapsed.Seconds())); err != nil {
			return err
		}
	}
	return nil
}

// iterationCount returns N, the shared length every exported input must
// agree on: the size of the first exported input this node declares, or 0
// if it has none (a nest node with no exported inputs, only a .globals
// input, runs zero iterations).
func iterationCount(n *node.Node, r terminal.Resolver) (int, error) {
	globalsName := globalsTerminalName(n)
	for _, name := range n.InputNames() {
		if name == globalsName {
			continue
		}
		in, ok := n.InputTerminal(name)
		if !ok {
			continue
		}
		return in.Size(r), nil
	}
	return 0, nil
}

func copyGlobals(parent, child *flow.Graph) error {
	for _, key := range parent.GlobalNames() {
		if _, err := child.Global(key); err == nil {
			continue
		}
		g, err := parent.Global(key)
		if err != nil {
			return err
		}
		if _, err := child.AddGlobal(g.Key(), g.Help(), g.Tag(), g.Value()); err != nil {
			return err
		}
	}
	return nil
}

// setIterationIndex injects the synthetic "GF_I" global carrying the
// stringified loop index, stamping every clone with its position in the
// fanout before each run.
func setIterationIndex(child *flow.Graph, i int) error {
	idx := fmt.Sprintf("%d", i)
	if g, err := child.Global("GF_I"); err == nil {
		return g.Set(vtype.NewBox(vtype.String, idx))
	}
	_, err := child.AddGlobal("GF_I", "loop index of the current nest iteration", vtype.String, vtype.NewBox(vtype.String, idx))
	return err
}

// setIterationGlobals turns the i'th value of every .globals sub-terminal
// into a same-named child global, overwriting one inherited from
// copyGlobals if present.
func setIterationGlobals(parent, child *flow.Graph, globalsIn *terminal.MFI, i int) error {
	subs, err := globalsIn.SubTerminals(parent)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		out, ok := parent.ResolveOutput(sub.Endpoint)
		if !ok {
			continue
		}
		sfo, ok := out.(*terminal.SFO)
		if !ok {
			continue
		}
		v, ok := sfo.Get(i)
		if !ok {
			continue
		}
		if g, err := child.Global(sub.Name); err == nil {
			if err := g.Set(v); err != nil {
				return err
			}
			continue
		}
		if _, err := child.AddGlobal(sub.Name, "global supplied by the enclosing nest node's .globals input", v.Tag(), v); err != nil {
			return err
		}
	}
	return nil
}

// setProxyInputs copies the i'th element of each of this node's exported
// inputs onto the corresponding Proxy output. It runs as the Proxy node's own
// Process, once per child run, so the values it writes aren't wiped by that
// run's own reset pass before the sub-graph gets a chance to consume them.
func setProxyInputs(parent *flow.Graph, proxy *node.Node, n *node.Node, exported []exportedTerminal, i int) error {
	for _, exp := range exported {
		in, ok := n.InputTerminal(exp.exposedName)
		if !ok {
			continue
		}
		if exp.single {
			sfi, ok := in.(*terminal.SFI)
			if !ok {
				continue
			}
			v, ok := sfi.Get(parent, i)
			if !ok {
				v = vtype.EmptyBox(exp.tags[0])
			}
			out, err := proxy.Output(exp.exposedName)
			if err != nil {
				return err
			}
			if err := out.Set(v); err != nil {
				return err
			}
			continue
		}
		mfi, ok := in.(*terminal.MFI)
		if !ok {
			continue
		}
		subs, err := mfi.SubTerminals(parent)
		if err != nil {
			return err
		}
		mfo, err := proxy.PolyOutput(exp.exposedName)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			out, ok := parent.ResolveOutput(sub.Endpoint)
			if !ok {
				continue
			}
			sfo, ok := out.(*terminal.SFO)
			if !ok {
				continue
			}
			v, ok := sfo.Get(i)
			if !ok {
				v = vtype.EmptyBox(sfo.AcceptedTags()[0])
			}
			dst, err := mfo.Add(sub.Name, v.Tag())
			if err != nil {
				return err
			}
			if err := dst.PushBack(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectIterationOutputs appends the clone's marked outputs, as they stand
// after one completed run, onto this node's matching aggregate outputs: the
// whole data vector a single-feature export produced (or one empty box if it
// produced none), and for a multi-feature export, every sub-terminal's whole
// data vector, creating the aggregate sub-terminal the first time a name is
// seen.
func collectIterationOutputs(child *flow.Graph, n *node.Node, exported []exportedTerminal) error {
	for _, exp := range exported {
		childOut, ok := child.ResolveOutput(exp.childEP)
		if !ok {
			continue
		}
		if exp.single {
			sfo, ok := childOut.(*terminal.SFO)
			if !ok {
				continue
			}
			out, err := n.Output(exp.exposedName)
			if err != nil {
				return err
			}
			if !sfo.HasData() {
				if err := out.PushBack(vtype.EmptyBox(exp.tags[0])); err != nil {
					return err
				}
				continue
			}
			for _, v := range sfo.Data() {
				if err := out.PushBack(v); err != nil {
					return err
				}
			}
			continue
		}
		mfo, ok := childOut.(*terminal.MFO)
		if !ok {
			continue
		}
		aggregate, err := n.PolyOutput(exp.exposedName)
		if err != nil {
			return err
		}
		for _, name := range mfo.Order() {
			sub, ok := mfo.Sub(name)
			if !ok {
				continue
			}
			dst, ok := aggregate.Sub(name)
			if !ok {
				dst, err = aggregate.Add(name, sub.AcceptedTags()[0])
				if err != nil {
					return err
				}
			}
			for _, v := range sub.Data() {
				if err := dst.PushBack(v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
