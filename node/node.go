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

// Package node implements the Node type: a named bag of terminals and
// parameters plus a status machine, and the Hooks interface node authors
// implement to give a node behaviour. The split between Node (bookkeeping
// the engine owns) and Hooks (behaviour the author owns) mirrors mgmt's
// split between engine.Res and engine/traits.Base: a node embeds Base the
// same way a resource embeds traits.Base, picking up no-op defaults for
// every hook it doesn't care about.
package node

import (
	"fmt"
	"sort"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/param"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

// Status is the node's position in the scheduling state machine.
type Status int

const (
	Waiting Status = iota
	Ready
	Processing
	Done
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	case Processing:
		return "processing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Hooks is the behavioural contract a node type implements. Every method has
// a no-op default supplied by Base, so a node only overrides what it needs,
// the same way a resource only overrides Watch or CheckApply.
type Hooks interface {
	// OnReceive fires when the named input terminal gets new upstream data.
	OnReceive(n *Node, terminalName string)
	// OnClear fires when the node's outputs are cleared at the start of a run.
	OnClear(n *Node)
	// OnConnectInput fires after a connection attaches to one of this node's
	// inputs.
	OnConnectInput(n *Node, terminalName string)
	// OnConnectOutput fires after a connection attaches to one of this node's
	// outputs.
	OnConnectOutput(n *Node, terminalName string)
	// OnChangeParameter fires after a parameter's value changes, including
	// through master refresh.
	OnChangeParameter(n *Node, paramName string)
	// PostParameterLoad fires once after a flowchart load has set every
	// parameter, before the first run.
	PostParameterLoad(n *Node)
	// ParametersValid reports whether the node's current parameter values
	// are acceptable; a non-nil error blocks the node from ever becoming
	// Ready.
	ParametersValid(n *Node) error
	// InputsValid reports whether the node's current inputs let it run. The
	// default checks that every non-optional input has data and that every
	// multi-feature input's sub-terminals agree in length; override to add
	// node-specific readiness rules on top of that.
	InputsValid(n *Node, r terminal.Resolver) error
	// Process does the node's actual work, reading inputs and filling
	// outputs. It is called once per run while the node is Ready.
	Process(n *Node, r terminal.Resolver) error
}

// Base supplies no-op defaults for every Hooks method. Node authors embed
// Base and override only the methods they need.
type Base struct{}

func (Base) OnReceive(*Node, string)          {}
func (Base) OnClear(*Node)                    {}
func (Base) OnConnectInput(*Node, string)     {}
func (Base) OnConnectOutput(*Node, string)    {}
func (Base) OnChangeParameter(*Node, string)  {}
func (Base) PostParameterLoad(*Node)          {}
func (Base) ParametersValid(*Node) error      { return nil }

// InputsValid implements the default readiness rule: every
// non-optional input must have data, and every multi-feature input's
// connected sub-terminals must agree in length.
func (Base) InputsValid(n *Node, r terminal.Resolver) error {
	for _, name := range n.InputNames() {
		in := n.inputs[name]
		if sfi, ok := in.(*terminal.SFI); ok {
			if !sfi.Optional() && !sfi.HasData(r) {
				return fmt.Errorf("input %q has no data", in.FullName())
			}
			continue
		}
		if mfi, ok := in.(*terminal.MFI); ok {
			if err := mfi.CheckEqualLengths(r); err != nil {
				return err
			}
			if !mfi.Optional() && !mfi.HasData(r) {
				return fmt.Errorf("input %q has no data", in.FullName())
			}
		}
	}
	return nil
}

func (Base) Process(*Node, terminal.Resolver) error { return nil }

// Node is the engine-owned half of a graph vertex: its terminals, its
// parameters, its position, and its place in the run's status machine. Kind
// names the register/type pair Node was constructed from; Hooks is
// the author-supplied behaviour.
type Node struct {
	name     string
	register string
	kind     string
	hooks    Hooks

	inputs  map[string]terminal.Input
	outputs map[string]terminal.Output
	// order preserves declaration order for deterministic persistence and
	// listing; maps alone don't.
	inputOrder  []string
	outputOrder []string

	params      map[string]*param.Parameter
	paramOrder  []string

	autorun bool
	x, y    float64

	status Status
}

// New builds an empty node. Hooks defaults to Base{} if nil.
func New(name, register, kind string, hooks Hooks) *Node {
	if hooks == nil {
		hooks = Base{}
	}
	return &Node{
		name:     name,
		register: register,
		kind:     kind,
		hooks:    hooks,
		inputs:   map[string]terminal.Input{},
		outputs:  map[string]terminal.Output{},
		params:   map[string]*param.Parameter{},
		autorun:  true,
	}
}

func (n *Node) Name() string     { return n.name }
func (n *Node) Register() string { return n.register }
func (n *Node) Kind() string     { return n.kind }
func (n *Node) Hooks() Hooks     { return n.hooks }

// Autorun reports whether RunAll may start a run from this node. It only
// has an effect on root nodes (see IsRoot); a node with input terminals is
// never a RunAll entry point, whatever its Autorun flag.
func (n *Node) Autorun() bool      { return n.autorun }
func (n *Node) SetAutorun(v bool)  { n.autorun = v }

// Position returns the node's canvas coordinates, carried through
// persistence purely for the benefit of an external editor.
func (n *Node) Position() (x, y float64)  { return n.x, n.y }
func (n *Node) SetPosition(x, y float64)  { n.x, n.y = x, y }

func (n *Node) Status() Status     { return n.status }
func (n *Node) setStatus(s Status) { n.status = s }

// IsRoot reports whether the node has no input terminals at all: such
// nodes are RunAll's scheduling entry points when their Autorun flag is set.
func (n *Node) IsRoot() bool { return len(n.inputs) == 0 }

// IsLeaf reports whether the node has no output terminals at all.
func (n *Node) IsLeaf() bool { return len(n.outputs) == 0 }

// --- terminal declaration -------------------------------------------------

func (n *Node) addInput(name string, in terminal.Input) {
	n.inputs[name] = in
	n.inputOrder = append(n.inputOrder, name)
}

func (n *Node) addOutput(name string, out terminal.Output) {
	n.outputs[name] = out
	n.outputOrder = append(n.outputOrder, name)
}

// AddInput declares a single-feature input terminal.
func (n *Node) AddInput(name string, tags vtype.Set, optional bool) *terminal.SFI {
	t := terminal.NewSFI(n.name, name, tags, optional, false)
	n.addInput(name, t)
	return t
}

// AddVectorInput declares a single-feature input terminal flagged as
// vector-shaped ("vector" just marks intent for an external editor and
// for NestNode's marked-terminal discovery; it changes no connection rule).
func (n *Node) AddVectorInput(name string, tags vtype.Set, optional bool) *terminal.SFI {
	t := terminal.NewSFI(n.name, name, tags, optional, true)
	n.addInput(name, t)
	return t
}

// AddPolyInput declares a multi-feature input terminal.
func (n *Node) AddPolyInput(name string, tags vtype.Set, optional bool) *terminal.MFI {
	t := terminal.NewMFI(n.name, name, tags, optional, false)
	n.addInput(name, t)
	return t
}

// AddOutput declares a single-feature output terminal.
func (n *Node) AddOutput(name string, tags vtype.Set) *terminal.SFO {
	t := terminal.NewSFO(n.name, name, tags, false)
	n.addOutput(name, t)
	return t
}

// AddVectorOutput declares a single-feature output terminal flagged vector.
func (n *Node) AddVectorOutput(name string, tags vtype.Set) *terminal.SFO {
	t := terminal.NewSFO(n.name, name, tags, true)
	n.addOutput(name, t)
	return t
}

// AddPolyOutput declares a multi-feature output terminal.
func (n *Node) AddPolyOutput(name string, tags vtype.Set) *terminal.MFO {
	t := terminal.NewMFO(n.name, name, tags, false)
	n.addOutput(name, t)
	return t
}

// AddParam declares a new parameter. It fails only if the initial value's
// tag mismatches, same as param.New.
func (n *Node) AddParam(label, help string, tag vtype.Tag, initial vtype.Box) (*param.Parameter, error) {
	p, err := param.New(label, help, tag, initial)
	if err != nil {
		return nil, err
	}
	n.params[label] = p
	n.paramOrder = append(n.paramOrder, label)
	return p, nil
}

// --- terminal/param access -------------------------------------------------

// Input looks up a single-feature input by name.
func (n *Node) Input(name string) (*terminal.SFI, error) {
	t, ok := n.inputs[name]
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	sfi, ok := t.(*terminal.SFI)
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	return sfi, nil
}

// PolyInput looks up a multi-feature input by name.
func (n *Node) PolyInput(name string) (*terminal.MFI, error) {
	t, ok := n.inputs[name]
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	mfi, ok := t.(*terminal.MFI)
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	return mfi, nil
}

// Output looks up a single-feature output by name.
func (n *Node) Output(name string) (*terminal.SFO, error) {
	t, ok := n.outputs[name]
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	sfo, ok := t.(*terminal.SFO)
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	return sfo, nil
}

// PolyOutput looks up a multi-feature output by name.
func (n *Node) PolyOutput(name string) (*terminal.MFO, error) {
	t, ok := n.outputs[name]
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	mfo, ok := t.(*terminal.MFO)
	if !ok {
		return nil, &gferrors.UnknownTerminalError{Node: n.name, Terminal: name}
	}
	return mfo, nil
}

// InputTerminal returns the raw Input interface by name, for code that
// dispatches on family rather than a known concrete type (e.g. the graph's
// connection algebra).
func (n *Node) InputTerminal(name string) (terminal.Input, bool) {
	t, ok := n.inputs[name]
	return t, ok
}

// OutputTerminal returns the raw Output interface by name.
func (n *Node) OutputTerminal(name string) (terminal.Output, bool) {
	t, ok := n.outputs[name]
	return t, ok
}

// InputNames returns every input terminal's name in declaration order.
func (n *Node) InputNames() []string { return append([]string(nil), n.inputOrder...) }

// OutputNames returns every output terminal's name in declaration order.
func (n *Node) OutputNames() []string { return append([]string(nil), n.outputOrder...) }

// ParamNames returns every parameter's name in declaration order.
func (n *Node) ParamNames() []string { return append([]string(nil), n.paramOrder...) }

// Param looks up a parameter by label.
func (n *Node) Param(label string) (*param.Parameter, error) {
	p, ok := n.params[label]
	if !ok {
		return nil, fmt.Errorf("node %q has no parameter %q", n.name, label)
	}
	return p, nil
}

// Params returns the full parameter map. Callers must not mutate it; use
// Param and Parameter.Set instead.
func (n *Node) Params() map[string]*param.Parameter { return n.params }

// SetParam assigns v to the named parameter and fires OnChangeParameter,
// the node-level entry point every direct assignment of a parameter's value
// (UI edits, flowchart load) should go through instead of calling
// Parameter.Set directly; a master refresh goes through RefreshParam.
func (n *Node) SetParam(label string, v vtype.Box) error {
	p, err := n.Param(label)
	if err != nil {
		return err
	}
	if err := p.Set(v); err != nil {
		return err
	}
	n.hooks.OnChangeParameter(n, label)
	return nil
}

// RefreshParam re-slaves the named parameter to its master's current value,
// firing OnChangeParameter only if the value actually moved. It is a no-op
// if the parameter has no master.
func (n *Node) RefreshParam(label string) error {
	p, err := n.Param(label)
	if err != nil {
		return err
	}
	if p.Master() == nil {
		return nil
	}
	before := p.Value()
	if err := p.RefreshFromMaster(); err != nil {
		return err
	}
	after := p.Value()
	if before.Tag() != after.Tag() || before.String() != after.String() {
		n.hooks.OnChangeParameter(n, label)
	}
	return nil
}

// SortedOutputNames is a small convenience for callers that want a stable,
// alphabetical iteration order rather than declaration order.
func (n *Node) SortedOutputNames() []string {
	names := n.OutputNames()
	sort.Strings(names)
	return names
}

// --- status machine --------------------------------------------------------

// UpdateStatus recomputes the node's status from its current inputs and
// parameters: a Waiting or Done node becomes Ready exactly when
// ParametersValid and InputsValid both pass; a Ready or Processing node is
// left alone (the scheduler itself drives those transitions). It returns
// whether the status actually changed.
func (n *Node) UpdateStatus(r terminal.Resolver) bool {
	before := n.status
	if n.status == Ready || n.status == Processing {
		return false
	}
	if err := n.hooks.ParametersValid(n); err != nil {
		n.status = Waiting
		return n.status != before
	}
	if err := n.hooks.InputsValid(n, r); err != nil {
		n.status = Waiting
		return n.status != before
	}
	n.status = Ready
	return n.status != before
}

// BeginProcessing transitions Ready -> Processing. It is a bug in the
// scheduler, not a user error, to call this on a node that isn't Ready.
func (n *Node) BeginProcessing() {
	if n.status != Ready {
		panic(fmt.Sprintf("node: %s: BeginProcessing called while status is %s", n.name, n.status))
	}
	n.status = Processing
}

// FinishProcessing transitions Processing -> Done.
func (n *Node) FinishProcessing() {
	if n.status != Processing {
		panic(fmt.Sprintf("node: %s: FinishProcessing called while status is %s", n.name, n.status))
	}
	n.status = Done
}

// Reset returns the node to Waiting, clearing every output and invoking
// OnClear, at the start of a new run.
func (n *Node) Reset() {
	n.status = Waiting
	for _, name := range n.outputOrder {
		n.outputs[name].Clear()
	}
	n.hooks.OnClear(n)
}
