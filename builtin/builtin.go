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

// Package builtin supplies a handful of literal and arithmetic node types,
// grounded on the IntNode/FloatNode/BoolNode/TextNode family of a node-based
// dataflow engine's own built-ins: a literal node holds one parameter and
// mirrors it onto a same-named output every run, and a small arithmetic
// node demonstrates a multi-input process(). This is the kind of register a
// dynamic plugin loader would otherwise supply in a full build; here it is
// just a register a caller installs directly.
package builtin

import (
	"fmt"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/node"
	"github.com/geoflow/geoflow/register"
	"github.com/geoflow/geoflow/terminal"
	"github.com/geoflow/geoflow/vtype"
)

// RegisterName is the register every type in this package installs under.
const RegisterName = "builtin"

const valueParam = "value"

// literalHooks backs Int, Float, Bool: a single parameter of the declared
// tag, copied onto the "value" output every run.
type literalHooks struct {
	node.Base
	tag vtype.Tag
}

func (h literalHooks) Process(n *node.Node, r terminal.Resolver) error {
	p, err := n.Param(valueParam)
	if err != nil {
		return err
	}
	out, err := n.Output(valueParam)
	if err != nil {
		return err
	}
	return out.Set(p.Value())
}

func newLiteral(typeName string, tag vtype.Tag, zero vtype.Box, help string) register.Factory {
	return func(name string) *node.Node {
		n := node.New(name, RegisterName, typeName, literalHooks{tag: tag})
		n.AddOutput(valueParam, vtype.NewSet(tag))
		_, _ = n.AddParam(valueParam, help, tag, zero)
		return n
	}
}

// textHooks substitutes {{NAME}} globals into the "value" parameter before
// mirroring it onto the "value" output, grounded on TextNode::process()'s
// manager.substitute_globals call.
type textHooks struct{ node.Base }

func (textHooks) Process(n *node.Node, r terminal.Resolver) error {
	p, err := n.Param(valueParam)
	if err != nil {
		return err
	}
	out, err := n.Output(valueParam)
	if err != nil {
		return err
	}
	g, ok := r.(*flow.Graph)
	if !ok {
		return fmt.Errorf("builtin: %s: resolver does not support global substitution", n.Name())
	}
	text, err := g.SubstituteGlobals(p.Value().Str())
	if err != nil {
		return err
	}
	return out.Set(vtype.NewBox(vtype.String, text))
}

func newText(name string) *node.Node {
	n := node.New(name, RegisterName, "Text", textHooks{})
	n.AddOutput(valueParam, vtype.NewSet(vtype.String))
	_, _ = n.AddParam(valueParam, "text, may contain {{NAME}} placeholders", vtype.String, vtype.NewBox(vtype.String, ""))
	return n
}

// numeric reads a box declared Int or Float as a float64, the common case
// an arithmetic node needs regardless of which literal fed it.
func numeric(b vtype.Box) float64 {
	if b.Tag() == vtype.Int {
		return float64(b.Int())
	}
	return b.Float()
}

// floatAddHooks sums "in1" and "in2" into "result", accepting either an Int
// or a Float box on each input since an expression-style arithmetic node
// has no reason to care which numeric literal fed it; two Int-typed literal
// outputs can connect straight into it.
type floatAddHooks struct{ node.Base }

func (floatAddHooks) Process(n *node.Node, r terminal.Resolver) error {
	in1, err := n.Input("in1")
	if err != nil {
		return err
	}
	in2, err := n.Input("in2")
	if err != nil {
		return err
	}
	out, err := n.Output("result")
	if err != nil {
		return err
	}
	a, ok := in1.Get(r, 0)
	if !ok {
		return nil
	}
	b, ok := in2.Get(r, 0)
	if !ok {
		return nil
	}
	return out.Set(vtype.NewBox(vtype.Float, numeric(a)+numeric(b)))
}

func newFloatAdd(name string) *node.Node {
	n := node.New(name, RegisterName, "FloatAdd", floatAddHooks{})
	numericTags := vtype.NewSet(vtype.Int, vtype.Float)
	n.AddInput("in1", numericTags, false)
	n.AddInput("in2", numericTags, false)
	n.AddOutput("result", vtype.NewSet(vtype.Float))
	return n
}

// NewRegister builds the "builtin" register populated with Int, Float,
// Bool, Text, and FloatAdd.
func NewRegister() *register.NodeRegister {
	r := register.New(RegisterName)
	r.Add("Int", newLiteral("Int", vtype.Int, vtype.NewBox(vtype.Int, int64(0)), "integer value"))
	r.Add("Float", newLiteral("Float", vtype.Float, vtype.NewBox(vtype.Float, 0.0), "floating point value"))
	r.Add("Bool", newLiteral("Bool", vtype.Bool, vtype.NewBox(vtype.Bool, false), "boolean value"))
	r.Add("Text", newText)
	r.Add("FloatAdd", newFloatAdd)
	return r
}
