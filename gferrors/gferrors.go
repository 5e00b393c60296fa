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

// Package gferrors holds the engine's error taxonomy. Every kind is a
// distinct type so callers can tell them apart with errors.As, and every
// kind carries enough context to explain itself without the caller needing
// to re-derive it.
package gferrors

import "fmt"

// TypeMismatchError is raised when a connection or parameter assignment
// crosses incompatible type tags.
type TypeMismatchError struct {
	Context string
	Want    string
	Got     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch in %s: want %s, got %s", e.Context, e.Want, e.Got)
}

// CycleDetectedError is raised when a connection would introduce a cycle.
type CycleDetectedError struct {
	From string
	To   string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("connecting %s to %s would introduce a cycle", e.From, e.To)
}

// UnknownTerminalError is raised when a terminal is looked up by a name that
// doesn't exist on the node, or exists with the wrong family.
type UnknownTerminalError struct {
	Node     string
	Terminal string
}

func (e *UnknownTerminalError) Error() string {
	return fmt.Sprintf("no such terminal %q on node %q", e.Terminal, e.Node)
}

// UnknownNodeError is raised when a node is looked up by a name the graph
// doesn't hold.
type UnknownNodeError struct {
	Name string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("no such node %q", e.Name)
}

// UnknownTypeError is raised when a register is asked to construct a
// type-name it doesn't have a factory for.
type UnknownTypeError struct {
	Register string
	Type     string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("register %q has no node type %q", e.Register, e.Type)
}

// GlobalNotFoundError is raised when {{NAME}} substitution references a
// global that doesn't exist.
type GlobalNotFoundError struct {
	Name string
}

func (e *GlobalNotFoundError) Error() string {
	return fmt.Sprintf("global %q not found", e.Name)
}

// FlowchartError is raised for malformed flowchart JSON, or in strict load
// mode, for a reference to a missing register, node, or terminal.
type FlowchartError struct {
	Reason string
}

func (e *FlowchartError) Error() string {
	return "flowchart error: " + e.Reason
}

// IOError is raised when a sub-flowchart file can't be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("i/o error reading %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NodeProcessingError wraps a failure raised from inside a node's process
// hook. The node is left in a non-DONE state; the run unwinds.
type NodeProcessingError struct {
	Node string
	Err  error
}

func (e *NodeProcessingError) Error() string {
	return fmt.Sprintf("node %q failed to process: %v", e.Node, e.Err)
}

func (e *NodeProcessingError) Unwrap() error { return e.Err }

// MismatchedLengthError is raised when a multi-feature input's connected
// sub-terminals don't all have the same length. The default InputsValid
// readiness check returns it, so the node stays Waiting and its process()
// never sees ragged data.
type MismatchedLengthError struct {
	Terminal string
}

func (e *MismatchedLengthError) Error() string {
	return fmt.Sprintf("poly-input %q has sub-terminals of differing length", e.Terminal)
}
