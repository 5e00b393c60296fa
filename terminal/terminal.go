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

// Package terminal implements the four terminal variants a Node exposes:
// single/multi-feature input and output. Cross-terminal references (an
// input's upstream, an output's downstream set) are held as Endpoints rather
// than pointers to the other terminal, so that connecting two terminals
// never creates a two-way ownership cycle between them; the Graph is the
// only thing that resolves an Endpoint back into a live terminal. This
// mirrors the weak back-reference discipline mgmt's pgraph package keeps
// between a Vertex and the Graph's own Adjacency map, rather than letting
// vertices point at each other directly.
package terminal

import "github.com/geoflow/geoflow/vtype"

// Side distinguishes input terminals from output terminals.
type Side int

const (
	In Side = iota
	Out
)

func (s Side) String() string {
	if s == In {
		return "in"
	}
	return "out"
}

// Family distinguishes single-feature terminals from multi-feature ones.
type Family int

const (
	Single Family = iota
	Multi
)

func (f Family) String() string {
	if f == Single {
		return "single"
	}
	return "multi"
}

// Endpoint names a terminal by its owning node's name and its own name
// within that node. It is the only way one terminal refers to another.
type Endpoint struct {
	Node     string
	Terminal string
}

func (e Endpoint) String() string { return e.Node + "." + e.Terminal }

// Resolver looks up the live terminal behind an Endpoint. The Graph is the
// only implementation; terminals never hold one directly, it is always
// passed in by whatever call needs to cross an edge.
type Resolver interface {
	ResolveOutput(Endpoint) (Output, bool)
	ResolveInput(Endpoint) (Input, bool)
}

// Terminal is the contract shared by all four variants.
type Terminal interface {
	Name() string
	FullName() string
	AcceptedTags() vtype.Set
	Side() Side
	Family() Family
	Marked() bool
	SetMarked(bool)
	IsVector() bool
}

// Input is implemented by SFI and MFI.
type Input interface {
	Terminal
	HasData(Resolver) bool
	Size(Resolver) int
	Clear()
}

// Output is implemented by SFO and MFO.
type Output interface {
	Terminal
	HasData() bool
	IsTouched() bool
	Size() int
	Clear()
	Touch()
	Downstreams() []Endpoint
	AddDownstream(Endpoint)
	RemoveDownstream(Endpoint)
}

// base holds the fields shared by all four terminal variants.
type base struct {
	name       string
	parentName string
	tags       vtype.Set
	marked     bool
	vector     bool
}

func newBase(parentName, name string, tags vtype.Set, vector bool) base {
	return base{name: name, parentName: parentName, tags: tags, vector: vector}
}

func (b *base) Name() string             { return b.name }
func (b *base) FullName() string         { return b.parentName + "." + b.name }
func (b *base) AcceptedTags() vtype.Set  { return b.tags }
func (b *base) Marked() bool             { return b.marked }
func (b *base) SetMarked(marked bool)    { b.marked = marked }
func (b *base) IsVector() bool           { return b.vector }
func (b *base) accepts(t vtype.Tag) bool { return b.tags.Accepts(t) }
