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

// Package register implements the NodeRegister / NodeRegisterMap pair: a
// named group of node type constructors, and the graph-level map of every
// register a flowchart may draw node types from. Grounded on mgmt's
// kind-keyed constructor map in engine/resources.go (registeredResources /
// RegisterResource / NewResource), generalised from a single flat global
// map to one map per register so a flowchart can name which register
// ("builtin", "gis", a plugin's own name, ...) each node type comes from.
package register

import (
	"sort"
	"sync"

	"github.com/geoflow/geoflow/gferrors"
	"github.com/geoflow/geoflow/node"
)

// Factory builds a fresh, unconfigured node of one type under the given
// instance name.
type Factory func(name string) *node.Node

// NodeRegister is a named collection of node type constructors.
type NodeRegister struct {
	name string

	mu    sync.RWMutex
	types map[string]Factory
}

// New builds an empty register under the given name.
func New(name string) *NodeRegister {
	return &NodeRegister{name: name, types: map[string]Factory{}}
}

// Name returns the register's name, as referenced by a flowchart's node
// type pair [register, type].
func (r *NodeRegister) Name() string { return r.name }

// Add registers a type's constructor. It panics on a duplicate type name
// within the same register, mirroring mgmt's RegisterResource, which treats
// a duplicate kind as a programming error caught at init time rather than a
// runtime condition.
func (r *NodeRegister) Add(typeName string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[typeName]; exists {
		panic("register: " + r.name + " already has a type named " + typeName)
	}
	r.types[typeName] = fn
}

// TypeNames returns every registered type name, sorted, for listing in an
// external editor.
func (r *NodeRegister) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for k := range r.types {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Create builds a new node instance of typeName under instanceName. It
// returns UnknownTypeError if the register has no such type.
func (r *NodeRegister) Create(instanceName, typeName string) (*node.Node, error) {
	r.mu.RLock()
	fn, ok := r.types[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, &gferrors.UnknownTypeError{Register: r.name, Type: typeName}
	}
	return fn(instanceName), nil
}

// Map is the keyed collection of every register a graph may construct node
// types from, addressed by the register name that appears in a flowchart's
// node [register, type] pair.
type Map struct {
	mu        sync.RWMutex
	registers map[string]*NodeRegister
}

// NewMap builds an empty register map.
func NewMap() *Map {
	return &Map{registers: map[string]*NodeRegister{}}
}

// Add installs a register under its own name. It panics on a duplicate
// register name, for the same reason NodeRegister.Add panics on a
// duplicate type name.
func (m *Map) Add(r *NodeRegister) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.registers[r.Name()]; exists {
		panic("register: a register named " + r.Name() + " is already installed")
	}
	m.registers[r.Name()] = r
}

// Get looks up a register by name.
func (m *Map) Get(name string) (*NodeRegister, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.registers[name]
	return r, ok
}

// RegisterNames returns every installed register's name, sorted.
func (m *Map) RegisterNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.registers))
	for k := range m.registers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Create looks up registerName then builds typeName from it, as a flowchart
// loader does for every node it reads off disk.
func (m *Map) Create(instanceName, registerName, typeName string) (*node.Node, error) {
	r, ok := m.Get(registerName)
	if !ok {
		return nil, &gferrors.UnknownTypeError{Register: registerName, Type: typeName}
	}
	return r.Create(instanceName, typeName)
}
