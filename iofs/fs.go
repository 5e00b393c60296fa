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

// Package iofs wraps afero.Fs the way mgmt wraps it for its deploy
// mechanism: a thin pass-through that lets a nest node read a sub-flowchart
// off a real disk in production and off an in-memory filesystem in tests,
// without either caller knowing which.
package iofs

import (
	"fmt"

	"github.com/spf13/afero"
)

// Fs is a named afero filesystem. Embedding afero.Afero rather than the bare
// afero.Fs interface picks up its convenience helpers (ReadFile, Exists, ...)
// directly on the wrapper.
type Fs struct {
	*afero.Afero
}

// New wraps an existing afero.Fs.
func New(fs afero.Fs) *Fs {
	return &Fs{Afero: &afero.Afero{Fs: fs}}
}

// NewOsFs builds a wrapper rooted at the real operating-system filesystem.
func NewOsFs() *Fs { return New(afero.NewOsFs()) }

// NewMemMapFs builds a wrapper rooted at an in-memory filesystem, for tests
// and for embedding a fixed set of sub-flowcharts into a binary.
func NewMemMapFs() *Fs { return New(afero.NewMemMapFs()) }

// URI returns a stringified identifier for this filesystem's root, useful in
// log lines and in IOError messages when a sub-flowchart can't be found.
func (fs *Fs) URI() string { return fmt.Sprintf("%T://", fs.Fs) }
