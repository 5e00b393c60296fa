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

package persist

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/geoflow/geoflow/flow"
	"github.com/geoflow/geoflow/gferrors"
)

// LoadYAML accepts a YAML-flavoured flowchart document, the same shape Load
// reads in JSON, for hand-written fixtures and tooling that prefer YAML's
// terser syntax (mgmt's yamlgraph2 loader makes the same call for its own
// graph documents). It normalises yaml.v2's map[interface{}]interface{}
// decoding into the map[string]interface{} shape encoding/json requires,
// then re-marshals to JSON and delegates to Load so both encodings share one
// decode path.
func LoadYAML(data []byte, g *flow.Graph, mode Mode) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &gferrors.FlowchartError{Reason: errors.Wrap(err, "invalid YAML").Error()}
	}
	jsonData, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return &gferrors.FlowchartError{Reason: errors.Wrap(err, "re-encoding YAML as JSON").Error()}
	}
	return Load(jsonData, g, mode)
}

// normalizeYAML walks a yaml.v2 decode tree, rewriting every
// map[interface{}]interface{} into a map[string]interface{} and every
// nested slice/map in place, so the result marshals through encoding/json
// without panicking on a non-string map key.
func normalizeYAML(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
