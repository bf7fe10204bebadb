// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinear(t *testing.T) {
	d, err := NewLinear("technical_analyst", "ethics_expert", "final_verdict")
	require.NoError(t, err)
	assert.Equal(t, "technical_analyst", d.Start)
	assert.Equal(t, "final_verdict", d.Terminal)
	assert.Equal(t, map[string]string{
		"technical_analyst": "ethics_expert",
		"ethics_expert":     "final_verdict",
	}, d.Edges)

	order, err := d.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"technical_analyst", "ethics_expert", "final_verdict"}, order)

	_, err = NewLinear()
	assert.ErrorIs(t, err, ErrEmptyDefinition)

	_, err = NewLinear("technical_analyst", "ethics_expert", "technical_analyst", "final_verdict")
	assert.ErrorIs(t, err, ErrDuplicateStage)
}

func TestNewLinear_SingleStage(t *testing.T) {
	d, err := NewLinear("final_verdict")
	require.NoError(t, err)
	order, err := d.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"final_verdict"}, order)
}

func TestDefinition_Order_Errors(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
		want error
	}{
		{"empty", Definition{}, ErrEmptyDefinition},
		{"no terminal", Definition{Start: "a", Edges: map[string]string{"a": "b"}}, ErrNoTerminal},
		{"terminal successor", Definition{Start: "a", Terminal: "b", Edges: map[string]string{"a": "b", "b": "c"}}, ErrTerminalHasSuccessor},
		{"join", Definition{Start: "a", Terminal: "c", Edges: map[string]string{"a": "c", "b": "c"}}, ErrBranching},
		{"back to start", Definition{Start: "a", Terminal: "c", Edges: map[string]string{"a": "b", "b": "a"}}, ErrCycle},
		{"inner cycle", Definition{Start: "a", Terminal: "d", Edges: map[string]string{"a": "b", "b": "c", "c": "b"}}, ErrBranching},
		{"dangling", Definition{Start: "a", Terminal: "d", Edges: map[string]string{"a": "b"}}, ErrNoTerminal},
		{"unreachable", Definition{Start: "a", Terminal: "b", Edges: map[string]string{"a": "b", "x": "y"}}, ErrUnreachable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.def.Order()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDefinition_Nodes(t *testing.T) {
	d := Definition{Start: "a", Terminal: "c", Edges: map[string]string{"a": "b", "b": "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, d.Nodes())
}
