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
	"fmt"
	"sort"
)

// Definition is the static transition table of a board run: a start stage,
// one successor per non-terminal stage and a terminal stage.
type Definition struct {
	Start    string            `json:"start" yaml:"start"`
	Edges    map[string]string `json:"edges" yaml:"edges"`
	Terminal string            `json:"terminal" yaml:"terminal"`
}

// NewLinear chains names in the given order. The last name is terminal.
func NewLinear(names ...string) (Definition, error) {
	if len(names) == 0 {
		return Definition{}, ErrEmptyDefinition
	}
	seen := make(map[string]bool, len(names))
	d := Definition{
		Start:    names[0],
		Edges:    make(map[string]string, len(names)-1),
		Terminal: names[len(names)-1],
	}
	for i, n := range names {
		if seen[n] {
			return Definition{}, fmt.Errorf("%w: %s", ErrDuplicateStage, n)
		}
		seen[n] = true
		if i+1 < len(names) {
			d.Edges[n] = names[i+1]
		}
	}
	return d, nil
}

// Nodes returns every stage named by d, sorted.
func (d Definition) Nodes() []string {
	set := make(map[string]struct{}, len(d.Edges)+2)
	if d.Start != "" {
		set[d.Start] = struct{}{}
	}
	if d.Terminal != "" {
		set[d.Terminal] = struct{}{}
	}
	for from, to := range d.Edges {
		set[from] = struct{}{}
		set[to] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Order walks d from Start to Terminal and returns the stages in execution
// order. It fails on joins, cycles, dangling chains and unreachable stages.
func (d Definition) Order() ([]string, error) {
	if d.Start == "" {
		return nil, ErrEmptyDefinition
	}
	if d.Terminal == "" {
		return nil, ErrNoTerminal
	}
	if next, ok := d.Edges[d.Terminal]; ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTerminalHasSuccessor, d.Terminal, next)
	}
	indeg := make(map[string]int, len(d.Edges))
	for _, to := range d.Edges {
		indeg[to]++
		if indeg[to] > 1 {
			return nil, fmt.Errorf("%w: %s", ErrBranching, to)
		}
	}
	if indeg[d.Start] > 0 {
		return nil, fmt.Errorf("%w: back to start %s", ErrCycle, d.Start)
	}

	nodes := d.Nodes()
	order := make([]string, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))
	for cur := d.Start; ; {
		if visited[cur] {
			return nil, fmt.Errorf("%w: at %s", ErrCycle, cur)
		}
		visited[cur] = true
		order = append(order, cur)
		if cur == d.Terminal {
			break
		}
		next, ok := d.Edges[cur]
		if !ok {
			return nil, fmt.Errorf("%w: chain stops at %s", ErrNoTerminal, cur)
		}
		cur = next
	}
	for _, n := range nodes {
		if !visited[n] {
			return nil, fmt.Errorf("%w: %s", ErrUnreachable, n)
		}
	}
	return order, nil
}

// Validate checks d and that every stage maps to a step, with no two steps
// sharing an output field.
func (d Definition) Validate(steps map[string]Step) error {
	order, err := d.Order()
	if err != nil {
		return err
	}
	owner := make(map[Field]string, len(order))
	for _, name := range order {
		step, ok := steps[name]
		if !ok || step == nil {
			return fmt.Errorf("%w: %s", ErrUnknownStage, name)
		}
		out := step.Output()
		if !out.Valid() {
			return fmt.Errorf("stage %s: %w: %q", name, ErrUnknownField, out)
		}
		if out == FieldProposal {
			return fmt.Errorf("stage %s: %w: %s", name, ErrFieldImmutable, out)
		}
		if prev, dup := owner[out]; dup {
			return fmt.Errorf("%w: %s by %s and %s", ErrFieldAliased, out, prev, name)
		}
		owner[out] = name
	}
	return nil
}
