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
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/boardreview/llm/log"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
)

const defaultGraphName = "board_review"

// Options configures a Pipeline.
type Options struct {
	// Name is the eino graph name reported to callbacks.
	Name string
	// Handlers receive node start/end/error events for every stage.
	Handlers []callbacks.Handler
}

// Pipeline runs the stages of a Definition one at a time, fail-fast.
type Pipeline struct {
	def   Definition
	order []string
	steps map[string]Step
	opts  Options
}

// New validates def against steps and returns a runnable Pipeline. Steps
// are keyed by Step.Name.
func New(def Definition, steps []Step, opts Options) (*Pipeline, error) {
	byName := make(map[string]Step, len(steps))
	for i, s := range steps {
		if s == nil {
			return nil, fmt.Errorf("pipeline: step %d is nil", i)
		}
		if _, dup := byName[s.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, s.Name())
		}
		byName[s.Name()] = s
	}
	if err := def.Validate(byName); err != nil {
		return nil, err
	}
	order, _ := def.Order()
	if opts.Name == "" {
		opts.Name = defaultGraphName
	}
	return &Pipeline{def: def, order: order, steps: byName, opts: opts}, nil
}

// Definition returns the transition table the pipeline was built from.
func (p *Pipeline) Definition() Definition { return p.def }

// Order returns the stage names in execution order.
func (p *Pipeline) Order() []string {
	return append([]string(nil), p.order...)
}

// Step returns the step registered under name.
func (p *Pipeline) Step(name string) (Step, bool) {
	s, ok := p.steps[name]
	return s, ok
}

// Run reviews proposal with a fresh record.
func (p *Pipeline) Run(ctx context.Context, proposal string) (*Run, error) {
	return p.Execute(ctx, NewReviewRecord(proposal))
}

// Execute runs every stage in order starting from rec. The returned Run is
// never nil once the graph has started: on failure it holds the record as
// the last successful stage left it, and the error wraps the stage error.
func (p *Pipeline) Execute(ctx context.Context, rec ReviewRecord) (*Run, error) {
	run := &Run{ID: uuid.NewString(), Record: rec}
	var stageErr error

	g := compose.NewGraph[ReviewRecord, ReviewRecord]()
	for _, name := range p.order {
		node := compose.InvokableLambda(p.stageFunc(run, p.steps[name], &stageErr))
		if err := g.AddLambdaNode(name, node, compose.WithNodeName(name)); err != nil {
			return nil, fmt.Errorf("add stage %s: %w", name, err)
		}
	}
	if err := g.AddEdge(compose.START, p.def.Start); err != nil {
		return nil, err
	}
	for _, from := range p.order {
		to, ok := p.def.Edges[from]
		if !ok {
			to = compose.END
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", from, to, err)
		}
	}
	r, err := g.Compile(ctx,
		compose.WithGraphName(p.opts.Name),
		compose.WithNodeTriggerMode(compose.AllPredecessor),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", p.opts.Name, err)
	}

	var invokeOpts []compose.Option
	if len(p.opts.Handlers) > 0 {
		invokeOpts = append(invokeOpts, compose.WithCallbacks(p.opts.Handlers...))
	}
	log.Info("run %s: reviewing proposal through %d stages", run.ID, len(p.order))
	if _, err := r.Invoke(ctx, rec, invokeOpts...); err != nil {
		if stageErr != nil {
			return run, stageErr
		}
		return run, fmt.Errorf("run %s: %w", run.ID, err)
	}
	log.Info("run %s: verdict ready", run.ID)
	return run, nil
}

func (p *Pipeline) stageFunc(run *Run, step Step, failed *error) func(context.Context, ReviewRecord) (ReviewRecord, error) {
	return func(ctx context.Context, in ReviewRecord) (ReviewRecord, error) {
		entry := StageRecord{
			Stage:     step.Name(),
			Field:     step.Output(),
			StartedAt: time.Now(),
		}
		if pb, ok := step.(PromptBuilder); ok {
			if prompt, err := pb.Prompt(in); err == nil {
				entry.PromptDigest = Digest(prompt)
			}
		}

		var (
			out ReviewRecord
			err error
		)
		if in.IsSet(step.Output()) {
			err = fmt.Errorf("%w: %s", ErrFieldAlreadySet, step.Output())
		} else {
			out, err = step.Run(ctx, in)
		}
		if err == nil {
			err = checkStageOutput(step, in, out)
		}
		entry.EndedAt = time.Now()

		if err != nil {
			entry.Status = StageFailed
			entry.Error = err.Error()
			run.History = append(run.History, entry)
			*failed = fmt.Errorf("stage %s: %w", step.Name(), err)
			log.Error("run %s: stage %s failed: %v", run.ID, step.Name(), err)
			return in, err
		}
		entry.Status = StageOK
		run.History = append(run.History, entry)
		run.Record = out
		log.Info("run %s: stage %s wrote %s (%s)", run.ID, step.Name(), step.Output(), entry.EndedAt.Sub(entry.StartedAt).Round(time.Millisecond))
		return out, nil
	}
}

// checkStageOutput enforces that a stage wrote its own field and nothing else.
func checkStageOutput(step Step, in, out ReviewRecord) error {
	if !out.IsSet(step.Output()) {
		return fmt.Errorf("%w: %s", ErrOutputNotWritten, step.Output())
	}
	for _, f := range in.Changed(out) {
		if f != step.Output() {
			return fmt.Errorf("%w: %s", ErrFieldTampered, f)
		}
	}
	return nil
}
