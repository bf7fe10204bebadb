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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStep writes "<name>:<proposal>" into its field.
type mockStep struct {
	name  string
	field Field
	err   error
	calls *[]string
}

func (m *mockStep) Name() string  { return m.name }
func (m *mockStep) Output() Field { return m.field }

func (m *mockStep) Prompt(rec ReviewRecord) (string, error) {
	return m.name + "|" + rec.Proposal(), nil
}

func (m *mockStep) Run(ctx context.Context, rec ReviewRecord) (ReviewRecord, error) {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name)
	}
	if m.err != nil {
		return rec, m.err
	}
	return rec.With(m.field, m.name+":"+rec.Proposal())
}

// tamperStep writes its own field and also a field it does not own.
type tamperStep struct{ mockStep }

func (s *tamperStep) Run(ctx context.Context, rec ReviewRecord) (ReviewRecord, error) {
	out, err := rec.With(s.field, "mine")
	if err != nil {
		return rec, err
	}
	return out.With(FieldPolicy, "not mine")
}

// lazyStep returns the record untouched.
type lazyStep struct{ mockStep }

func (s *lazyStep) Run(ctx context.Context, rec ReviewRecord) (ReviewRecord, error) {
	return rec, nil
}

func newBoard(t *testing.T, failAt string, err error) (*Pipeline, *[]string) {
	t.Helper()
	calls := &[]string{}
	steps := []Step{
		&mockStep{name: "legal", field: FieldLegal, calls: calls},
		&mockStep{name: "ethics", field: FieldEthics, calls: calls},
		&mockStep{name: "financial", field: FieldFinancial, calls: calls},
		&mockStep{name: "verdict", field: FieldVerdict, calls: calls},
	}
	for _, s := range steps {
		if s.Name() == failAt {
			s.(*mockStep).err = err
		}
	}
	def, derr := NewLinear("legal", "ethics", "financial", "verdict")
	require.NoError(t, derr)
	p, perr := New(def, steps, Options{})
	require.NoError(t, perr)
	return p, calls
}

func TestPipeline_Run_Success(t *testing.T) {
	p, calls := newBoard(t, "", nil)
	run, err := p.Run(context.Background(), "cams")
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.NotEmpty(t, run.ID)
	assert.True(t, run.Completed())
	assert.Equal(t, []string{"legal", "ethics", "financial", "verdict"}, *calls)
	assert.Equal(t, "legal:cams", run.Record.LegalFeedback())
	assert.Equal(t, "ethics:cams", run.Record.EthicsFeedback())
	assert.Equal(t, "financial:cams", run.Record.FinancialFeedback())
	assert.Equal(t, "verdict:cams", run.Record.FinalVerdict())
	assert.False(t, run.Record.IsSet(FieldPolicy))

	require.Len(t, run.History, 4)
	for i, name := range []string{"legal", "ethics", "financial", "verdict"} {
		assert.Equal(t, name, run.History[i].Stage)
		assert.Equal(t, StageOK, run.History[i].Status)
		assert.Equal(t, Digest(name+"|cams"), run.History[i].PromptDigest)
		assert.False(t, run.History[i].EndedAt.Before(run.History[i].StartedAt))
	}
}

func TestPipeline_Run_EmptyProposal(t *testing.T) {
	p, _ := newBoard(t, "", nil)
	run, err := p.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "verdict:", run.Record.FinalVerdict())
}

func TestPipeline_Run_FailFast(t *testing.T) {
	boom := errors.New("model unavailable")
	p, calls := newBoard(t, "financial", boom)

	run, err := p.Run(context.Background(), "cams")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage financial")
	require.NotNil(t, run)
	assert.False(t, run.Completed())

	assert.Equal(t, []string{"legal", "ethics", "financial"}, *calls, "stages after the failure must not run")
	assert.True(t, run.Record.IsSet(FieldLegal))
	assert.True(t, run.Record.IsSet(FieldEthics))
	assert.False(t, run.Record.IsSet(FieldFinancial))
	assert.False(t, run.Record.IsSet(FieldVerdict))

	require.Len(t, run.History, 3)
	last := run.History[2]
	assert.Equal(t, StageFailed, last.Status)
	assert.Equal(t, "model unavailable", last.Error)
}

func TestPipeline_Run_FailOnFirstStage(t *testing.T) {
	boom := errors.New("401 unauthorized")
	p, calls := newBoard(t, "legal", boom)
	run, err := p.Run(context.Background(), "cams")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"legal"}, *calls)
	assert.Empty(t, run.Record.Changed(NewReviewRecord("cams")))
}

func TestPipeline_Execute_RejectsPrewrittenField(t *testing.T) {
	p, calls := newBoard(t, "", nil)
	rec, err := NewReviewRecord("cams").With(FieldEthics, "stale")
	require.NoError(t, err)

	run, err := p.Execute(context.Background(), rec)
	assert.ErrorIs(t, err, ErrFieldAlreadySet)
	assert.Equal(t, []string{"legal"}, *calls)
	assert.Equal(t, "stale", run.Record.EthicsFeedback())
}

func TestPipeline_Run_StageContract(t *testing.T) {
	cases := []struct {
		name string
		step Step
		want error
	}{
		{"tampering", &tamperStep{mockStep{name: "legal", field: FieldLegal}}, ErrFieldTampered},
		{"not written", &lazyStep{mockStep{name: "legal", field: FieldLegal}}, ErrOutputNotWritten},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def, err := NewLinear("legal", "verdict")
			require.NoError(t, err)
			p, err := New(def, []Step{tc.step, &mockStep{name: "verdict", field: FieldVerdict}}, Options{})
			require.NoError(t, err)

			run, err := p.Run(context.Background(), "cams")
			assert.ErrorIs(t, err, tc.want)
			assert.False(t, run.Record.IsSet(FieldLegal))
			assert.False(t, run.Record.IsSet(FieldPolicy))
		})
	}
}

func TestNew_Rejects(t *testing.T) {
	def, err := NewLinear("technical", "policy", "verdict")
	require.NoError(t, err)

	_, err = New(def, []Step{
		&mockStep{name: "technical", field: FieldPolicy},
		&mockStep{name: "policy", field: FieldPolicy},
		&mockStep{name: "verdict", field: FieldVerdict},
	}, Options{})
	assert.ErrorIs(t, err, ErrFieldAliased)

	_, err = New(def, []Step{
		&mockStep{name: "technical", field: FieldTechnical},
		&mockStep{name: "verdict", field: FieldVerdict},
	}, Options{})
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, err = New(def, []Step{
		&mockStep{name: "technical", field: FieldTechnical},
		&mockStep{name: "technical", field: FieldTechnical},
	}, Options{})
	assert.ErrorIs(t, err, ErrDuplicateStage)

	_, err = New(def, []Step{nil}, Options{})
	assert.Error(t, err)
}

func TestPipeline_Accessors(t *testing.T) {
	p, _ := newBoard(t, "", nil)
	assert.Equal(t, []string{"legal", "ethics", "financial", "verdict"}, p.Order())
	assert.Equal(t, "legal", p.Definition().Start)
	s, ok := p.Step("ethics")
	require.True(t, ok)
	assert.Equal(t, FieldEthics, s.Output())
}
