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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRecord_With(t *testing.T) {
	rec := NewReviewRecord("Deploy facial-recognition monitoring in exam halls")
	for _, f := range Fields[1:] {
		v, ok := rec.Get(f)
		assert.False(t, ok, f)
		assert.Empty(t, v, f)
	}

	legal, err := rec.With(FieldLegal, "Not Legal")
	require.NoError(t, err)
	assert.False(t, rec.IsSet(FieldLegal), "receiver must stay untouched")
	assert.Equal(t, "Not Legal", legal.LegalFeedback())
	assert.Equal(t, []Field{FieldLegal}, rec.Changed(legal))

	_, err = legal.With(FieldLegal, "Legal")
	assert.ErrorIs(t, err, ErrFieldAlreadySet)
	_, err = legal.With(FieldProposal, "other")
	assert.ErrorIs(t, err, ErrFieldImmutable)
	_, err = legal.With(Field("technical_analyst2"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestReviewRecord_EmptyValueCountsAsWritten(t *testing.T) {
	rec, err := NewReviewRecord("").With(FieldEthics, "")
	require.NoError(t, err)
	v, ok := rec.Get(FieldEthics)
	assert.True(t, ok)
	assert.Empty(t, v)
	_, err = rec.With(FieldEthics, "again")
	assert.ErrorIs(t, err, ErrFieldAlreadySet)
}

func TestReviewRecord_FieldIsolation(t *testing.T) {
	rec := NewReviewRecord("p")
	var err error
	rec, err = rec.With(FieldTechnical, "T")
	require.NoError(t, err)
	rec, err = rec.With(FieldEthics, "E")
	require.NoError(t, err)

	next, err := rec.With(FieldFinancial, "F")
	require.NoError(t, err)
	assert.Equal(t, "T", next.TechnicalFeedback())
	assert.Equal(t, "E", next.EthicsFeedback())
	assert.Equal(t, "p", next.Proposal())
	assert.Equal(t, []Field{FieldFinancial}, rec.Changed(next))
}

func TestReviewRecord_JSON(t *testing.T) {
	rec, err := NewReviewRecord("p").With(FieldPolicy, "")
	require.NoError(t, err)
	rec, err = rec.With(FieldVerdict, "No")
	require.NoError(t, err)

	js, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"proposal":"p","policy_feedback":"","final_verdict":"No"}`, string(js))

	var back ReviewRecord
	require.NoError(t, json.Unmarshal(js, &back))
	assert.Empty(t, rec.Changed(back))
	assert.False(t, back.IsSet(FieldLegal))
}
