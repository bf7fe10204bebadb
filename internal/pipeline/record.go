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
	"fmt"
)

// Field names one slot of a ReviewRecord. The string values are the names
// used in JSON output and prompts.
type Field string

const (
	FieldProposal  Field = "proposal"
	FieldLegal     Field = "legal_feedback"
	FieldEthics    Field = "ethics_feedback"
	FieldFinancial Field = "financial_feedback"
	FieldTechnical Field = "technical_feedback"
	FieldPolicy    Field = "policy_feedback"
	FieldVerdict   Field = "final_verdict"
)

// Fields lists every slot in declaration order.
var Fields = []Field{
	FieldProposal, FieldLegal, FieldEthics, FieldFinancial,
	FieldTechnical, FieldPolicy, FieldVerdict,
}

// Valid reports whether f is a declared field.
func (f Field) Valid() bool {
	return f.bit() != 0
}

func (f Field) bit() fieldSet {
	for i, d := range Fields {
		if d == f {
			return 1 << i
		}
	}
	return 0
}

type fieldSet uint8

// ReviewRecord carries the proposal and the board's feedback through one
// run. It is a value: With returns an updated copy and never touches the
// receiver, so a stage can not change a record another stage holds.
//
// Every feedback field starts unset and can be written exactly once. An
// empty model answer still counts as written.
type ReviewRecord struct {
	proposal  string
	legal     string
	ethics    string
	financial string
	technical string
	policy    string
	verdict   string

	written fieldSet
}

// NewReviewRecord starts a record for proposal with all feedback unset.
func NewReviewRecord(proposal string) ReviewRecord {
	return ReviewRecord{proposal: proposal, written: FieldProposal.bit()}
}

func (r ReviewRecord) Proposal() string          { return r.proposal }
func (r ReviewRecord) LegalFeedback() string     { return r.legal }
func (r ReviewRecord) EthicsFeedback() string    { return r.ethics }
func (r ReviewRecord) FinancialFeedback() string { return r.financial }
func (r ReviewRecord) TechnicalFeedback() string { return r.technical }
func (r ReviewRecord) PolicyFeedback() string    { return r.policy }
func (r ReviewRecord) FinalVerdict() string      { return r.verdict }

// IsSet reports whether f has been written.
func (r ReviewRecord) IsSet(f Field) bool {
	b := f.bit()
	return b != 0 && r.written&b != 0
}

// Get returns the value of f and whether it has been written.
func (r ReviewRecord) Get(f Field) (string, bool) {
	p := r.slot(f)
	if p == nil {
		return "", false
	}
	return *p, r.IsSet(f)
}

// With returns a copy of r with f set to value.
func (r ReviewRecord) With(f Field, value string) (ReviewRecord, error) {
	switch {
	case !f.Valid():
		return r, fmt.Errorf("%w: %q", ErrUnknownField, f)
	case f == FieldProposal:
		return r, fmt.Errorf("%w: %s", ErrFieldImmutable, f)
	case r.IsSet(f):
		return r, fmt.Errorf("%w: %s", ErrFieldAlreadySet, f)
	}
	out := r
	*out.slot(f) = value
	out.written |= f.bit()
	return out, nil
}

// Changed lists the fields whose value or written state differs between r
// and other, in declaration order.
func (r ReviewRecord) Changed(other ReviewRecord) []Field {
	var diff []Field
	for _, f := range Fields {
		a, aok := r.Get(f)
		b, bok := other.Get(f)
		if a != b || aok != bok {
			diff = append(diff, f)
		}
	}
	return diff
}

func (r *ReviewRecord) slot(f Field) *string {
	switch f {
	case FieldProposal:
		return &r.proposal
	case FieldLegal:
		return &r.legal
	case FieldEthics:
		return &r.ethics
	case FieldFinancial:
		return &r.financial
	case FieldTechnical:
		return &r.technical
	case FieldPolicy:
		return &r.policy
	case FieldVerdict:
		return &r.verdict
	}
	return nil
}

type recordJSON struct {
	Proposal  string  `json:"proposal"`
	Legal     *string `json:"legal_feedback,omitempty"`
	Ethics    *string `json:"ethics_feedback,omitempty"`
	Financial *string `json:"financial_feedback,omitempty"`
	Technical *string `json:"technical_feedback,omitempty"`
	Policy    *string `json:"policy_feedback,omitempty"`
	Verdict   *string `json:"final_verdict,omitempty"`
}

// MarshalJSON writes the proposal and every written field.
func (r ReviewRecord) MarshalJSON() ([]byte, error) {
	get := func(f Field) *string {
		if v, ok := r.Get(f); ok {
			return &v
		}
		return nil
	}
	return json.Marshal(recordJSON{
		Proposal:  r.proposal,
		Legal:     get(FieldLegal),
		Ethics:    get(FieldEthics),
		Financial: get(FieldFinancial),
		Technical: get(FieldTechnical),
		Policy:    get(FieldPolicy),
		Verdict:   get(FieldVerdict),
	})
}

// UnmarshalJSON restores a record; absent fields stay unset.
func (r *ReviewRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec := NewReviewRecord(raw.Proposal)
	for f, v := range map[Field]*string{
		FieldLegal:     raw.Legal,
		FieldEthics:    raw.Ethics,
		FieldFinancial: raw.Financial,
		FieldTechnical: raw.Technical,
		FieldPolicy:    raw.Policy,
		FieldVerdict:   raw.Verdict,
	} {
		if v == nil {
			continue
		}
		var err error
		if rec, err = rec.With(f, *v); err != nil {
			return err
		}
	}
	*r = rec
	return nil
}
