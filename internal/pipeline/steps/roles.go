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

package steps

import (
	"fmt"
	"sort"

	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/llm/prompt"
)

// Stage names.
const (
	StageLegal     = "legal_advisor"
	StageEthics    = "ethics_expert"
	StageFinancial = "financial_analyst"
	StageTechnical = "technical_analyst"
	StagePolicy    = "policy_analyst"
	StageVerdict   = "final_verdict"
)

// DefaultWorkflow is the board order used when none is configured.
var DefaultWorkflow = []string{
	StageTechnical,
	StageEthics,
	StageLegal,
	StageFinancial,
	StagePolicy,
	StageVerdict,
}

// ClassicWorkflow is the three-member board: legal, ethics, policy.
var ClassicWorkflow = []string{
	StageLegal,
	StageEthics,
	StagePolicy,
	StageVerdict,
}

// Role describes one board member.
type Role struct {
	Name     string         `json:"name"`
	Title    string         `json:"title"`
	Focus    string         `json:"focus"`
	Label    string         `json:"label"` // heading used in the verdict prompt
	Field    pipeline.Field `json:"field"`
	Template string         `json:"template"`
}

var defaultRoles = map[string]Role{
	StageLegal: {
		Name: StageLegal, Title: "Legal Advisor", Label: "Legal",
		Focus:    "Indian Penal Code compliance and legal risks",
		Field:    pipeline.FieldLegal,
		Template: prompt.TemplateLegal,
	},
	StageEthics: {
		Name: StageEthics, Title: "Ethics Expert", Label: "Ethics",
		Focus:    "Ethical concerns and fairness issues",
		Field:    pipeline.FieldEthics,
		Template: prompt.TemplateEthics,
	},
	StageFinancial: {
		Name: StageFinancial, Title: "Financial Analyst", Label: "Financial",
		Focus:    "Cost analysis, ROI, and sustainability",
		Field:    pipeline.FieldFinancial,
		Template: prompt.TemplateFinancial,
	},
	StageTechnical: {
		Name: StageTechnical, Title: "Technical Analyst", Label: "Technical",
		Focus:    "Feasibility and technical risks",
		Field:    pipeline.FieldTechnical,
		Template: prompt.TemplateTechnical,
	},
	StagePolicy: {
		Name: StagePolicy, Title: "Public Policy Analyst", Label: "Policy",
		Focus:    "Social and political risks",
		Field:    pipeline.FieldPolicy,
		Template: prompt.TemplatePolicy,
	},
}

// DefaultRole returns the built-in description of an expert stage.
func DefaultRole(name string) (Role, bool) {
	r, ok := defaultRoles[name]
	return r, ok
}

// ExpertNames lists the expert stages, sorted.
func ExpertNames() []string {
	names := make([]string, 0, len(defaultRoles))
	for n := range defaultRoles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Override replaces the title and focus of an expert; empty values keep
// the built-in text.
type Override struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Focus string `json:"focus,omitempty" yaml:"focus,omitempty"`
}

// ResolveRole applies ov to the built-in role called name.
func ResolveRole(name string, ov Override) (Role, error) {
	r, ok := defaultRoles[name]
	if !ok {
		return Role{}, fmt.Errorf("%w: %s", pipeline.ErrUnknownStage, name)
	}
	if ov.Name != "" {
		r.Title = ov.Name
	}
	if ov.Focus != "" {
		r.Focus = ov.Focus
	}
	return r, nil
}
