/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"
)

type Prompt interface {
	String() string
}

type TextPrompt string

func (p TextPrompt) String() string {
	return string(p)
}

func NewTextPrompt(content string) Prompt {
	return TextPrompt(content)
}

// Template names of the embedded board prompts.
const (
	TemplateLegal     = "legal"
	TemplateEthics    = "ethics"
	TemplateFinancial = "financial"
	TemplateTechnical = "technical"
	TemplatePolicy    = "policy"
	TemplateVerdict   = "verdict"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates = mustParseTemplates()

func mustParseTemplates() map[string]*template.Template {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		bs, err := templatesFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			panic(err)
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		// text/template, not html/template: proposals must reach the model unescaped.
		out[name] = template.Must(template.New(name).Option("missingkey=error").Parse(string(bs)))
	}
	return out
}

// Names lists the embedded templates in lexical order.
func Names() []string {
	names := make([]string, 0, len(templates))
	for n := range templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an embedded template called name exists.
func Has(name string) bool {
	_, ok := templates[name]
	return ok
}

// Render executes the named template against data.
func Render(name string, data any) (string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

// TemplatePrompt is a Prompt bound to one embedded template and its data.
type TemplatePrompt struct {
	Name string
	Data any
}

func (p TemplatePrompt) String() string {
	s, err := Render(p.Name, p.Data)
	if err != nil {
		panic(err)
	}
	return s
}
