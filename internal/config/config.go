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

// Package config loads the board configuration once at process start. The
// resulting Config is passed explicitly to the model client and the board;
// nothing downstream reads the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/cloudwego/boardreview/internal/pipeline/steps"
	"github.com/cloudwego/boardreview/llm"
	"github.com/invopop/jsonschema"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModelName   = "gemini-2.0-flash-thinking-exp-01-21"
	DefaultTemperature = float32(0.2)
)

// Environment variables consulted by Load.
const (
	EnvAPIType      = "API_TYPE"
	EnvAPIKey       = "API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvModelName    = "MODEL_NAME"
	EnvBaseURL      = "BASE_URL"
	EnvDebug        = "DEBUG"
)

type Config struct {
	AppName    string                    `yaml:"app_name" json:"app_name,omitempty" jsonschema:"description=display name of the application"`
	AppVersion string                    `yaml:"app_version" json:"app_version,omitempty"`
	Debug      bool                      `yaml:"debug" json:"debug,omitempty" jsonschema:"description=enable debug logging"`
	OutputDir  string                    `yaml:"output_dir" json:"output_dir,omitempty" jsonschema:"description=directory for saved review results"`
	LogsDir    string                    `yaml:"logs_dir" json:"logs_dir,omitempty" jsonschema:"description=directory for saved run logs"`
	Model      llm.ModelConfig           `yaml:"model" json:"model"`
	Experts    map[string]steps.Override `yaml:"experts" json:"experts,omitempty" jsonschema:"description=per-stage title and focus overrides"`
	Workflow   []string                  `yaml:"workflow" json:"workflow,omitempty" jsonschema:"description=stage names in execution order; must end with final_verdict"`
}

// Default returns the built-in configuration.
func Default() *Config {
	temp := DefaultTemperature
	return &Config{
		AppName:    "Board Agent",
		AppVersion: "1.0.0",
		OutputDir:  "output",
		LogsDir:    "logs",
		Model: llm.ModelConfig{
			APIType:     llm.ModelTypeGemini,
			ModelName:   DefaultModelName,
			Temperature: &temp,
		},
		Workflow: append([]string(nil), steps.DefaultWorkflow...),
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIType); ok && v != "" {
		c.Model.APIType = llm.NewModelType(v)
	}
	if v, ok := lookup(EnvModelName); ok && v != "" {
		c.Model.ModelName = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Model.BaseURL = v
	}
	if c.Model.APIKey == "" {
		for _, k := range []string{EnvAPIKey, EnvGoogleAPIKey} {
			if v, ok := lookup(k); ok && v != "" {
				c.Model.APIKey = v
				break
			}
		}
	}
	if v, ok := lookup(EnvDebug); ok {
		c.Debug = strings.EqualFold(v, "true")
	}
}

// Validate checks the model type and the workflow.
func (c *Config) Validate() error {
	if c.Model.APIType == llm.ModelTypeUnknown {
		return fmt.Errorf("config: unknown model type")
	}
	if c.Model.ModelName == "" {
		return fmt.Errorf("config: model_name is required")
	}
	if t := c.Model.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("config: temperature %v out of range [0,2]", *t)
	}
	if len(c.Workflow) == 0 {
		return fmt.Errorf("config: workflow is empty")
	}
	for i, name := range c.Workflow {
		last := i == len(c.Workflow)-1
		if name == steps.StageVerdict {
			if !last {
				return fmt.Errorf("config: %s must be the last workflow stage", steps.StageVerdict)
			}
			continue
		}
		if last {
			return fmt.Errorf("config: workflow must end with %s", steps.StageVerdict)
		}
		if _, ok := steps.DefaultRole(name); !ok {
			return fmt.Errorf("config: unknown workflow stage %q", name)
		}
	}
	for name := range c.Experts {
		if _, ok := steps.DefaultRole(name); !ok {
			return fmt.Errorf("config: unknown expert %q", name)
		}
	}
	return nil
}

// BoardOptions maps the configuration onto the board builder options.
func (c *Config) BoardOptions() steps.BoardOptions {
	return steps.BoardOptions{
		Workflow: append([]string(nil), c.Workflow...),
		Experts:  c.Experts,
	}
}

// SecretReader asks the user for a secret without echoing it.
type SecretReader func(prompt string) (string, error)

// ResolveCredential fills in the model API key, asking read for it when the
// provider needs one and none was configured.
func ResolveCredential(cfg *Config, read SecretReader) error {
	if cfg.Model.APIKey != "" || !cfg.Model.NeedsAPIKey() {
		return nil
	}
	if read == nil {
		return fmt.Errorf("config: %s is not set", EnvAPIKey)
	}
	key, err := read(fmt.Sprintf("Enter your %s API key: ", cfg.Model.APIType))
	if err != nil {
		return fmt.Errorf("read api key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("config: empty api key")
	}
	cfg.Model.APIKey = key
	return nil
}

// PromptSecret reads a secret from the terminal without echo.
func PromptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Schema returns the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		DoNotReference: true,
		FieldNameTag:   "yaml",
	}
	return r.Reflect(&Config{})
}
