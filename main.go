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

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cloudwego/boardreview/internal/config"
	"github.com/cloudwego/boardreview/internal/metrics"
	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/internal/pipeline/steps"
	"github.com/cloudwego/boardreview/internal/utils"
	"github.com/cloudwego/boardreview/llm"
	"github.com/cloudwego/boardreview/llm/log"
	"github.com/cloudwego/boardreview/llm/mcp"
	"github.com/cloudwego/boardreview/version"
	"github.com/cloudwego/eino/callbacks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Usage = `boardreview <Action> [Flags]
Action:
   review       put a proposal in front of the review board (built-in proposal by default)
   mcp          run as a MCP server exposing the board review
   stages       print the configured board order
   schema       print the JSON schema of the config file
   version      print the version of boardreview
`

const defaultProposal = `We want to deploy an AI system in public schools that uses students' webcam footage during online exams to
detect facial expressions and predict cheating behavior. The system flags suspicious behavior for review
by school authorities.`

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	verdictStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func main() {
	flags := flag.NewFlagSet("boardreview", flag.ExitOnError)

	flagHelp := flags.Bool("h", false, "Show help message.")
	flagVerbose := flags.Bool("verbose", false, "Verbose mode.")
	flagConfig := flags.String("config", "", "Path of the YAML config file.")
	flagProposal := flags.String("proposal", "", "Proposal file to review, '-' reads stdin.")
	flagFormat := flags.String("format", "text", "Output format of review: text or json.")
	flagSave := flags.Bool("save", false, "Save the review result to output_dir and its log to logs_dir.")
	flagMetrics := flags.String("metrics-addr", "", "Serve Prometheus metrics on this address (mcp only).")

	flags.Usage = func() {
		fmt.Fprint(os.Stderr, Usage)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flags.PrintDefaults()
	}

	if len(os.Args) < 2 {
		flags.Usage()
		os.Exit(1)
	}
	action := strings.ToLower(os.Args[1])
	flags.Parse(os.Args[2:])
	if *flagHelp {
		flags.Usage()
		os.Exit(0)
	}

	switch action {
	case "version":
		fmt.Fprintf(os.Stdout, "%s\n", version.Version)

	case "schema":
		js, err := utils.MarshalJSONIndent(config.Schema())
		if err != nil {
			log.Error("Failed to generate schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "%s\n", js)

	case "stages":
		cfg := loadConfig(*flagConfig, *flagVerbose)
		for i, name := range cfg.Workflow {
			role, ok := steps.DefaultRole(name)
			if !ok {
				fmt.Fprintf(os.Stdout, "%d. %s\n", i+1, name)
				continue
			}
			if ov, ok := cfg.Experts[name]; ok {
				role, _ = steps.ResolveRole(name, ov)
			}
			fmt.Fprintf(os.Stdout, "%d. %s (%s) -> %s\n", i+1, name, role.Title, role.Field)
		}

	case "review":
		cfg := loadConfig(*flagConfig, *flagVerbose)
		proposal, err := readProposal(*flagProposal)
		if err != nil {
			log.Error("Failed to read proposal: %v\n", err)
			os.Exit(1)
		}

		var logBuf bytes.Buffer
		if *flagSave {
			log.SetOutput(io.MultiWriter(os.Stderr, &logBuf))
		}

		board := newBoard(cfg, []callbacks.Handler{llm.CallbackHandler{}})
		run, err := board.Run(context.Background(), proposal)
		if *flagSave && run != nil {
			if serr := saveRun(cfg, run, logBuf.Bytes()); serr != nil {
				log.Error("Failed to save run: %v\n", serr)
			}
		}
		if err != nil {
			log.Error("Board review failed: %v\n", err)
			os.Exit(1)
		}

		switch *flagFormat {
		case "json":
			js, err := utils.MarshalJSONIndent(run)
			if err != nil {
				log.Error("Failed to marshal run: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "%s\n", js)
		default:
			printReport(os.Stdout, board, run)
		}

	case "mcp":
		cfg := loadConfig(*flagConfig, *flagVerbose)
		handlers := []callbacks.Handler{llm.CallbackHandler{}}
		if *flagMetrics != "" {
			reg := prometheus.NewRegistry()
			collector, err := metrics.NewCollector(reg)
			if err != nil {
				log.Error("Failed to register metrics: %v\n", err)
				os.Exit(1)
			}
			handlers = append(handlers, collector.Handler())
			go serveMetrics(*flagMetrics, reg)
		}

		svr := mcp.NewServer(mcp.ServerOptions{
			ServerName:    cfg.AppName,
			ServerVersion: version.Version,
			Board:         newBoard(cfg, handlers),
		})
		if err := svr.ServeStdio(); err != nil {
			log.Error("Failed to run MCP server: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown action: %s\n", action)
		flags.Usage()
		os.Exit(1)
	}
}

func loadConfig(path string, verbose bool) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Error("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if verbose || cfg.Debug {
		log.SetLogLevel(log.DebugLevel)
	}
	return cfg
}

func newBoard(cfg *config.Config, handlers []callbacks.Handler) *pipeline.Pipeline {
	if err := config.ResolveCredential(cfg, config.PromptSecret); err != nil {
		log.Error("Failed to resolve credential: %v\n", err)
		os.Exit(1)
	}
	client, err := llm.NewChatClientFromConfig(cfg.Model)
	if err != nil {
		log.Error("Failed to create model client: %v\n", err)
		os.Exit(1)
	}
	opts := cfg.BoardOptions()
	opts.Handlers = handlers
	board, err := steps.NewBoard(client, opts)
	if err != nil {
		log.Error("Failed to build board: %v\n", err)
		os.Exit(1)
	}
	return board
}

func readProposal(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return defaultProposal, nil
	case "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func printReport(w io.Writer, board *pipeline.Pipeline, run *pipeline.Run) {
	for _, name := range board.Order() {
		step, _ := board.Step(name)
		if step.Output() == pipeline.FieldVerdict {
			continue
		}
		title := name
		if es, ok := step.(*steps.ExpertStep); ok {
			title = es.Role.Label
		}
		text, _ := run.Record.Get(step.Output())
		fmt.Fprintf(w, "%s\n%s\n\n", headerStyle.Render(title), text)
	}
	fmt.Fprintf(w, "%s\n%s\n", verdictStyle.Render("Final Verdict"), run.Record.FinalVerdict())
}

func saveRun(cfg *config.Config, run *pipeline.Run, logs []byte) error {
	js, err := utils.MarshalJSONIndent(run)
	if err != nil {
		return err
	}
	if err := utils.MustWriteFile(filepath.Join(cfg.OutputDir, run.ID+".json"), js); err != nil {
		return err
	}
	return utils.MustWriteFile(filepath.Join(cfg.LogsDir, run.ID+".log"), logs)
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("Metrics server stopped: %v\n", err)
	}
}
