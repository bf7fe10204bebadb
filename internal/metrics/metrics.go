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

// Package metrics counts and times board stages from eino graph callbacks.
package metrics

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "boardreview"

// Stage outcomes used as the status label.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type startKey struct{}

// Collector holds the stage metrics of one registry.
type Collector struct {
	stages   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Board stages executed, by stage and status.",
		}, []string{"stage", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of one board stage including the model call.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_total",
			Help:      "Board reviews executed, by status.",
		}, []string{"status"}),
	}
	for _, m := range []prometheus.Collector{c.stages, c.duration, c.runs} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler returns the eino callback handler feeding c.
func (c *Collector) Handler() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			return context.WithValue(ctx, startKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			c.observe(ctx, info, StatusOK)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, _ error) context.Context {
			c.observe(ctx, info, StatusFailed)
			return ctx
		}).
		Build()
}

func (c *Collector) observe(ctx context.Context, info *callbacks.RunInfo, status string) {
	if info == nil {
		return
	}
	switch info.Component {
	case compose.ComponentOfGraph:
		c.runs.WithLabelValues(status).Inc()
	case compose.ComponentOfLambda:
		c.stages.WithLabelValues(info.Name, status).Inc()
		if start, ok := ctx.Value(startKey{}).(time.Time); ok {
			c.duration.WithLabelValues(info.Name).Observe(time.Since(start).Seconds())
		}
	}
}
