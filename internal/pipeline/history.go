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
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// StageRecord is an immutable log entry for one stage execution.
type StageRecord struct {
	Stage        string      `json:"stage"`
	Field        Field       `json:"field"`
	PromptDigest string      `json:"prompt_digest,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	EndedAt      time.Time   `json:"ended_at"`
	Status       StageStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
}

// StageStatus is the outcome of a stage run.
type StageStatus string

const (
	StageOK     StageStatus = "ok"
	StageFailed StageStatus = "failed"
)

// Run is the result of one board review: the last record produced and the
// history of executed stages. After a failure Record holds the fields of
// the stages that completed and no verdict.
type Run struct {
	ID      string        `json:"id"`
	Record  ReviewRecord  `json:"record"`
	History []StageRecord `json:"history"`
}

// Completed reports whether the terminal stage wrote its field.
func (r *Run) Completed() bool {
	return r != nil && r.Record.IsSet(FieldVerdict)
}

// Digest is the hex sha256 of a rendered prompt.
func Digest(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(h[:])
}
