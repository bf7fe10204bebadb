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

package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLogLevel(InfoLevel)

	SetLogLevel(InfoLevel)
	Debug("hidden %d", 1)
	Info("stage %s done\n", "legal_advisor")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "stage legal_advisor done")
	assert.NotContains(t, buf.String(), `done\n`)

	buf.Reset()
	SetLogLevel(DebugLevel)
	assert.Equal(t, DebugLevel, GetLogLevel())
	Debug("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")

	buf.Reset()
	SetLogLevel(ErrorLevel)
	Info("quiet")
	Error("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
