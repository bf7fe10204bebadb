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

// Package log is the levelled logger shared by the board pipeline, the model
// client and the CLI.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	ErrorLevel
)

var std = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return l
}

func (l Level) logrus() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// SetLogLevel changes the minimum level that gets written.
func SetLogLevel(level Level) {
	std.SetLevel(level.logrus())
}

// GetLogLevel reports the current minimum level.
func GetLogLevel() Level {
	switch std.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return DebugLevel
	case logrus.InfoLevel, logrus.WarnLevel:
		return InfoLevel
	default:
		return ErrorLevel
	}
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Debug, Info and Error take printf-style arguments. A trailing newline in
// the format is dropped since every entry already ends one line.
func Debug(format string, args ...any) {
	std.Debugf(strings.TrimSuffix(format, "\n"), args...)
}

func Info(format string, args ...any) {
	std.Infof(strings.TrimSuffix(format, "\n"), args...)
}

func Error(format string, args ...any) {
	std.Errorf(strings.TrimSuffix(format, "\n"), args...)
}
