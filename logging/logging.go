// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logging adapts zerolog to the syncrepl.Logger interface, mapping
// its three-level taxonomy (LOG, WARNING, FATAL) onto zerolog's levels.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"code.hybscloud.com/syncrepl"
)

// Logger writes syncrepl's log lines through a zerolog.Logger. FATAL lines
// are logged at zerolog's Error level, not zerolog.Logger.Fatal, because
// spec.md's FATAL means "terminate this connection", not "exit the process".
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing zerolog JSON lines to w, tagged with
// component="syncrepl".
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Str("component", "syncrepl").Logger()
	return &Logger{zl: zl}
}

// Wrap adapts an already-configured zerolog.Logger.
func Wrap(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Logf(level syncrepl.Level, format string, args ...any) {
	var event *zerolog.Event
	switch level {
	case syncrepl.LevelWarning:
		event = l.zl.Warn()
	case syncrepl.LevelFatal:
		event = l.zl.Error()
	default:
		event = l.zl.Info()
	}
	event.Msgf(format, args...)
}
