// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"io"

	log "github.com/sirupsen/logrus"
)

type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for debugging information. The tool will run properly on large programs with
	// that level of debug information.
	DebugLevel

	// TraceLevel=5 - the level for tracing. The tool will not run properly on large programs with that level
	// of information, but this is useful on smaller testing programs.
	TraceLevel
)

var logrusLevels = map[LogLevel]log.Level{
	ErrLevel:   log.ErrorLevel,
	WarnLevel:  log.WarnLevel,
	InfoLevel:  log.InfoLevel,
	DebugLevel: log.DebugLevel,
	TraceLevel: log.TraceLevel,
}

// LogGroup is the logger passed to every step of the analysis. Its output never influences the results of the
// analysis.
type LogGroup struct {
	level       LogLevel
	silenceWarn bool
	logger      *log.Logger
}

// NewLogGroup returns a log group that is configured to the logging settings stored inside the config
func NewLogGroup(config *Config) *LogGroup {
	l := &LogGroup{
		level:       LogLevel(config.LogLevel),
		silenceWarn: config.SilenceWarn,
		logger:      log.New(),
	}
	l.logger.SetFormatter(&log.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	l.SetLevel(l.level)
	return l
}

// SetLevel changes the level of the log group
func (l *LogGroup) SetLevel(level LogLevel) {
	l.level = level
	lvl, ok := logrusLevels[level]
	if !ok {
		if level > TraceLevel {
			lvl = log.TraceLevel
		} else {
			lvl = log.ErrorLevel
		}
	}
	l.logger.SetLevel(lvl)
}

// Level returns the level of the log group
func (l *LogGroup) Level() LogLevel {
	return l.level
}

// SetAllOutput sets all the output writers to the writer provided
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// Tracef prints to the trace logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.logger.Tracef(format, v...)
	}
}

// Debugf prints to the debug logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.logger.Debugf(format, v...)
	}
}

// Infof prints to the info logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.logger.Infof(format, v...)
	}
}

// Warnf prints to the warning logger, unless warnings are silenced. Arguments are handled in the manner of Printf
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel && !l.silenceWarn {
		l.logger.Warnf(format, v...)
	}
}

// Errorf prints to the error logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.logger.Errorf(format, v...)
	}
}

// LogsDebug returns true when debug messages are printed. Use it to guard expensive debug output.
func (l *LogGroup) LogsDebug() bool {
	return l.level >= DebugLevel
}

// LogsTrace returns true when trace messages are printed
func (l *LogGroup) LogsTrace() bool {
	return l.level >= TraceLevel
}
