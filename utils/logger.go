/*
 * Copyright 2026 keelstack.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package utils hosts shared helpers: named logrus loggers and environment
// variable lookups with defaults.
package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logrus logger type used by named loggers.
type Logger = logrus.Logger

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}

	defaultLevel  = EnvDefaultString("LOG_LEVEL", "info")
	defaultFormat = EnvDefaultString("LOG_FORMAT", "text")
)

// EnvDefaultString returns the environment value for key, or def when unset.
func EnvDefaultString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the boolean environment value for key, or def when
// unset or unparsable.
func EnvDefaultBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

type prefixFormatter struct {
	name  string
	inner logrus.Formatter
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.name, e.Message)
	return f.inner.Format(e)
}

// NewLogger returns the named logger, creating and registering it on first
// use. Level and format come from LOG_LEVEL and LOG_FORMAT.
func NewLogger(name string) *Logger {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return l
	}

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok = loggerRegistry[name]; ok {
		return l
	}

	l = logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(parseLevel(defaultLevel))
	l.SetFormatter(newFormatter(name, defaultFormat))
	loggerRegistry[name] = l
	return l
}

// SetLoggerLevel changes the level of a registered logger. Unknown names are
// ignored.
func SetLoggerLevel(name, level string) {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		l.SetLevel(parseLevel(level))
	}
}

func newFormatter(name, format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"}
	}
	return &prefixFormatter{
		name: name,
		inner: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		},
	}
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
