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

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// SeedManager discovers and executes SQL files to seed data. Files live
// under <root>/<environment>/ and run in lexical order, one transaction per
// file, so a NNN_name.sql convention controls ordering.
type SeedManager struct {
	db          *bun.DB
	environment string
	rootPath    string
	logger      Logger
}

// SeedResult contains the outcome of executing a single SQL file.
type SeedResult struct {
	File     string
	Duration time.Duration
}

// NewSeedManager creates a seed runner for the given environment.
func NewSeedManager(db *bun.DB, environment string) *SeedManager {
	return &SeedManager{
		db:          db,
		environment: environment,
		rootPath:    "configs/sql",
		logger:      GetLogger(),
	}
}

// SetRootPath sets the root directory from which SQL files are loaded.
func (s *SeedManager) SetRootPath(path string) {
	s.rootPath = path
}

// Run executes all discovered SQL files in order. The first failing file
// aborts the run; files executed before it stay committed.
func (s *SeedManager) Run(ctx context.Context) ([]SeedResult, error) {
	files, err := s.discover()
	if err != nil {
		return nil, fmt.Errorf("failed to list seed files: %w", err)
	}

	if len(files) == 0 {
		if s.logger != nil {
			s.logger.Info("No seed files found", "path", s.rootPath, "environment", s.environment)
		}
		return nil, nil
	}

	results := make([]SeedResult, 0, len(files))
	for _, file := range files {
		start := time.Now()
		if err := s.executeFile(ctx, file); err != nil {
			if s.logger != nil {
				s.logger.Error("Seed file execution failed", "file", file, "error", err)
			}
			return results, fmt.Errorf("seed file %s: %w", file, err)
		}
		result := SeedResult{File: file, Duration: time.Since(start)}
		results = append(results, result)
		if s.logger != nil {
			s.logger.Info("Seed file executed", "file", file, "duration", result.Duration)
		}
	}
	return results, nil
}

func (s *SeedManager) discover() ([]string, error) {
	dir := filepath.Join(s.rootPath, s.environment)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (s *SeedManager) executeFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// splitStatements breaks a SQL script on semicolons at the end of a
// statement, skipping blank lines and line comments. It does not attempt to
// parse string literals containing semicolons followed by newlines; seed
// files should keep one statement per block.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			statements = append(statements, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}
