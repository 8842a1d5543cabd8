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

// Package scaffold generates starter files for a new keel-based project.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates
var templates embed.FS

// Options controls project generation.
type Options struct {
	// Module is the Go module path of the generated project.
	Module string
	// Name is the project name used in generated config. Defaults to the
	// base name of Module.
	Name string
	// Force overwrites files that already exist.
	Force bool
}

// source template -> destination path relative to the project directory.
var layout = map[string]string{
	"templates/gomod.tmpl":      "go.mod",
	"templates/main.go.tmpl":    "main.go",
	"templates/models.go.tmpl":  "models.go",
	"templates/migrations.tmpl": "migrations/migrations.go",
	"templates/env.tmpl":        ".env",
	"templates/keel.yaml.tmpl":  "keel.yaml",
	"templates/seed.sql.tmpl":   "configs/sql/development/001_example.sql",
}

// Generate writes the starter files into dir, creating it when missing, and
// returns the paths of the files it wrote. Existing files are left untouched
// unless opts.Force is set.
func Generate(dir string, opts Options) ([]string, error) {
	if opts.Module == "" {
		opts.Module = "app"
	}
	if opts.Name == "" {
		opts.Name = filepath.Base(opts.Module)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}

	written := make([]string, 0, len(layout))
	for src, rel := range layout {
		dst := filepath.Join(dir, rel)
		ok, err := writeTemplate(src, dst, opts)
		if err != nil {
			return written, fmt.Errorf("generate %s: %w", rel, err)
		}
		if ok {
			written = append(written, dst)
		}
	}
	return written, nil
}

func writeTemplate(src, dst string, opts Options) (bool, error) {
	if !opts.Force {
		if _, err := os.Stat(dst); err == nil {
			return false, nil
		}
	}

	raw, err := templates.ReadFile(src)
	if err != nil {
		return false, err
	}
	tmpl, err := template.New(filepath.Base(src)).Parse(string(raw))
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return false, err
	}
	if err := tmpl.Execute(f, opts); err != nil {
		_ = f.Close()
		return false, err
	}
	return true, f.Close()
}
