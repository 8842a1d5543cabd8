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

// Command keel manages keel-based projects: scaffolding, schema migrations,
// and database utilities.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/keelstack/keel/database"

	"github.com/uptrace/bun"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "keel",
		Usage:   "scaffolding and database tooling for keel projects",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a keel.yaml config file",
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			migrateCommand(),
			dbCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadSettings resolves configuration for a command: the --config file when
// given, a keel.yaml in the working directory when present, otherwise the
// environment alone.
func loadSettings(cmd *cli.Command) (*database.Settings, error) {
	if path := cmd.String("config"); path != "" {
		return database.LoadFile(path)
	}
	if _, err := os.Stat("keel.yaml"); err == nil {
		return database.LoadFile("keel.yaml")
	}
	return database.Load()
}

// connect opens the configured database and returns the handle together with
// a disconnect function.
func connect(ctx context.Context, cmd *cli.Command) (*bun.DB, func(), error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	manager := database.NewManager(settings.ConnectionConfig())
	manager.SetLogger(database.GetLogger())
	if err := manager.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return manager.GetDB(), func() { _ = manager.Disconnect() }, nil
}
