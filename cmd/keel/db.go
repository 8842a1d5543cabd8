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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/keelstack/keel/database"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func dbCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "database utilities",
		Commands: []*cli.Command{
			{
				Name:  "ping",
				Usage: "check database connectivity",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					db, disconnect, err := connect(ctx, cmd)
					if err != nil {
						return err
					}
					defer disconnect()

					start := time.Now()
					if err := db.PingContext(ctx); err != nil {
						return err
					}
					fmt.Println(color.GreenString("OK"), "database reachable in", time.Since(start))
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "print connection pool statistics",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					settings, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					manager := database.NewManager(settings.ConnectionConfig())
					manager.SetLogger(database.GetLogger())
					if err := manager.Connect(ctx); err != nil {
						return err
					}
					defer func() { _ = manager.Disconnect() }()

					status := manager.HealthCheck(ctx)
					out := struct {
						Health *database.HealthStatus `json:"health"`
						Stats  *database.DBStats      `json:"stats"`
					}{status, manager.GetStats()}

					data, err := json.MarshalIndent(out, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "execute environment-scoped SQL seed files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "root directory of seed files (default from settings)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					settings, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					db, disconnect, err := connect(ctx, cmd)
					if err != nil {
						return err
					}
					defer disconnect()

					seeder := database.NewSeedManager(db, settings.Environment)
					if path := cmd.String("path"); path != "" {
						seeder.SetRootPath(path)
					} else if settings.SeedPath != "" {
						seeder.SetRootPath(settings.SeedPath)
					}

					results, err := seeder.Run(ctx)
					for _, r := range results {
						fmt.Println(color.GreenString("OK"), r.File, r.Duration)
					}
					return err
				},
			},
		},
	}
}
