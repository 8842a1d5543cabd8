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
	"fmt"
	"os"

	"github.com/keelstack/keel/database"

	"github.com/fatih/color"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Value:   "migrations",
		Usage:   "directory holding SQL migration files",
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage schema migrations",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the migration bookkeeping tables",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						return mm.Init(ctx)
					})
				},
			},
			{
				Name:      "revision",
				Usage:     "scaffold a new migration file",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{
						Name:  "go",
						Usage: "create a Go migration instead of SQL files",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return fmt.Errorf("revision name is required")
					}
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						files, err := mm.Revision(ctx, name, !cmd.Bool("go"))
						if err != nil {
							return err
						}
						for _, f := range files {
							fmt.Println("created:", f)
						}
						return nil
					})
				},
			},
			{
				Name:  "upgrade",
				Usage: "apply all pending migrations",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						group, err := mm.Upgrade(ctx)
						if err != nil {
							return err
						}
						printGroup(group, "nothing to upgrade, database is up to date")
						return nil
					})
				},
			},
			{
				Name:  "downgrade",
				Usage: "roll back the last migration group",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						group, err := mm.Downgrade(ctx)
						if err != nil {
							return err
						}
						printGroup(group, "nothing to roll back")
						return nil
					})
				},
			},
			{
				Name:  "history",
				Usage: "list migrations with their applied status",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						ms, err := mm.History(ctx)
						if err != nil {
							return err
						}
						if len(ms) == 0 {
							fmt.Println("no migrations found")
							return nil
						}
						for _, m := range ms {
							if m.IsApplied() {
								fmt.Printf("%s  %s (group %d)\n",
									color.GreenString("applied"), m.Name, m.GroupID)
							} else {
								fmt.Printf("%s  %s\n", color.YellowString("pending"), m.Name)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "heads",
				Usage: "show the last applied group and pending migrations",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						last, pending, err := mm.Heads(ctx)
						if err != nil {
							return err
						}
						if last.IsZero() {
							fmt.Println("no migration groups applied")
						} else {
							fmt.Println("last applied:", last.String())
						}
						fmt.Printf("pending: %d\n", len(pending))
						for _, name := range pending {
							fmt.Println("  -", name)
						}
						return nil
					})
				},
			},
			{
				Name:  "stamp",
				Usage: "mark pending migrations as applied without running them",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrator(ctx, cmd, func(mm *database.MigrationManager) error {
						group, err := mm.Stamp(ctx)
						if err != nil {
							return err
						}
						printGroup(group, "nothing to stamp")
						return nil
					})
				},
			},
		},
	}
}

// withMigrator connects the database, discovers SQL migrations from the
// configured directory, and runs fn with the migration manager.
func withMigrator(ctx context.Context, cmd *cli.Command, fn func(*database.MigrationManager) error) error {
	db, disconnect, err := connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer disconnect()

	migrations, err := discoverMigrations(cmd.String("dir"))
	if err != nil {
		return err
	}
	return fn(database.NewMigrationManager(db, migrations, database.GetLogger()))
}

func discoverMigrations(dir string) (*migrate.Migrations, error) {
	migrations := migrate.NewMigrations(migrate.WithMigrationsDirectory(dir))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return migrations, nil
	}
	if err := migrations.Discover(os.DirFS(dir)); err != nil {
		return nil, fmt.Errorf("discover migrations in %s: %w", dir, err)
	}
	return migrations, nil
}

func printGroup(group *migrate.MigrationGroup, emptyMsg string) {
	if group.IsZero() {
		fmt.Println(emptyMsg)
		return
	}
	fmt.Println(color.GreenString("OK"), group.String())
}
