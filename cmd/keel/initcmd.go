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
	"path/filepath"

	"github.com/keelstack/keel/scaffold"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "generate starter files for a new project",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "module",
				Aliases: []string{"m"},
				Usage:   "Go module path of the generated project",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite existing files",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = "."
			}

			module := cmd.String("module")
			if module == "" {
				if abs, err := filepath.Abs(dir); err == nil {
					module = filepath.Base(abs)
				} else {
					module = "app"
				}
			}

			written, err := scaffold.Generate(dir, scaffold.Options{
				Module: module,
				Force:  cmd.Bool("force"),
			})
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Println("nothing to do, project files already exist")
				return nil
			}
			for _, f := range written {
				fmt.Println("created:", f)
			}
			fmt.Println(color.GreenString("Project initialized."), "Next: go mod tidy && go run .")
			return nil
		},
	}
}
