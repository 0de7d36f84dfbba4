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

// Package seed implements the seed command: it builds the call graph of a program and prints the taint facts that the
// source specifications of the configuration seed.
package seed

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/inflow"
	"github.com/awslabs/ar-droid-tools/cmd/argot/tools"
	"github.com/awslabs/ar-droid-tools/internal/formatutil"
)

const usage = ` Seed the taint facts of the source specifications.
Usage:
  argot seed [options] [package path(s)]
Examples:
  % argot seed -config config.yaml -model program.yaml
  % argot seed -config config.yaml -go -mode cha package...
`

// Flags represents the parsed flags for the seed command.
type Flags struct {
	tools.CommonFlags
	summary bool
}

// NewFlags returns the parsed flags for the seed command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("seed")
	summary := flags.FlagSet.Bool("summary", false, "only print the number of facts per program point")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, summary: *summary}, nil
}

// Run runs the seeding with flags and returns the exit status of the command.
func Run(flags Flags) (int, error) {
	return run(flags, os.Stdout)
}

func run(flags Flags, out io.Writer) (int, error) {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return 1, err
	}
	flags.ApplyOverrides(cfg)
	builder, err := flags.Builder()
	if err != nil {
		return 1, err
	}

	logger := config.NewLogGroup(cfg)
	logger.Infof("%s", formatutil.Faint("Argot seed tool - "+tools.Version))

	if cfg.TestCGBuilder {
		return inflow.TestBuilder(logger, cfg, builder), nil
	}

	start := time.Now()
	state, facts, err := inflow.Run(logger, cfg, builder)
	if err != nil {
		return 1, fmt.Errorf("seeding failed: %w", err)
	}
	duration := time.Since(start)

	fmt.Fprintf(out, "%s application: %d, one-hop: %d, boundary: %d nodes\n",
		formatutil.Bold("Views:"),
		state.Views.Application.Len(), state.Views.OneHop.Len(), state.Views.Boundary.Len())
	if facts.Len() == 0 {
		fmt.Fprintf(out, "%s\n", formatutil.Yellow("No taint facts seeded"))
		return 0, nil
	}
	fmt.Fprintf(out, "%s %d facts at %d program points\n",
		formatutil.Green("Seeded"), facts.Len(), len(facts.Points()))
	if flags.summary {
		for _, p := range facts.Points() {
			n := 0
			for _, t := range facts.Flows(p) {
				n += len(facts.Get(p, t))
			}
			fmt.Fprintf(out, "  %s: %d\n", p, n)
		}
	} else {
		fmt.Fprint(out, facts.String())
	}
	logger.Infof(strings.Repeat("*", 80))
	logger.Infof("Seeding took %3.4f s", duration.Seconds())
	return 0, nil
}
