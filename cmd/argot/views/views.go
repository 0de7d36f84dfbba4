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

// Package views implements the views command: it prints the application, one-hop and boundary views of the call graph
// of a program.
package views

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/cgview"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/inflow"
	"github.com/awslabs/ar-droid-tools/cmd/argot/tools"
	"github.com/awslabs/ar-droid-tools/internal/formatutil"
	"github.com/awslabs/ar-droid-tools/internal/funcutil"
	"github.com/awslabs/ar-droid-tools/internal/graphutil"
)

const usage = ` Print the views of the call graph of a program.
Usage:
  argot views [options] [package path(s)]
Examples:
  % argot views -model program.yaml
  % argot views -cycles 10 -go package...
`

var viewNames = []string{"application", "one-hop", "boundary"}

// Flags represents the parsed flags for the views command.
type Flags struct {
	tools.CommonFlags
	cycles int
	only   string
}

// NewFlags returns the parsed flags for the views command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("views")
	cycles := flags.FlagSet.Int("cycles", 0, "print at most that many elementary cycles of each view")
	only := flags.FlagSet.String("view", "", "print only one view: application, one-hop or boundary")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	if *only != "" && !funcutil.Contains(viewNames, *only) {
		return Flags{}, fmt.Errorf("unknown view %q, expected one of %v", *only, viewNames)
	}
	return Flags{CommonFlags: common, cycles: *cycles, only: *only}, nil
}

// Run builds the call graph with flags and prints its views.
func Run(flags Flags) error {
	return run(flags, os.Stdout)
}

func run(flags Flags, out io.Writer) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	flags.ApplyOverrides(cfg)
	builder, err := flags.Builder()
	if err != nil {
		return err
	}

	logger := config.NewLogGroup(cfg)
	logger.Infof("%s", formatutil.Faint("Argot views tool - "+tools.Version))
	state, err := inflow.NewState(logger, cfg, builder)
	if err != nil {
		return fmt.Errorf("could not build the views: %w", err)
	}

	for _, v := range []struct {
		name string
		view graphutil.CGraph
	}{
		{"application", state.Views.Application},
		{"one-hop", state.Views.OneHop},
		{"boundary", state.Views.Boundary},
	} {
		if flags.only != "" && flags.only != v.name {
			continue
		}
		printView(out, state.Graph, v.name, v.view, flags.cycles)
	}
	return nil
}

func printView(out io.Writer, g cg.CallGraph, name string, view graphutil.CGraph, cycles int) {
	fmt.Fprintf(out, "%s %s\n", formatutil.Bold(strings.ToUpper(name[:1])+name[1:]+" view:"), cgview.Stats(view))
	for _, n := range view.CallNodes() {
		fmt.Fprintf(out, "  %s\n", n)
		for _, succ := range funcutil.Filter(g.Succs(n), view.Contains) {
			fmt.Fprintf(out, "    -> %s\n", formatutil.Faint(succ))
		}
	}
	if cycles <= 0 {
		return
	}
	for _, cycle := range cgview.Cycles(view, cycles) {
		labels := funcutil.Map(cycle, func(n *cg.Node) string { return n.Method.Name })
		fmt.Fprintf(out, "  %s %s\n", formatutil.Yellow("cycle:"), strings.Join(labels, " -> "))
	}
}
