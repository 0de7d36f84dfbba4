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

// Package tools contains utility types and functions for Argot tool frontends.
package tools

import (
	"flag"
	"fmt"
	"go/build"
	"os"

	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/gofront"
	"github.com/awslabs/ar-droid-tools/analysis/inflow"
	"github.com/awslabs/ar-droid-tools/analysis/model"
	"golang.org/x/tools/go/buildutil"
)

// Version is the version of the Argot tools
const Version = "v0.1.0"

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	ModelPath  *string
	Go         *bool
	Mode       *string
	Verbose    *bool
	WithTest   *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config, -model, -go, -mode,
// -verbose, -with-test, and -build-tags but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	modelPath := cmd.String("model", "", "program model file path (relative to the config file if not found)")
	goPkgs := cmd.Bool("go", false, "build the call graph of the Go packages given as arguments")
	mode := cmd.String("mode", "static", "call graph algorithm for Go packages: static or cha")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	withTest := cmd.Bool("with-test", false, "load tests during analysis")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		ModelPath:  modelPath,
		Go:         goPkgs,
		Mode:       mode,
		Verbose:    verbose,
		WithTest:   withTest,
	}
}

// Parse parses args and returns the parsed common flags.
func (f UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := f.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", f.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    f.FlagSet,
		ConfigPath: *f.ConfigPath,
		ModelPath:  *f.ModelPath,
		Go:         *f.Go,
		Mode:       *f.Mode,
		Verbose:    *f.Verbose,
		WithTest:   *f.WithTest,
	}, nil
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `argot seed ...`, "seed" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	ModelPath  string
	Go         bool
	Mode       string
	Verbose    bool
	WithTest   bool
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath. Without a config file, the default configuration is returned.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	config.SetGlobalConfig(configPath)
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}

	return cfg, nil
}

// Builder returns the call graph builder selected by the flags: the Go frontend over the remaining arguments when
// -go is set, the program model otherwise.
func (f CommonFlags) Builder() (inflow.Builder, error) {
	switch {
	case f.Go && f.ModelPath != "":
		return nil, fmt.Errorf("-go and -model cannot be used together")
	case f.Go:
		if f.FlagSet == nil || f.FlagSet.NArg() == 0 {
			return nil, fmt.Errorf("no Go packages to analyze")
		}
		mode, err := gofront.ParseMode(f.Mode)
		if err != nil {
			return nil, err
		}
		return gofront.Builder{Patterns: f.FlagSet.Args(), Mode: mode, Tests: f.WithTest}, nil
	case f.ModelPath != "":
		return model.Builder{Path: f.ModelPath}, nil
	default:
		return nil, fmt.Errorf("one of -model or -go must be provided")
	}
}

// ApplyOverrides overrides the configuration options with the command-line flags.
func (f CommonFlags) ApplyOverrides(cfg *config.Config) {
	if f.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
}
