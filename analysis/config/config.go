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


package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/awslabs/ar-droid-tools/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the analysis and the source specifications used to seed the taint domain.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// SourceSpecs lists the entry-argument source specifications
	SourceSpecs []SourceSpec `yaml:"source-specs"`
}

// SourceSpec identifies methods whose entry arguments are sources of taint.
type SourceSpec struct {
	// Method identifies the methods the specification applies to
	Method CodeIdentifier `yaml:"method"`

	// Args are the indexes of the parameters that are sources
	Args []int `yaml:"args"`

	// Kind is the kind of source: "input" when the argument itself is tainted, "binder" when the objects reachable
	// from the argument are tainted.
	Kind string `yaml:"kind"`
}

// Options are the global options of the analysis
type Options struct {
	// PkgFilter is the filter that identifies application code for frontends that cannot tell application code from
	// library code by themselves (e.g. the Go frontend). Packages matching the filter are application code.
	PkgFilter string `yaml:"pkg-filter"`

	// IncludeLibrary specifies whether sources are seeded in library code. When false, only the nodes of the
	// application call graph slice are considered.
	IncludeLibrary bool `yaml:"include-library"`

	// TestCGBuilder stops the analysis after the call graph has been built, reporting only whether the build
	// succeeded.
	TestCGBuilder bool `yaml:"test-cg-builder"`

	// StdoutCG prints the call graph in the debug log
	StdoutCG bool `yaml:"stdout-cg"`

	// CGBuilderWarnings prints the warnings emitted by the call graph builder
	CGBuilderWarnings bool `yaml:"cg-builder-warnings"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:  "",
		SourceSpecs: nil,
		Options: Options{
			PkgFilter:         "",
			IncludeLibrary:    false,
			TestCGBuilder:     false,
			StdoutCG:          false,
			CGBuilderWarnings: false,
			LogLevel:          int(InfoLevel),
			SilenceWarn:       false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadBytes(filename, b)
}

// LoadBytes reads a configuration from the content b of the file filename
func LoadBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	for i, spec := range cfg.SourceSpecs {
		if len(spec.Args) == 0 {
			return nil, fmt.Errorf("source spec %d (%s) does not specify any argument", i, spec.Method)
		}
		cfg.SourceSpecs[i].Method = CompileRegexes(spec.Method)
	}

	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// IsSomeSource returns true if the code identifier matches the method of any source spec in the config
func (c Config) IsSomeSource(cid CodeIdentifier) bool {
	return funcutil.Exists(c.SourceSpecs, func(s SourceSpec) bool { return cid.equalOnNonEmptyFields(s.Method) })
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
