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


package inflow

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/awslabs/ar-droid-tools/analysis/flow"
	"github.com/awslabs/ar-droid-tools/analysis/hierarchy"
	"github.com/awslabs/ar-droid-tools/analysis/pointsto"
	"github.com/awslabs/ar-droid-tools/analysis/specs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tIntent  = domain.ClassType("Landroid/content/Intent;")
	onCreate = domain.MethodRef{Package: "com/example", Class: "MainActivity", Name: "onCreate", Descriptor: "(Landroid/content/Intent;)V"}
	libCall  = domain.MethodRef{Package: "android/app", Class: "Activity", Name: "onCreate", Descriptor: "(Landroid/content/Intent;)V"}
)

func testProgram(t *testing.T) *Program {
	g := cg.NewGraph()
	app := g.AddNode(&cg.Node{
		Method:     onCreate,
		Loader:     cg.Application,
		Params:     []int{1, 2},
		ParamTypes: []domain.TypeRef{domain.ClassType("Lcom/example/MainActivity;"), tIntent},
		Blocks:     2,
	})
	lib := g.AddNode(&cg.Node{
		Method:     libCall,
		Loader:     cg.Primordial,
		Params:     []int{1, 2},
		ParamTypes: []domain.TypeRef{domain.ClassType("Landroid/app/Activity;"), tIntent},
		Blocks:     1,
	})
	require.NoError(t, g.AddEdge(lib, app))
	cha, err := hierarchy.New(hierarchy.Class{Name: tIntent.Name})
	require.NoError(t, err)
	pta := pointsto.NewTable()
	pta.Add(pointsto.LocalKey{Node: app.ID, Value: 2}, domain.AllocationSite(tIntent, "launcher"))
	return &Program{Graph: g, PointsTo: pta, Hierarchy: cha, Warnings: []string{"unresolved call in Activity.onCreate"}}
}

func testConfig(includeLibrary bool) *config.Config {
	cfg := config.NewDefault()
	cfg.IncludeLibrary = includeLibrary
	cfg.CGBuilderWarnings = true
	cfg.SourceSpecs = []config.SourceSpec{
		{Method: config.CompileRegexes(config.CodeIdentifier{Method: "onCreate"}), Args: []int{1}, Kind: "input"},
	}
	return cfg
}

func testLogger(cfg *config.Config, w io.Writer) *config.LogGroup {
	l := config.NewLogGroup(cfg)
	l.SetAllOutput(w)
	return l
}

func TestNewStatePropagatesBuildFailure(t *testing.T) {
	cfg := testConfig(false)
	buildErr := errors.New("dex file is corrupted")
	builder := BuilderFunc(func(*config.LogGroup, *config.Config) (*Program, error) { return nil, buildErr })

	state, err := NewState(testLogger(cfg, io.Discard), cfg, builder)
	assert.Nil(t, state)
	assert.True(t, errors.Is(err, ErrCallGraph))
	assert.True(t, errors.Is(err, buildErr))

	_, facts, err := Run(testLogger(cfg, io.Discard), cfg, builder)
	assert.Nil(t, facts)
	assert.True(t, errors.Is(err, ErrCallGraph))

	empty := BuilderFunc(func(*config.LogGroup, *config.Config) (*Program, error) { return &Program{}, nil })
	_, err = NewState(testLogger(cfg, io.Discard), cfg, empty)
	assert.True(t, errors.Is(err, ErrCallGraph))
}

func TestTestBuilder(t *testing.T) {
	cfg := testConfig(false)
	program := testProgram(t)
	ok := BuilderFunc(func(*config.LogGroup, *config.Config) (*Program, error) { return program, nil })
	failing := BuilderFunc(func(*config.LogGroup, *config.Config) (*Program, error) {
		return nil, errors.New("no classes.dex")
	})
	assert.Equal(t, 0, TestBuilder(testLogger(cfg, io.Discard), cfg, ok))
	assert.Equal(t, 1, TestBuilder(testLogger(cfg, io.Discard), cfg, failing))
}

func TestBuilderWarnings(t *testing.T) {
	cfg := testConfig(false)
	program := testProgram(t)
	var buf bytes.Buffer
	_, err := NewState(testLogger(cfg, &buf), cfg, BuilderFunc(func(*config.LogGroup, *config.Config) (*Program, error) {
		return program, nil
	}))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unresolved call in Activity.onCreate")
}

func TestSeedApplicationOnly(t *testing.T) {
	cfg := testConfig(false)
	program := testProgram(t)
	state, facts, err := Run(testLogger(cfg, io.Discard), cfg, BuilderFunc(
		func(*config.LogGroup, *config.Config) (*Program, error) { return program, nil }))
	require.NoError(t, err)

	app := state.NodeForMethod(onCreate)
	require.NotNil(t, app)
	assert.Nil(t, state.NodeForMethod(domain.MethodRef{Name: "missing"}))
	assert.Equal(t, []*cg.Node{app}, state.SeedNodes())

	p := cg.ProgramPoint{Node: app.ID, Block: 0}
	assert.Equal(t, []cg.ProgramPoint{p}, facts.Points())
	got := facts.Get(p, flow.NewEntryArgSourceFlow(app, 1))
	assert.True(t, got.Contains(domain.LocalElement{Node: app.ID, Value: 2}))
	assert.True(t, got.Contains(domain.InstanceKeyElement{Instance: domain.AllocationSite(tIntent, "launcher")}))
	assert.Len(t, got, 2)
}

func TestSeedIncludeLibrary(t *testing.T) {
	cfg := testConfig(true)
	cfg.StdoutCG = true
	cfg.LogLevel = int(config.TraceLevel)
	program := testProgram(t)
	var buf bytes.Buffer
	state, err := NewState(testLogger(cfg, &buf), cfg, BuilderFunc(
		func(*config.LogGroup, *config.Config) (*Program, error) { return program, nil }))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Call graph:")
	assert.Len(t, state.SeedNodes(), 2)

	sourceSpecs, err := specs.FromConfig(cfg)
	require.NoError(t, err)
	facts, err := state.Seed(sourceSpecs)
	require.NoError(t, err)
	lib := state.NodeForMethod(libCall)
	require.NotNil(t, lib)
	// the library node's argument points to nothing
	got := facts.Get(cg.ProgramPoint{Node: lib.ID, Block: 0}, flow.NewEntryArgSourceFlow(lib, 1))
	assert.Len(t, got, 1)
	assert.Len(t, facts.Points(), 2)
}

func TestSeedFailsOnBadSpec(t *testing.T) {
	cfg := testConfig(false)
	cfg.SourceSpecs[0].Args = []int{5}
	program := testProgram(t)
	state, facts, err := Run(testLogger(cfg, io.Discard), cfg, BuilderFunc(
		func(*config.LogGroup, *config.Config) (*Program, error) { return program, nil }))
	assert.NotNil(t, state)
	assert.Nil(t, facts)
	assert.True(t, errors.Is(err, specs.ErrBadArgument))

	cfg.SourceSpecs[0].Kind = "sink"
	_, _, err = Run(testLogger(cfg, io.Discard), cfg, BuilderFunc(
		func(*config.LogGroup, *config.Config) (*Program, error) { return program, nil }))
	assert.True(t, errors.Is(err, specs.ErrUnimplementedSpec))
}

func TestDefaultOracles(t *testing.T) {
	cfg := testConfig(false)
	program := testProgram(t)
	program.PointsTo = nil
	program.Hierarchy = nil
	state, err := NewState(testLogger(cfg, io.Discard), cfg, BuilderFunc(
		func(*config.LogGroup, *config.Config) (*Program, error) { return program, nil }))
	require.NoError(t, err)
	assert.Equal(t, pointsto.Empty{}, state.PointsTo)
	assert.NotNil(t, state.Hierarchy)
	assert.Equal(t, 1, state.Views.Boundary.Size())
}
