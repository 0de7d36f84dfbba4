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


// Package inflow is the driver of the taint seeding: it builds the call graph with a frontend, derives the call graph
// views and resolves the source specifications into the initial taint facts handed to the dataflow solver.
package inflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/cgview"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/awslabs/ar-droid-tools/analysis/flow"
	"github.com/awslabs/ar-droid-tools/analysis/hierarchy"
	"github.com/awslabs/ar-droid-tools/analysis/pointsto"
	"github.com/awslabs/ar-droid-tools/analysis/specs"
	"github.com/awslabs/ar-droid-tools/internal/formatutil"
)

// ErrCallGraph is returned when the call graph could not be built. No seeding happens on a partial call graph.
var ErrCallGraph = errors.New("call graph construction failed")

// Program is the result of a frontend: the call graph and the analysis results the seeding queries
type Program struct {
	// Graph is the call graph of the program
	Graph cg.CallGraph

	// PointsTo is the points-to oracle. If nil, every points-to set is empty.
	PointsTo pointsto.Oracle

	// Hierarchy is the class hierarchy of the program
	Hierarchy hierarchy.ClassHierarchy

	// Warnings are the warnings emitted by the call graph builder
	Warnings []string
}

// A Builder builds the call graph of a program
type Builder interface {
	Build(logger *config.LogGroup, cfg *config.Config) (*Program, error)
}

// BuilderFunc adapts a function to the Builder interface
type BuilderFunc func(logger *config.LogGroup, cfg *config.Config) (*Program, error)

// Build calls f
func (f BuilderFunc) Build(logger *config.LogGroup, cfg *config.Config) (*Program, error) {
	return f(logger, cfg)
}

// State contains the information computed before seeding: the call graph, the oracles and the call graph views.
type State struct {
	// The logger used during the analysis (can be used to control output.
	Logger *config.LogGroup

	// The configuration file for the analysis
	Config *config.Config

	// Graph is the call graph
	Graph cg.CallGraph

	// PointsTo is the points-to oracle
	PointsTo pointsto.Oracle

	// Hierarchy is the class hierarchy
	Hierarchy hierarchy.ClassHierarchy

	// Views are the views of the call graph
	Views *cgview.Views

	env *specs.Env
}

func build(logger *config.LogGroup, cfg *config.Config, builder Builder) (*Program, error) {
	program, err := builder.Build(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCallGraph, err)
	}
	if program == nil || program.Graph == nil {
		return nil, fmt.Errorf("%w: the builder returned no call graph", ErrCallGraph)
	}
	if cfg.CGBuilderWarnings {
		for _, w := range program.Warnings {
			logger.Warnf("call graph builder: %s", w)
		}
	}
	return program, nil
}

// NewState builds the call graph with builder and returns the state ready for seeding. If the call graph cannot be
// built, the error wraps ErrCallGraph.
func NewState(logger *config.LogGroup, cfg *config.Config, builder Builder) (*State, error) {
	start := time.Now()
	program, err := build(logger, cfg, builder)
	if err != nil {
		return nil, err
	}
	logger.Infof("Call graph built in %.2f s: %d nodes", time.Since(start).Seconds(), len(program.Graph.Nodes()))

	state := &State{
		Logger:    logger,
		Config:    cfg,
		Graph:     program.Graph,
		PointsTo:  program.PointsTo,
		Hierarchy: program.Hierarchy,
	}
	if state.PointsTo == nil {
		state.PointsTo = pointsto.Empty{}
	}
	if state.Hierarchy == nil {
		state.Hierarchy, _ = hierarchy.New()
	}

	if cfg.StdoutCG {
		state.dumpCallGraph()
	}
	if logger.LogsTrace() {
		state.dumpSyntheticMethods()
	}

	state.Views = cgview.Build(logger, state.Graph, nil)
	logger.Infof("Application view: %d nodes, one-hop view: %d nodes, boundary view: %d nodes",
		state.Views.Application.Len(), state.Views.OneHop.Len(), state.Views.Boundary.Len())

	state.env = specs.NewEnv(logger, state.Graph, state.PointsTo, state.Hierarchy)
	return state, nil
}

// TestBuilder only builds the call graph and returns the exit status of the build: 0 on success, 1 on failure.
func TestBuilder(logger *config.LogGroup, cfg *config.Config, builder Builder) int {
	program, err := build(logger, cfg, builder)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	logger.Infof("%s %d nodes", formatutil.Green("Call graph built:"), len(program.Graph.Nodes()))
	return 0
}

// SeedNodes returns the nodes the source specifications are resolved on: all the nodes of the call graph when the
// configuration includes library code, and the nodes of the application view otherwise.
func (s *State) SeedNodes() []*cg.Node {
	if s.Config.IncludeLibrary {
		return s.Graph.Nodes()
	}
	return s.Views.Application.CallNodes()
}

// Seed resolves the specifications and returns the taint facts that seed the dataflow solver.
func (s *State) Seed(sourceSpecs []specs.EntryArgSourceSpec) (*flow.Facts, error) {
	start := time.Now()
	facts := flow.NewFacts()
	n, err := specs.ResolveAll(s.env, sourceSpecs, s.SeedNodes(), facts)
	if err != nil {
		return nil, err
	}
	s.Logger.Infof("Seeded %d facts at %d program points from %d matches in %.2f s",
		facts.Len(), len(facts.Points()), n, time.Since(start).Seconds())
	return facts, nil
}

// NodeForMethod returns the context-insensitive node of method, or nil if the method is not in the call graph.
func (s *State) NodeForMethod(method domain.MethodRef) *cg.Node {
	return s.Graph.Node(method, cg.Everywhere)
}

// Run builds the state and seeds the facts for the source specifications of the configuration.
func Run(logger *config.LogGroup, cfg *config.Config, builder Builder) (*State, *flow.Facts, error) {
	sourceSpecs, err := specs.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	state, err := NewState(logger, cfg, builder)
	if err != nil {
		return nil, nil, err
	}
	facts, err := state.Seed(sourceSpecs)
	if err != nil {
		return state, nil, err
	}
	return state, facts, nil
}

func (s *State) dumpCallGraph() {
	s.Logger.Infof("Call graph:")
	for _, n := range s.Graph.Nodes() {
		s.Logger.Infof("%s", n)
		for _, succ := range s.Graph.Succs(n) {
			s.Logger.Infof("  - %s", succ)
		}
	}
}

func (s *State) dumpSyntheticMethods() {
	for _, n := range s.Graph.Nodes() {
		if n.Synthetic {
			s.Logger.Tracef("Synthetic: %s", n.Method)
		}
	}
}
