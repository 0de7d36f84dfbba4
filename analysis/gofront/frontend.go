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


// Package gofront is a frontend for Go programs: it computes the call graph of a program with the algorithms of
// golang.org/x/tools and translates it to the call graph model of the seeding layer. Named struct types are the
// classes of the hierarchy and their fields the instance fields; Go has no inheritance, so classes have no
// superclass.
//
// The frontend does not compute points-to information: every points-to set is empty, and binder sources are
// represented by placeholder objects.
package gofront

import (
	"fmt"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/awslabs/ar-droid-tools/analysis/hierarchy"
	"github.com/awslabs/ar-droid-tools/analysis/inflow"
	"github.com/awslabs/ar-droid-tools/analysis/pointsto"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// CallgraphAnalysisMode is the algorithm used to compute the call graph
type CallgraphAnalysisMode uint64

const (
	StaticAnalysis         CallgraphAnalysisMode = iota // StaticAnalysis is under-approximating (fast)
	ClassHierarchyAnalysis                              // ClassHierarchyAnalysis is a coarse over-approximation (fast)
)

// ParseMode returns the mode named s ("static" or "cha")
func ParseMode(s string) (CallgraphAnalysisMode, error) {
	switch strings.ToLower(s) {
	case "static", "":
		return StaticAnalysis, nil
	case "cha":
		return ClassHierarchyAnalysis, nil
	default:
		return StaticAnalysis, fmt.Errorf("unsupported call graph analysis mode %q", s)
	}
}

// ComputeCallgraph computes the call graph of prog using the provided mode.
func (mode CallgraphAnalysisMode) ComputeCallgraph(prog *ssa.Program) (*callgraph.Graph, error) {
	switch mode {
	case StaticAnalysis:
		// Build the callgraph using only static analysis.
		return static.CallGraph(prog), nil
	case ClassHierarchyAnalysis:
		// Build the callgraph using the Class Hierarchy Analysis
		// See the documentation, and
		// "Optimization of Object-Oriented Programs Using Static Class Hierarchy Analysis",
		// J. Dean, D. Grove, and C. Chambers, ECOOP'95.
		return cha.CallGraph(prog), nil
	default:
		return nil, fmt.Errorf("unsupported call graph analysis mode %d", mode)
	}
}

// Builder loads Go packages and builds their call graph
type Builder struct {
	// Patterns are the package patterns to load, see packages.Load
	Patterns []string
	// Mode is the call graph algorithm
	Mode CallgraphAnalysisMode
	// Platform is the GOOS to load the packages for, the current platform if empty
	Platform string
	// Tests loads the test packages
	Tests bool
}

// Build loads the packages and translates their call graph. Application code is the code of the packages matching
// the package filter of the configuration or, if there is no filter, the code of the packages loaded.
func (b Builder) Build(logger *config.LogGroup, cfg *config.Config) (*inflow.Program, error) {
	pcfg := &packages.Config{Mode: PkgLoadMode, Tests: b.Tests, Fset: token.NewFileSet()}
	logger.Infof("Loading packages %v", b.Patterns)
	lp, err := LoadProgram(pcfg, b.Platform, ssa.InstantiateGenerics, b.Patterns)
	if err != nil {
		return nil, fmt.Errorf("could not load program: %w", err)
	}
	return FromSSA(logger, lp.Program, b.Mode, applicationPredicate(cfg, lp.Packages))
}

func applicationPredicate(cfg *config.Config, pkgs []*packages.Package) func(string) bool {
	if cfg != nil && cfg.PkgFilter != "" {
		return cfg.MatchPkgFilter
	}
	initial := map[string]bool{}
	for _, p := range pkgs {
		initial[p.PkgPath] = true
	}
	return func(path string) bool { return initial[path] }
}

// FromSSA translates the call graph of prog computed with mode. isApp decides from a package path whether the code
// of the package is application code.
func FromSSA(logger *config.LogGroup, prog *ssa.Program, mode CallgraphAnalysisMode,
	isApp func(pkgPath string) bool) (*inflow.Program, error) {
	callGraph, err := mode.ComputeCallgraph(prog)
	if err != nil {
		return nil, err
	}
	t := &translator{isApp: isApp, classes: map[string]*hierarchy.Class{}}

	var fns []*ssa.Function
	for fn := range callGraph.Nodes {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].String() < fns[j].String() })

	g := cg.NewGraph()
	nodes := make(map[*ssa.Function]*cg.Node, len(fns))
	for _, fn := range fns {
		node := t.node(fn)
		added := g.AddNode(node)
		if added != node {
			t.warnf("%s and %s have the same method reference %s", fn, added.Method, node.Method)
		}
		nodes[fn] = added
		if fn.Pkg != nil && fn.Pkg.Pkg.Name() == "main" && (fn.Name() == "main" || fn.Name() == "init") {
			g.AddRoot(added)
		}
		if len(fn.Blocks) == 0 && fn.Synthetic == "" {
			t.warnf("no body for %s", fn)
		}
	}
	for _, fn := range fns {
		for _, e := range callGraph.Nodes[fn].Out {
			if e.Callee == nil || e.Callee.Func == nil {
				continue
			}
			if err := g.AddEdge(nodes[fn], nodes[e.Callee.Func]); err != nil {
				return nil, err
			}
		}
	}

	for _, pkg := range prog.AllPackages() {
		for _, member := range pkg.Members {
			if typ, ok := member.(*ssa.Type); ok {
				t.typeRef(typ.Type())
			}
		}
	}
	classes := make([]hierarchy.Class, 0, len(t.classes))
	for _, c := range t.classes {
		classes = append(classes, *c)
	}
	classHierarchy, err := hierarchy.New(classes...)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Go frontend: %d functions, %d classes, %d warnings", g.Len(), classHierarchy.Len(), len(t.warnings))
	return &inflow.Program{Graph: g, PointsTo: pointsto.Empty{}, Hierarchy: classHierarchy, Warnings: t.warnings}, nil
}

type translator struct {
	isApp    func(string) bool
	classes  map[string]*hierarchy.Class
	warnings []string
}

func (t *translator) warnf(format string, args ...any) {
	t.warnings = append(t.warnings, fmt.Sprintf(format, args...))
}

func (t *translator) node(fn *ssa.Function) *cg.Node {
	method := MethodRef(fn)
	node := &cg.Node{
		Method:    method,
		Context:   cg.Everywhere,
		Loader:    cg.Primordial,
		Synthetic: fn.Synthetic != "",
		Blocks:    len(fn.Blocks),
	}
	if method.Package != "" && t.isApp(method.Package) {
		node.Loader = cg.Application
	}
	// parameters are numbered from 1, the receiver of methods first
	for i, p := range fn.Params {
		node.Params = append(node.Params, i+1)
		node.ParamTypes = append(node.ParamTypes, t.typeRef(p.Type()))
	}
	return node
}

// MethodRef returns the method reference of fn. The class of methods is the name of their receiver type, with a star
// for pointer receivers.
func MethodRef(fn *ssa.Function) domain.MethodRef {
	m := domain.MethodRef{
		Name:       fn.Name(),
		Descriptor: strings.TrimPrefix(types.TypeString(fn.Signature, nil), "func"),
	}
	if fn.Pkg != nil {
		m.Package = fn.Pkg.Pkg.Path()
	} else if obj := fn.Object(); obj != nil && obj.Pkg() != nil {
		m.Package = obj.Pkg().Path()
	}
	if recv := fn.Signature.Recv(); recv != nil {
		m.Class = receiverName(recv.Type())
	}
	return m
}

func receiverName(t types.Type) string {
	star := ""
	if ptr, ok := t.(*types.Pointer); ok {
		star = "*"
		t = ptr.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return star + named.Obj().Name()
	}
	return star + types.TypeString(t, nil)
}

// typeRef classifies a Go type. Pointers to named types reference the objects of the named type; structs and
// interfaces are declared in the class hierarchy the first time they are seen.
func (t *translator) typeRef(typ types.Type) domain.TypeRef {
	name := types.TypeString(typ, nil)
	switch x := typ.(type) {
	case *types.Pointer:
		switch x.Elem().Underlying().(type) {
		case *types.Struct, *types.Interface:
			return t.typeRef(x.Elem())
		}
		return domain.ClassType(name)
	case *types.Named:
		switch u := x.Underlying().(type) {
		case *types.Struct:
			t.declareStruct(name, u)
			return domain.ClassType(name)
		case *types.Interface:
			t.declareInterface(name)
			return domain.ClassType(name)
		default:
			return domain.TypeRef{Name: name, Kind: t.typeRef(u).Kind}
		}
	case *types.Basic:
		if x.Kind() == types.UnsafePointer {
			return domain.ClassType(name)
		}
		return domain.PrimitiveType(name)
	case *types.Slice, *types.Array:
		return domain.TypeRef{Name: name, Kind: domain.Array}
	case *types.Struct:
		t.declareStruct(name, x)
		return domain.ClassType(name)
	case *types.Interface:
		t.declareInterface(name)
		return domain.ClassType(name)
	case *types.Map, *types.Chan, *types.Signature:
		return domain.ClassType(name)
	default:
		return domain.TypeRef{Name: name, Kind: domain.Unknown}
	}
}

func (t *translator) declareStruct(name string, st *types.Struct) {
	if _, ok := t.classes[name]; ok {
		return
	}
	c := &hierarchy.Class{Name: name}
	t.classes[name] = c
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		c.Fields = append(c.Fields, hierarchy.FieldDecl{Name: f.Name(), Type: t.typeRef(f.Type())})
	}
}

func (t *translator) declareInterface(name string) {
	if _, ok := t.classes[name]; !ok {
		t.classes[name] = &hierarchy.Class{Name: name, Interface: true}
	}
}
