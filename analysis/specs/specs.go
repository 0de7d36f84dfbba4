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


// Package specs resolves source specifications against a call graph. A specification names the methods it applies
// to with a pattern, the arguments of interest and how taint enters through them. Resolving a specification on a
// matching call graph node seeds the taint fact map at the entry points of the node.
package specs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/awslabs/ar-droid-tools/analysis/flow"
	"github.com/awslabs/ar-droid-tools/analysis/heap"
	"github.com/awslabs/ar-droid-tools/analysis/hierarchy"
	"github.com/awslabs/ar-droid-tools/analysis/pointsto"
)

var (
	// ErrUnimplementedSpec is returned when a specification has a kind the resolver does not implement
	ErrUnimplementedSpec = errors.New("unimplemented specification")

	// ErrBadArgument is returned when a specification refers to an argument the method does not have
	ErrBadArgument = errors.New("bad specification argument")
)

// SourceKind is the way taint enters a method through its arguments
type SourceKind int

const (
	// InputSource means the argument itself is tainted
	InputSource SourceKind = iota
	// BinderSource means the objects reachable from the argument are tainted
	BinderSource
)

var sourceKindNames = map[string]SourceKind{
	"input":  InputSource,
	"binder": BinderSource,
}

func (k SourceKind) String() string {
	switch k {
	case InputSource:
		return "input"
	case BinderSource:
		return "binder"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// ParseSourceKind returns the kind named s, as written in configuration files
func ParseSourceKind(s string) (SourceKind, error) {
	if k, ok := sourceKindNames[strings.ToLower(s)]; ok {
		return k, nil
	}
	return -1, fmt.Errorf("%w: unknown source kind %q", ErrUnimplementedSpec, s)
}

// Env contains the analysis results a specification is resolved against
type Env struct {
	Logger    *config.LogGroup
	Graph     cg.CallGraph
	PointsTo  pointsto.Oracle
	Hierarchy hierarchy.ClassHierarchy
	Closer    *heap.Closer
}

// NewEnv returns an environment with a fresh closure cache
func NewEnv(logger *config.LogGroup, graph cg.CallGraph, pta pointsto.Oracle, cha hierarchy.ClassHierarchy) *Env {
	return &Env{
		Logger:    logger,
		Graph:     graph,
		PointsTo:  pta,
		Hierarchy: cha,
		Closer:    heap.NewCloser(logger, pta, cha),
	}
}

// closure returns the closure of ik, memoized when the environment has a closer
func (env *Env) closure(ik domain.InstanceID) domain.ElementSet {
	if env.Closer != nil {
		return env.Closer.Closure(ik)
	}
	return heap.Closure(env.Logger, ik, env.PointsTo, env.Hierarchy)
}

// EntryArgSourceSpec specifies that some arguments of the methods matching Pattern are sources when those methods
// are entered.
type EntryArgSourceSpec struct {
	Pattern config.CodeIdentifier
	Args    []int
	Kind    SourceKind
}

func (s EntryArgSourceSpec) String() string {
	return fmt.Sprintf("%s source %s args %v", s.Kind, s.Pattern, s.Args)
}

// Matches returns true when the method of node matches the pattern of the specification
func (s EntryArgSourceSpec) Matches(node *cg.Node) bool {
	return s.Pattern.Matches(MethodIdentifier(node.Method))
}

// MethodIdentifier returns the code identifier of a method, to be matched against specification patterns
func MethodIdentifier(m domain.MethodRef) config.CodeIdentifier {
	return config.CodeIdentifier{
		Package:   m.Package,
		Type:      m.Class,
		Method:    m.Name,
		Signature: m.Descriptor,
	}
}

// AddDomainElements resolves the specification on node and records the resulting facts at every entry point of node.
//
// For input sources, the facts are the value elements of each argument, under an EntryArgSourceFlow.
// For binder sources, every object an argument may point to yields an EntryArgBinderSourceFlow under which the heap
// closure of the object and the argument's local element are recorded.
func (s EntryArgSourceSpec) AddDomainElements(env *Env, facts *flow.Facts, node *cg.Node) error {
	switch s.Kind {
	case InputSource:
		return s.addInputElements(env, facts, node)
	case BinderSource:
		return s.addBinderElements(env, facts, node)
	default:
		return fmt.Errorf("%w: %s", ErrUnimplementedSpec, s)
	}
}

func (s EntryArgSourceSpec) addInputElements(env *Env, facts *flow.Facts, node *cg.Node) error {
	entries := env.Graph.Entries(node)
	for _, arg := range s.Args {
		elements, err := ValueElements(env, node, arg)
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		f := flow.NewEntryArgSourceFlow(node, arg)
		for _, p := range entries {
			facts.AddAll(p, f, elements)
		}
		env.Logger.Debugf("%s: %d elements for argument %d at %d entries of %s",
			f, len(elements), arg, len(entries), node.Method)
	}
	return nil
}

func (s EntryArgSourceSpec) addBinderElements(env *Env, facts *flow.Facts, node *cg.Node) error {
	entries := env.Graph.Entries(node)
	for _, arg := range s.Args {
		local, err := localElement(node, arg)
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		for _, obj := range binderObjects(env, node, arg, local) {
			f := flow.NewEntryArgBinderSourceFlow(obj, node, arg)
			closure := env.closure(obj)
			for _, p := range entries {
				facts.AddAll(p, f, closure)
				facts.Add(p, f, local)
			}
			env.Logger.Debugf("%s: %d elements at %d entries", f, len(closure), len(entries))
		}
	}
	return nil
}

// binderObjects returns the objects the argument may point to. When the points-to set is empty, the argument is
// represented by a placeholder object of its static type, unless that type is an interface.
func binderObjects(env *Env, node *cg.Node, arg int, local domain.LocalElement) []domain.InstanceID {
	pts := env.PointsTo.PointsTo(pointsto.LocalKey{Node: local.Node, Value: local.Value})
	if len(pts) > 0 {
		return pts
	}
	t := node.ParamType(arg)
	if env.Hierarchy.IsInterface(t) {
		env.Logger.Debugf("argument %d of %s has interface type %s and points to nothing, no binder flow",
			arg, node.Method, t)
		return nil
	}
	placeholder, err := env.Hierarchy.LookupConcreteType(t)
	if err != nil {
		env.Logger.Warnf("argument %d of %s points to nothing and no object can be synthesized: %v",
			arg, node.Method, err)
		return nil
	}
	return []domain.InstanceID{placeholder}
}

// ValueElements returns the elements representing the value of argument arg of node: the local element of the
// parameter and, for parameters of heap type, the instance key of every object it may point to.
func ValueElements(env *Env, node *cg.Node, arg int) (domain.ElementSet, error) {
	local, err := localElement(node, arg)
	if err != nil {
		return nil, err
	}
	elements := domain.ElementSet{}
	elements.Add(local)
	if t := node.ParamType(arg); t.IsReference() || t.IsArray() {
		for _, obj := range env.PointsTo.PointsTo(pointsto.LocalKey{Node: local.Node, Value: local.Value}) {
			elements.Add(domain.InstanceKeyElement{Instance: obj})
		}
	}
	return elements, nil
}

func localElement(node *cg.Node, arg int) (domain.LocalElement, error) {
	value, err := node.Param(arg)
	if err != nil {
		return domain.LocalElement{}, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	local, err := domain.NewLocalElement(node.ID, value)
	if err != nil {
		return domain.LocalElement{}, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return local, nil
}

// ResolveAll resolves every specification on every node it matches, visiting nodes in increasing id order.
// It returns the number of (specification, node) pairs resolved, and stops at the first error.
func ResolveAll(env *Env, specs []EntryArgSourceSpec, nodes []*cg.Node, facts *flow.Facts) (int, error) {
	sorted := make([]*cg.Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	resolved := 0
	for _, node := range sorted {
		for _, spec := range specs {
			if !spec.Matches(node) {
				continue
			}
			env.Logger.Debugf("%s matches %s", spec, node)
			if err := spec.AddDomainElements(env, facts, node); err != nil {
				return resolved, fmt.Errorf("while resolving %s on %s: %w", spec, node.Method, err)
			}
			resolved++
		}
	}
	return resolved, nil
}

// FromConfig returns the source specifications of the configuration. Specifications without kind are input sources.
func FromConfig(cfg *config.Config) ([]EntryArgSourceSpec, error) {
	specs := make([]EntryArgSourceSpec, 0, len(cfg.SourceSpecs))
	for _, s := range cfg.SourceSpecs {
		kindName := s.Kind
		if kindName == "" {
			kindName = config.DefaultSourceKind
		}
		kind, err := ParseSourceKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("source spec %s: %w", s.Method, err)
		}
		specs = append(specs, EntryArgSourceSpec{
			Pattern: config.CompileRegexes(s.Method),
			Args:    s.Args,
			Kind:    kind,
		})
	}
	return specs, nil
}
