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


// Package model loads program models from YAML files. A program model is the output of an external call graph
// builder and points-to analysis, serialized: the classes of the program, the call graph nodes and edges, and the
// points-to sets of parameters and fields.
//
// Types are written as type descriptors ("I", "[B", "Landroid/content/Intent;"), or as source names ("int",
// "byte[]", "com.example.Data"). Names starting with "?" are types of unknown kind.
package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-droid-tools/analysis/cg"
	"github.com/awslabs/ar-droid-tools/analysis/config"
	"github.com/awslabs/ar-droid-tools/analysis/domain"
	"github.com/awslabs/ar-droid-tools/analysis/hierarchy"
	"github.com/awslabs/ar-droid-tools/analysis/inflow"
	"github.com/awslabs/ar-droid-tools/analysis/pointsto"
	"gopkg.in/yaml.v3"
)

// Model is the YAML representation of a program
type Model struct {
	Classes  []Class    `yaml:"classes"`
	Nodes    []Node     `yaml:"nodes"`
	Edges    [][]string `yaml:"edges"`
	PointsTo []PtsEntry `yaml:"points-to"`
	Warnings []string   `yaml:"warnings"`
}

// Class is a class or interface declaration
type Class struct {
	Name      string  `yaml:"name"`
	Super     string  `yaml:"super"`
	Interface bool    `yaml:"interface"`
	Fields    []Field `yaml:"fields"`
}

// Field is an instance field declaration
type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Method identifies a method
type Method struct {
	Package    string `yaml:"package"`
	Class      string `yaml:"class"`
	Name       string `yaml:"name"`
	Descriptor string `yaml:"descriptor"`
}

// Node is a call graph node. Label is the name used to refer to the node in edges and points-to entries.
type Node struct {
	Label      string   `yaml:"label"`
	Method     Method   `yaml:"method"`
	Context    string   `yaml:"context"`
	Loader     string   `yaml:"loader"`
	Synthetic  bool     `yaml:"synthetic"`
	Root       bool     `yaml:"root"`
	Params     []int    `yaml:"params"`
	ParamTypes []string `yaml:"param-types"`
	Blocks     int      `yaml:"blocks"`
	Entries    []int    `yaml:"entries"`
}

// Object is an abstract object: a type and an allocation site. Objects without site stand for all the instances of
// their type.
type Object struct {
	Type string `yaml:"type"`
	Site string `yaml:"site"`
}

// LocalRef is a local value of a node
type LocalRef struct {
	Node  string `yaml:"node"`
	Value int    `yaml:"value"`
}

// FieldRef is a field of an abstract object
type FieldRef struct {
	Object Object `yaml:"object"`
	Class  string `yaml:"class"`
	Name   string `yaml:"name"`
}

// PtsEntry is the points-to set of either a local or a field
type PtsEntry struct {
	Local   *LocalRef `yaml:"local"`
	Field   *FieldRef `yaml:"field"`
	Objects []Object  `yaml:"objects"`
}

// Load reads the model in filename
func Load(filename string) (*Model, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}
	return Parse(b)
}

// Parse unmarshals a model
func Parse(b []byte) (*Model, error) {
	m := &Model{}
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("could not unmarshal model: %w", err)
	}
	return m, nil
}

// Program returns the call graph, the class hierarchy and the points-to oracle of the model
func (m *Model) Program() (*inflow.Program, error) {
	cha, err := m.hierarchy()
	if err != nil {
		return nil, err
	}
	g, labels, err := m.graph()
	if err != nil {
		return nil, err
	}
	pta, err := m.pointsTo(labels, cha)
	if err != nil {
		return nil, err
	}
	return &inflow.Program{Graph: g, PointsTo: pta, Hierarchy: cha, Warnings: m.Warnings}, nil
}

func (m *Model) hierarchy() (*hierarchy.Hierarchy, error) {
	classes := make([]hierarchy.Class, len(m.Classes))
	for i, c := range m.Classes {
		classes[i] = hierarchy.Class{
			Name:      ParseType(c.Name).Name,
			Interface: c.Interface,
		}
		if c.Super != "" {
			classes[i].Super = ParseType(c.Super).Name
		}
		for _, f := range c.Fields {
			if f.Name == "" || f.Type == "" {
				return nil, fmt.Errorf("class %s: field without name or type", c.Name)
			}
			classes[i].Fields = append(classes[i].Fields, hierarchy.FieldDecl{Name: f.Name, Type: ParseType(f.Type)})
		}
	}
	return hierarchy.New(classes...)
}

func (m *Model) graph() (*cg.Graph, map[string]*cg.Node, error) {
	g := cg.NewGraph()
	labels := map[string]*cg.Node{}
	for _, n := range m.Nodes {
		if n.Label == "" {
			return nil, nil, fmt.Errorf("node %v has no label", n.Method)
		}
		if _, ok := labels[n.Label]; ok {
			return nil, nil, fmt.Errorf("node label %q is used twice", n.Label)
		}
		loader, err := parseLoader(n.Loader)
		if err != nil {
			return nil, nil, fmt.Errorf("node %s: %w", n.Label, err)
		}
		if len(n.ParamTypes) > 0 && len(n.ParamTypes) != len(n.Params) {
			return nil, nil, fmt.Errorf("node %s: %d parameters but %d parameter types",
				n.Label, len(n.Params), len(n.ParamTypes))
		}
		node := &cg.Node{
			Method: domain.MethodRef{
				Package:    n.Method.Package,
				Class:      n.Method.Class,
				Name:       n.Method.Name,
				Descriptor: n.Method.Descriptor,
			},
			Context:   cg.Context(n.Context),
			Loader:    loader,
			Synthetic: n.Synthetic,
			Params:    n.Params,
			Blocks:    n.Blocks,
		}
		for _, t := range n.ParamTypes {
			node.ParamTypes = append(node.ParamTypes, ParseType(t))
		}
		added := g.AddNode(node)
		if added != node {
			return nil, nil, fmt.Errorf("node %s: %s is already in the graph", n.Label, added)
		}
		labels[n.Label] = node
		if len(n.Entries) > 0 {
			g.SetEntries(node, n.Entries...)
		}
		if n.Root {
			g.AddRoot(node)
		}
	}
	for _, e := range m.Edges {
		if len(e) != 2 {
			return nil, nil, fmt.Errorf("edge %v should have a caller and a callee", e)
		}
		caller, callee := labels[e[0]], labels[e[1]]
		if caller == nil || callee == nil {
			return nil, nil, fmt.Errorf("edge %v refers to unknown nodes", e)
		}
		if err := g.AddEdge(caller, callee); err != nil {
			return nil, nil, err
		}
	}
	return g, labels, nil
}

func (m *Model) pointsTo(labels map[string]*cg.Node, cha *hierarchy.Hierarchy) (*pointsto.Table, error) {
	pta := pointsto.NewTable()
	for i, entry := range m.PointsTo {
		var key pointsto.Key
		switch {
		case entry.Local != nil && entry.Field == nil:
			node := labels[entry.Local.Node]
			if node == nil {
				return nil, fmt.Errorf("points-to entry %d: unknown node %q", i, entry.Local.Node)
			}
			key = pointsto.LocalKey{Node: node.ID, Value: entry.Local.Value}
		case entry.Field != nil && entry.Local == nil:
			field, err := resolveField(cha, *entry.Field)
			if err != nil {
				return nil, fmt.Errorf("points-to entry %d: %w", i, err)
			}
			key = pointsto.FieldKey{Instance: entry.Field.Object.instance(), Field: field}
		default:
			return nil, fmt.Errorf("points-to entry %d should have either a local or a field", i)
		}
		for _, o := range entry.Objects {
			pta.Add(key, o.instance())
		}
	}
	return pta, nil
}

func resolveField(cha *hierarchy.Hierarchy, f FieldRef) (domain.FieldRef, error) {
	class := ParseType(f.Class)
	for _, field := range cha.AllInstanceFields(class) {
		if field.Class == class.Name && field.Name == f.Name {
			return field, nil
		}
	}
	return domain.FieldRef{}, fmt.Errorf("class %s has no field %s", f.Class, f.Name)
}

func (o Object) instance() domain.InstanceID {
	return domain.InstanceID{Type: ParseType(o.Type), Site: o.Site}
}

func parseLoader(s string) (cg.Loader, error) {
	switch strings.ToLower(s) {
	case "application", "app":
		return cg.Application, nil
	case "primordial", "", "library":
		return cg.Primordial, nil
	default:
		return cg.Primordial, fmt.Errorf("unknown loader %q", s)
	}
}

var primitiveNames = map[string]string{
	"boolean": "Z", "byte": "B", "char": "C", "short": "S",
	"int": "I", "long": "J", "float": "F", "double": "D", "void": "V",
}

// ParseType returns the type reference for s, a type descriptor or a source type name. Source names are converted
// to descriptors, so that "com.example.Data[]" and "[Lcom/example/Data;" are the same type.
func ParseType(s string) domain.TypeRef {
	if t := domain.ParseDescriptor(s); t.Kind != domain.Unknown {
		return t
	}
	if d, ok := descriptorOf(s); ok {
		return domain.ParseDescriptor(d)
	}
	return domain.TypeRef{Name: s, Kind: domain.Unknown}
}

func descriptorOf(s string) (string, bool) {
	dims := 0
	for strings.HasSuffix(s, "[]") {
		s = strings.TrimSuffix(s, "[]")
		dims++
	}
	if s == "" || strings.ContainsAny(s, "[]; ") {
		return "", false
	}
	base, ok := primitiveNames[s]
	if !ok {
		if s[0] == '?' {
			return "", false
		}
		base = "L" + strings.ReplaceAll(s, ".", "/") + ";"
	}
	return strings.Repeat("[", dims) + base, true
}

// Builder builds programs from the model stored in a file
type Builder struct {
	// Path is the path of the model file
	Path string
}

// Build loads the model and returns its program. Relative paths are relative to the configuration file.
func (b Builder) Build(logger *config.LogGroup, cfg *config.Config) (*inflow.Program, error) {
	path := b.Path
	if cfg != nil && !filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			path = cfg.RelPath(path)
		}
	}
	logger.Infof("Loading program model %s", path)
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	program, err := m.Program()
	if err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	logger.Debugf("Model %s: %d classes, %d nodes, %d edges", path, len(m.Classes), len(m.Nodes), len(m.Edges))
	return program, nil
}
