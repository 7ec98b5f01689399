package graph

import (
	"errors"
	"fmt"
	"sort"
)

type stageSpec struct {
	name    string
	stage   Stage
	targets []string
}

type conditional struct {
	router  Router
	mapping map[string]string
}

// StageOption configures a stage at registration.
type StageOption func(s *stageSpec)

// WithTargets declares the stages a stage may jump to with Command.Goto.
// Include End if the stage may terminate the run.
func WithTargets(targets ...string) StageOption {
	return func(s *stageSpec) { s.targets = append(s.targets, targets...) }
}

// Builder assembles a Graph. Registration errors are collected and reported
// by Compile.
type Builder struct {
	stages map[string]*stageSpec
	order  []string
	entry  string
	edges  map[string]string
	conds  map[string]*conditional
	errs   []error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		stages: make(map[string]*stageSpec),
		edges:  make(map[string]string),
		conds:  make(map[string]*conditional),
	}
}

func (b *Builder) fail(format string, args ...any) *Builder {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
	return b
}

// AddStage registers a named stage.
func (b *Builder) AddStage(name string, st Stage, opts ...StageOption) *Builder {
	switch {
	case name == "":
		return b.fail("stage name must not be empty")
	case name == End:
		return b.fail("stage name %q is reserved", End)
	case st == nil:
		return b.fail("stage %q: nil implementation", name)
	}
	if _, exists := b.stages[name]; exists {
		return b.fail("duplicate stage %q", name)
	}

	spec := &stageSpec{name: name, stage: st}
	for _, opt := range opts {
		opt(spec)
	}

	b.stages[name] = spec
	b.order = append(b.order, name)
	return b
}

// SetEntry names the first stage of every run.
func (b *Builder) SetEntry(name string) *Builder {
	b.entry = name
	return b
}

// AddEdge adds an unconditional transition from one stage to another (or End).
func (b *Builder) AddEdge(from, to string) *Builder {
	if _, exists := b.edges[from]; exists {
		return b.fail("stage %q already has a fixed edge", from)
	}
	b.edges[from] = to
	return b
}

// AddConditionalEdges routes out of from by mapping the router's outcome to
// a target stage (or End).
func (b *Builder) AddConditionalEdges(from string, router Router, mapping map[string]string) *Builder {
	if router == nil {
		return b.fail("stage %q: nil router", from)
	}
	if len(mapping) == 0 {
		return b.fail("stage %q: empty router mapping", from)
	}
	if _, exists := b.conds[from]; exists {
		return b.fail("stage %q already has conditional edges", from)
	}

	m := make(map[string]string, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}

	b.conds[from] = &conditional{router: router, mapping: m}
	return b
}

// Compile validates the wiring and returns an immutable Graph.
func (b *Builder) Compile(optFns ...func(o *Options)) (*Graph, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	errs := append([]error(nil), b.errs...)

	known := func(name string) bool {
		if name == End {
			return true
		}
		_, ok := b.stages[name]
		return ok
	}

	if b.entry == "" {
		errs = append(errs, errors.New("entry stage not set"))
	} else if _, ok := b.stages[b.entry]; !ok {
		errs = append(errs, fmt.Errorf("entry stage %q is not registered", b.entry))
	}

	for _, from := range sortedKeys(b.edges) {
		to := b.edges[from]
		if _, ok := b.stages[from]; !ok {
			errs = append(errs, fmt.Errorf("edge from unknown stage %q", from))
		}
		if !known(to) {
			errs = append(errs, fmt.Errorf("edge %q -> %q targets unknown stage", from, to))
		}
		if _, ok := b.conds[from]; ok {
			errs = append(errs, fmt.Errorf("stage %q has both fixed and conditional edges", from))
		}
	}

	for _, from := range sortedKeys(b.conds) {
		if _, ok := b.stages[from]; !ok {
			errs = append(errs, fmt.Errorf("conditional edges from unknown stage %q", from))
		}
		c := b.conds[from]
		for _, outcome := range sortedKeys(c.mapping) {
			if to := c.mapping[outcome]; !known(to) {
				errs = append(errs, fmt.Errorf("conditional edge %q -[%s]-> %q targets unknown stage", from, outcome, to))
			}
		}
	}

	for _, name := range b.order {
		spec := b.stages[name]
		for _, t := range spec.targets {
			if !known(t) {
				errs = append(errs, fmt.Errorf("stage %q declares unknown target %q", name, t))
			}
		}

		_, fixed := b.edges[name]
		_, cond := b.conds[name]
		if !fixed && !cond && len(spec.targets) == 0 {
			errs = append(errs, fmt.Errorf("stage %q has no outgoing edge", name))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
	}

	g := &Graph{
		entry:  b.entry,
		order:  append([]string(nil), b.order...),
		stages: make(map[string]*stageSpec, len(b.stages)),
		edges:  make(map[string]string, len(b.edges)),
		conds:  make(map[string]*conditional, len(b.conds)),
		opts:   opts,
	}
	for k, v := range b.stages {
		g.stages[k] = v
	}
	for k, v := range b.edges {
		g.edges[k] = v
	}
	for k, v := range b.conds {
		g.conds[k] = v
	}

	return g, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
