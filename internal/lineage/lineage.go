package lineage

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/leapstack-labs/metastore/pkg/core"
)

var identPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_$]*(?:\.[A-Za-z_][A-Za-z0-9_$]*)*`)

// Edge is a dependency dropped because it would close a cycle.
type Edge struct {
	From string
	To   string
}

// Graph holds the read dependencies between the steps of a model.
// Vertices are indexes into the model's steps sorted by step order.
type Graph struct {
	steps   []core.Step
	g       graph.Graph[int, int]
	skipped []Edge
}

// Build derives the step graph of m.
func Build(m *core.Model) (*Graph, error) {
	lg := &Graph{
		steps: m.SortedSteps(),
		g:     graph.New(graph.IntHash, graph.Directed(), graph.PreventCycles()),
	}

	producers := make(map[string][]int)
	for i, s := range lg.steps {
		if err := lg.g.AddVertex(i); err != nil {
			return nil, fmt.Errorf("add step %q: %w", s.Name, err)
		}
		if dest := strings.ToLower(strings.TrimSpace(s.DestinationName)); dest != "" {
			producers[dest] = append(producers[dest], i)
		}
	}

	for i, s := range lg.steps {
		for _, ref := range References(s.Query) {
			for _, p := range producers[ref] {
				if p == i {
					continue
				}
				err := lg.g.AddEdge(p, i)
				switch {
				case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
				case errors.Is(err, graph.ErrEdgeCreatesCycle):
					lg.skipped = append(lg.skipped, Edge{From: lg.steps[p].Name, To: s.Name})
				default:
					return nil, fmt.Errorf("link %q to %q: %w", lg.steps[p].Name, s.Name, err)
				}
			}
		}
	}

	return lg, nil
}

// References returns the lower-cased identifiers a query mentions. Qualified
// names contribute both the full name and their last segment. String
// literals are ignored.
func References(query string) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			refs = append(refs, s)
		}
	}

	for _, ident := range identPattern.FindAllString(stripLiterals(query), -1) {
		ident = strings.ToLower(ident)
		add(ident)
		if i := strings.LastIndexByte(ident, '.'); i >= 0 {
			add(ident[i+1:])
		}
	}
	return refs
}

func stripLiterals(query string) string {
	var b strings.Builder
	inString := false
	for _, r := range query {
		if r == '\'' {
			inString = !inString
			b.WriteRune(' ')
			continue
		}
		if inString {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Steps returns the model's steps in step order.
func (lg *Graph) Steps() []core.Step {
	return lg.steps
}

// Skipped returns dependencies left out because they would form a cycle.
func (lg *Graph) Skipped() []Edge {
	return lg.skipped
}

// Order returns the steps in dependency order, breaking ties by step order.
func (lg *Graph) Order() ([]core.Step, error) {
	idx, err := graph.StableTopologicalSort(lg.g, func(a, b int) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("sort steps: %w", err)
	}
	return lg.pick(idx), nil
}

// ReadsFrom returns the steps whose destinations the step with the given
// order reads.
func (lg *Graph) ReadsFrom(stepOrder int) []core.Step {
	preds, err := lg.g.PredecessorMap()
	if err != nil {
		return nil
	}
	return lg.neighbours(preds, stepOrder)
}

// ReadBy returns the steps that read the destination of the step with the
// given order.
func (lg *Graph) ReadBy(stepOrder int) []core.Step {
	adj, err := lg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	return lg.neighbours(adj, stepOrder)
}

func (lg *Graph) neighbours(m map[int]map[int]graph.Edge[int], stepOrder int) []core.Step {
	var idx []int
	for i, s := range lg.steps {
		if s.StepOrder != stepOrder {
			continue
		}
		for j := range lg.steps {
			if _, ok := m[i][j]; ok {
				idx = append(idx, j)
			}
		}
		break
	}
	return lg.pick(idx)
}

func (lg *Graph) pick(idx []int) []core.Step {
	out := make([]core.Step, 0, len(idx))
	for _, i := range idx {
		out = append(out, lg.steps[i])
	}
	return out
}
