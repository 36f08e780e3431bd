// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/exceptx/internal/core"
	"github.com/comalice/exceptx/internal/primitives"
)

// GenKinds creates a table of n kinds named k1..kn, round-tripped through YAML
// the way a configured table would be loaded.
func GenKinds(n int) *primitives.KindTable {
	if n < 1 {
		n = 1
	}
	doc := primitives.KindTable{Kinds: make([]primitives.KindSpec, n)}
	for i := 0; i < n; i++ {
		doc.Kinds[i] = primitives.KindSpec{
			ID:   primitives.Kind(i + 1),
			Name: fmt.Sprintf("k%d", i+1),
		}
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		panic(err)
	}
	table, err := primitives.ParseKindTable(data)
	if err != nil {
		panic(err)
	}
	return table
}

// GenNested returns a function that installs depth regions, each with an empty
// finally, and raises kind from the innermost body. With raise false the body
// completes normally.
func GenNested(s *core.Stack, depth int, kind primitives.Kind, raise bool) func() {
	if depth < 1 {
		depth = 1
	}
	finally := func() {}
	var nest func(level int)
	nest = func(level int) {
		if level == 0 {
			if raise {
				s.Raise(kind, level)
			}
			return
		}
		s.Try(func() { nest(level - 1) }).Finally(finally).End()
	}
	return func() { nest(depth) }
}

// GenWideClauses builds a region with numClauses catch clauses for kinds
// 1..numClauses whose body raises the last one, so dispatch scans every clause.
func GenWideClauses(s *core.Stack, numClauses int) *core.Region {
	if numClauses < 1 {
		numClauses = 1
	}
	last := primitives.Kind(numClauses)
	r := s.Try(func() { s.Raise(last, nil) })
	handler := func(primitives.Exception) {}
	for i := 1; i <= numClauses; i++ {
		r.Catch(primitives.Kind(i), handler)
	}
	return r
}
