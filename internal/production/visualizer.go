package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/comalice/exceptx/internal/primitives"
)

// DefaultVisualizer renders traces as Graphviz DOT.
type DefaultVisualizer struct{}

// Edge is one rendered transition.
type Edge struct {
	From  string
	To    string
	Label string
	Style string
}

// ExportDOT generates Graphviz DOT source for a trace. Each region becomes a
// cluster holding the protocol phases it went through; propagation and fatal
// escalation are drawn between clusters.
func (v *DefaultVisualizer) ExportDOT(trace primitives.Trace) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Trace {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	buf.WriteString("  edge [fontsize=9];\n")

	phases := map[uint64][]primitives.Phase{}
	last := map[uint64]string{}
	pending := map[uint64]bool{}
	var edges []Edge
	var fatal, recovered bool

	visit := func(region uint64, phase primitives.Phase, label string) {
		node := phaseNode(region, phase)
		if prev, ok := last[region]; ok && prev != node {
			edges = append(edges, Edge{From: prev, To: node, Label: label})
		}
		if !containsPhase(phases[region], phase) {
			phases[region] = append(phases[region], phase)
		}
		last[region] = node
	}

	for _, e := range trace.Events {
		switch e.Type {
		case primitives.EventEnter:
			visit(e.Region, primitives.PhaseProtected, "")
		case primitives.EventCatch:
			visit(e.Region, primitives.PhaseDispatch, "catch "+e.KindName)
		case primitives.EventFinally:
			label := ""
			if e.Kind != primitives.None {
				label = "pending " + e.KindName
			}
			visit(e.Region, primitives.PhaseFinally, label)
		case primitives.EventExit:
			visit(e.Region, primitives.PhaseDone, "")
			pending[e.Region] = e.Kind != primitives.None
		case primitives.EventPropagate:
			edges = append(edges, Edge{
				From:  phaseNode(e.Region, primitives.PhaseDone),
				To:    phaseNode(e.Parent, primitives.PhaseDispatch),
				Label: "propagate " + e.KindName,
				Style: "dashed",
			})
			if !containsPhase(phases[e.Parent], primitives.PhaseDispatch) {
				phases[e.Parent] = append(phases[e.Parent], primitives.PhaseDispatch)
			}
			last[e.Parent] = phaseNode(e.Parent, primitives.PhaseDispatch)
		case primitives.EventFatal:
			fatal = true
			from := "start"
			if node, ok := last[e.Region]; ok && e.Region != 0 {
				from = node
			}
			edges = append(edges, Edge{From: from, To: "fatal", Label: fatalLabel(e), Style: "bold"})
		case primitives.EventRecover:
			recovered = true
			edges = append(edges, Edge{From: "fatal", To: "recover", Style: "dotted"})
		}
	}

	regions := make([]uint64, 0, len(phases))
	for id := range phases {
		regions = append(regions, id)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

	for _, id := range regions {
		fmt.Fprintf(&buf, "  subgraph cluster_r%d {\n", id)
		fmt.Fprintf(&buf, "    label=\"region %d\";\n", id)
		for _, phase := range phases[id] {
			style := " style=filled fillcolor=lightgreen"
			if phase == primitives.PhaseDone && pending[id] {
				style = " style=filled fillcolor=orange"
			}
			fmt.Fprintf(&buf, "    %q [label=%q%s];\n", phaseNode(id, phase), string(phase), style)
		}
		buf.WriteString("  }\n")
	}
	if fatal {
		buf.WriteString("  \"fatal\" [shape=octagon style=filled fillcolor=red];\n")
	}
	if recovered {
		buf.WriteString("  \"recover\" [shape=ellipse];\n")
	}
	for _, edge := range edges {
		attrs := fmt.Sprintf("label=%q", edge.Label)
		if edge.Style != "" {
			attrs += " style=" + edge.Style
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", edge.From, edge.To, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the trace to JSON.
func (v *DefaultVisualizer) ExportJSON(trace primitives.Trace) ([]byte, error) {
	return json.MarshalIndent(trace, "", "  ")
}

func phaseNode(region uint64, phase primitives.Phase) string {
	return fmt.Sprintf("r%d.%s", region, phase)
}

func containsPhase(phases []primitives.Phase, p primitives.Phase) bool {
	for _, q := range phases {
		if q == p {
			return true
		}
	}
	return false
}

func fatalLabel(e primitives.Event) string {
	if e.Previous != primitives.None {
		return fmt.Sprintf("double %d/%d", int(e.Previous), int(e.Kind))
	}
	return "unhandled " + e.KindName
}
