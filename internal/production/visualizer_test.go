// Tests for DefaultVisualizer DOT export.
package production

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/exceptx/internal/primitives"
)

func TestDefaultVisualizer_ExportDOT_Propagation(t *testing.T) {
	v := &DefaultVisualizer{}
	dot := v.ExportDOT(propagationTrace(t))

	assert.Contains(t, dot, "digraph Trace {")
	assert.Contains(t, dot, "subgraph cluster_r1 {")
	assert.Contains(t, dot, "subgraph cluster_r2 {")
	assert.Contains(t, dot, `"r2.protected" -> "r2.finally" [label="pending other"];`)
	assert.Contains(t, dot, `"r2.done" -> "r1.dispatch" [label="propagate other" style=dashed];`)
	assert.Contains(t, dot, `"r1.dispatch" -> "r1.finally" [label=""];`)
	assert.Contains(t, dot, `"r2.done" [label="done" style=filled fillcolor=orange];`)
	assert.Contains(t, dot, `"r1.done" [label="done" style=filled fillcolor=lightgreen];`)
	assert.NotContains(t, dot, `"fatal"`)
}

func TestDefaultVisualizer_ExportDOT_Fatal(t *testing.T) {
	v := &DefaultVisualizer{}
	dot := v.ExportDOT(fatalTrace(t))

	assert.Contains(t, dot, `"fatal" [shape=octagon style=filled fillcolor=red];`)
	assert.Contains(t, dot, `"r1.done" -> "fatal" [label="unhandled other" style=bold];`)
	assert.Contains(t, dot, `"fatal" -> "recover" [label="" style=dotted];`)
}

func TestDefaultVisualizer_ExportDOT_Empty(t *testing.T) {
	v := &DefaultVisualizer{}
	assert.Equal(t, "digraph Trace {\n  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n  edge [fontsize=9];\n}\n",
		v.ExportDOT(primitives.Trace{}))
}

func TestDefaultVisualizer_ExportJSON(t *testing.T) {
	v := &DefaultVisualizer{}
	data, err := v.ExportJSON(propagationTrace(t))
	require.NoError(t, err)

	var decoded primitives.Trace
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "propagation", decoded.ID)
	assert.Len(t, decoded.Events, 9)
}
