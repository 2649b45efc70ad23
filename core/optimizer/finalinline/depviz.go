package finalinline

import (
	"fmt"
	"strings"

	"github.com/Briagont/redex/core/dex"
)

// DepGraphDot returns a Graphviz DOT rendering of the field dependency graph
// the propagator would build for the current program state. Intended for
// offline inspection; building the graph does not mutate the program.
func DepGraphDot(p *dex.Program) string {
	deps := buildFieldDependencies(p, nil)

	var sb strings.Builder
	sb.WriteString("digraph FieldDeps {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, fontname=\"Courier\"];\n")

	nodeID := make(map[*dex.Field]int)
	id := func(f *dex.Field) int {
		n, ok := nodeID[f]
		if !ok {
			n = len(nodeID)
			nodeID[f] = n
			label := f.String()
			if v := f.StaticValue(); v != nil {
				label += "\\n" + v.String()
			}
			label = strings.ReplaceAll(label, "\"", "\\\"")
			sb.WriteString(fmt.Sprintf("  %d [label=\"%s\"];\n", n, label))
		}
		return n
	}

	for _, src := range deps.Sources() {
		for _, dep := range deps.Edges(src) {
			from := id(src)
			to := id(dep.dst)
			sb.WriteString(fmt.Sprintf("  %d -> %d [label=\"%s\"];\n", from, to, dep.clinit.Class()))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
