package similarity

import (
	"fmt"
	"strings"
)

// Newick serializes the dendrogram in Newick tree format, with branch
// lengths taken as the height difference between a node and its parent.
func (d *Dendrogram) Newick() string {
	var sb strings.Builder
	writeNewick(&sb, d.Root, d.Root.Height)
	sb.WriteByte(';')
	return sb.String()
}

func writeNewick(sb *strings.Builder, n *Node, parentHeight float64) {
	if n.Leaf() {
		fmt.Fprintf(sb, "%s:%g", escapeNewick(n.Sample), parentHeight)
		return
	}

	sb.WriteByte('(')
	writeNewick(sb, n.Left, n.Height-n.Left.Height)
	sb.WriteByte(',')
	writeNewick(sb, n.Right, n.Height-n.Right.Height)
	sb.WriteByte(')')
	fmt.Fprintf(sb, ":%g", parentHeight-n.Height)
}

// escapeNewick quotes names containing characters with structural meaning
// in the Newick grammar.
func escapeNewick(name string) string {
	if strings.ContainsAny(name, "(),:; \t'") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
