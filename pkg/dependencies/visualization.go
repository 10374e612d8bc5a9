package dependencies

import (
	"fmt"
	"sort"
	"strings"
)

// DAGInfo summarises the graph by dependency depth
type DAGInfo struct {
	Levels     map[int][]string
	MaxLevel   int
	RootNodes  []string
	TotalNodes int
	Dependents map[string][]string
}

// GetDAGInfo returns the nodes grouped by level together with their direct dependents
func (d *DependencyGraph) GetDAGInfo() *DAGInfo {
	levels := d.Levels()

	// Group nodes by level
	levelGroups := make(map[int][]string)
	maxLevel := 0
	for id, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
		levelGroups[level] = append(levelGroups[level], id)
	}

	// Sort nodes within each level
	for level := range levelGroups {
		sort.Strings(levelGroups[level])
	}

	ids := d.GetAllNodeIDs()
	dependents := make(map[string][]string, len(ids))
	for _, id := range ids {
		dependents[id] = d.GetDependents(id)
	}

	return &DAGInfo{
		Levels:     levelGroups,
		MaxLevel:   maxLevel,
		RootNodes:  d.GetRootNodes(),
		TotalNodes: len(ids),
		Dependents: dependents,
	}
}

// GenerateDOTFormat generates a DOT format representation of the DAG.
// Root nodes are drawn as filled boxes.
func (d *DependencyGraph) GenerateDOTFormat() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("digraph columns {\n")
	sb.WriteString("  rankdir=LR;\n")

	for _, id := range ids {
		node := d.nodes[id]
		if len(node.Dependencies) == 0 {
			fmt.Fprintf(&sb, "  \"%s\" [shape=box, style=filled, fillcolor=lightblue];\n", id)
		} else {
			fmt.Fprintf(&sb, "  \"%s\";\n", id)
		}
		for _, dep := range node.Dependencies {
			fmt.Fprintf(&sb, "  \"%s\" -> \"%s\";\n", dep, id)
		}
	}

	sb.WriteString("}")
	return sb.String()
}
