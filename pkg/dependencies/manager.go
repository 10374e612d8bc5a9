// Package dependencies manages the dependency graph between source and derived columns
package dependencies

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/heimdalr/dag"
)

var (
	// ErrNonExistentDependency is returned when a node depends on an undeclared node
	ErrNonExistentDependency = errors.New("node depends on non-existent node")
	// ErrDuplicateNode is returned when the same node ID is declared twice
	ErrDuplicateNode = errors.New("duplicate node")
)

// Node is a vertex in the graph together with the IDs it is computed from
type Node struct {
	ID           string
	Dependencies []string
}

// DependencyGraph is a DAG of nodes with edges running from input to output
type DependencyGraph struct {
	dag   *dag.DAG
	nodes map[string]Node
	mutex sync.RWMutex
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dag:   dag.NewDAG(),
		nodes: make(map[string]Node),
	}
}

// BuildGraph builds the graph from node declarations, rejecting cycles and unknown inputs
func (d *DependencyGraph) BuildGraph(nodeList []Node) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.dag = dag.NewDAG()
	d.nodes = make(map[string]Node, len(nodeList))

	for _, node := range nodeList {
		if _, exists := d.nodes[node.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
		}

		d.nodes[node.ID] = node

		if err := d.dag.AddVertexByID(node.ID, node.ID); err != nil {
			return fmt.Errorf("failed to add vertex %s: %w", node.ID, err)
		}
	}

	// Add edges (dependency → dependent)
	for _, node := range nodeList {
		for _, depID := range node.Dependencies {
			if _, exists := d.nodes[depID]; !exists {
				return fmt.Errorf("%w: %s depends on %s", ErrNonExistentDependency, node.ID, depID)
			}

			// AddEdge returns error if it would create a cycle
			if err := d.dag.AddEdge(depID, node.ID); err != nil {
				return fmt.Errorf("invalid dependency %s → %s: %w", depID, node.ID, err)
			}
		}
	}

	return nil
}

// GetDependents returns the direct dependents of a node
func (d *DependencyGraph) GetDependents(id string) []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	children, err := d.dag.GetChildren(id)
	if err != nil {
		return []string{}
	}

	return sortedKeys(children)
}

// GetDependencies returns the direct inputs of a node
func (d *DependencyGraph) GetDependencies(id string) []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	parents, err := d.dag.GetParents(id)
	if err != nil {
		return []string{}
	}

	return sortedKeys(parents)
}

// GetAllDependencies returns every transitive input of a node
func (d *DependencyGraph) GetAllDependencies(id string) []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	ancestors, err := d.dag.GetAncestors(id)
	if err != nil {
		return []string{}
	}

	return sortedKeys(ancestors)
}

// IsPathBetween checks if from is a transitive input of to
func (d *DependencyGraph) IsPathBetween(from, to string) bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	descendants, err := d.dag.GetDescendants(from)
	if err != nil {
		return false
	}

	_, exists := descendants[to]

	return exists
}

// GetAllNodeIDs returns all node IDs in the graph
func (d *DependencyGraph) GetAllNodeIDs() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// GetRootNodes returns the nodes with no inputs
func (d *DependencyGraph) GetRootNodes() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	roots := []string{}
	for id, node := range d.nodes {
		if len(node.Dependencies) == 0 {
			roots = append(roots, id)
		}
	}

	sort.Strings(roots)

	return roots
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
