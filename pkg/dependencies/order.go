package dependencies

import "sort"

// Levels returns the dependency depth of every node. Roots are level 0.
func (d *DependencyGraph) Levels() map[string]int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	levels := make(map[string]int, len(d.nodes))
	for _, id := range d.topologicalOrder() {
		level := 0
		for _, dep := range d.nodes[id].Dependencies {
			if levels[dep]+1 > level {
				level = levels[dep] + 1
			}
		}

		levels[id] = level
	}

	return levels
}

// TopologicalOrder returns every node after all of its inputs.
// Nodes that become ready together are emitted in declaration-independent sorted order.
func (d *DependencyGraph) TopologicalOrder() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return d.topologicalOrder()
}

func (d *DependencyGraph) topologicalOrder() []string {
	inDegree := make(map[string]int, len(d.nodes))
	dependents := make(map[string][]string, len(d.nodes))

	for id, node := range d.nodes {
		inDegree[id] += 0
		for _, dep := range node.Dependencies {
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	ready := make([]string, 0)
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(d.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, child := range dependents[next] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	return order
}
