package service

// TopoOrder computes a restart order for services, restricted to the set S,
// such that every service appears after all of its declared dependencies
// that are also in S (spec §4.6.2). Services not in S never appear.
//
// The fixed DependencyGraph is acyclic, but cycle detection is still
// performed: if a cycle is somehow present (e.g. in a caller-extended
// graph), TopoOrder falls back to the order services were added to S and
// returns a warning describing the cycle.
func TopoOrder(services []string, graph map[string][]string) (order []string, warning string) {
	if graph == nil {
		graph = DependencyGraph
	}
	inSet := make(map[string]bool, len(services))
	for _, s := range services {
		inSet[s] = true
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(services))
	order = make([]string, 0, len(services))
	cycle := false

	var visit func(s string)
	visit = func(s string) {
		if cycle {
			return
		}
		switch color[s] {
		case black:
			return
		case gray:
			cycle = true
			return
		}
		color[s] = gray
		for _, dep := range graph[s] {
			if !inSet[dep] {
				continue
			}
			visit(dep)
			if cycle {
				return
			}
		}
		color[s] = black
		order = append(order, s)
	}

	for _, s := range services {
		visit(s)
		if cycle {
			break
		}
	}

	if cycle {
		return append([]string(nil), services...), "dependency cycle detected; falling back to insertion order"
	}
	return order, ""
}
