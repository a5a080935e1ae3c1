package transaction

// Diagnose is an opt-in, out-of-band deadlock diagnostic. It is never
// invoked from Acquire or Release — this package's concurrency control
// is plain strict two-phase locking with no automatic deadlock recovery;
// callers who want to check for cycles run this explicitly (e.g. on a
// timer external to the hot path, or from a CLI) and decide what to do
// about what it finds.
//
// It builds a waits-for graph from a LockTable snapshot — an edge from a
// waiting transaction to every transaction ahead of it in the same
// resource's queue that is blocking it — and reports every cycle found
// by DFS, the same three-color (unvisited/visiting/visited) algorithm
// used for wait-for graph analysis elsewhere in this codebase's lineage.
type Cycle []uint64

// Diagnose returns the cycles in snap's waits-for graph that the DFS
// closes through a back edge, one per back edge found. It does not
// enumerate every elementary cycle: a cycle that only passes through
// nodes the search has already finished is not reported.
func Diagnose(snap []ResourceSnapshot) []Cycle {
	edges := buildWaitsForGraph(snap)

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[uint64]int)
	var cycles []Cycle

	var dfs func(node uint64, path []uint64)
	dfs = func(node uint64, path []uint64) {
		state[node] = visiting
		path = append(path, node)

		for _, next := range edges[node] {
			switch state[next] {
			case visiting:
				cycles = append(cycles, extractCycle(path, next))
			case unvisited:
				dfs(next, path)
			}
		}

		state[node] = visited
	}

	for node := range edges {
		if state[node] == unvisited {
			dfs(node, nil)
		}
	}
	return cycles
}

// buildWaitsForGraph adds an edge from every ungranted request's txn to
// every other transaction ahead of it in the same resource's FIFO queue,
// whether that earlier request is granted or itself still waiting.
func buildWaitsForGraph(snap []ResourceSnapshot) map[uint64][]uint64 {
	edges := make(map[uint64][]uint64)

	for _, resource := range snap {
		for i, req := range resource.Queue {
			if req.Granted {
				continue
			}
			for j := 0; j < i; j++ {
				holder := resource.Queue[j]
				if holder.TxnID == req.TxnID {
					continue
				}
				edges[req.TxnID] = append(edges[req.TxnID], holder.TxnID)
			}
		}
	}
	return edges
}

func extractCycle(path []uint64, start uint64) Cycle {
	for i, node := range path {
		if node == start {
			cycle := make(Cycle, len(path)-i)
			copy(cycle, path[i:])
			return cycle
		}
	}
	return Cycle{start}
}
