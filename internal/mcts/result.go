package mcts

// Result is the final output of a completed search run.
type Result struct {
	BestPath          []string
	BestState         CodeState
	BestReward        float64
	Iterations        int
	TerminationReason TerminationReason
	Analysis          TreeAnalysis
}

// BuildResult walks the most-visited path from root to a leaf to produce
// the final recommended action sequence, per spec.md §4.5's "best_path".
func BuildResult(tree *Tree, reason TerminationReason, iterations int) Result {
	var path []string
	cur := tree.Root()
	for {
		next := cur.BestChildByVisits()
		if next == nil {
			break
		}
		path = append(path, next.Action)
		cur = next
	}

	return Result{
		BestPath:          path,
		BestState:         cur.State,
		BestReward:        cur.AverageReward(),
		Iterations:        iterations,
		TerminationReason: reason,
		Analysis:          Analyze(tree.Root(), tree.NodeCount()),
	}
}
